// Copyright 2019 Tamás Gulácsi
//
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

// Package transform converts formed XML form definitions into formbar entities.
package transform

import (
	"io"
	"log"
	"strings"

	"github.com/pkg/errors"
)

const repeatTag = "repeat"

// FormedProcessor converts one formed document per ProcessStream call.
type FormedProcessor struct {
	// RepeatGroup restricts the conversion to the subtree of the named repeat group.
	// An unknown name falls back to the whole document.
	RepeatGroup string
	// ListGroups switches to listing the repeat group names, one per line.
	ListGroups bool
	// ExcludeGrouped drops fields whose name also occurs inside any repeat group
	// from the unrestricted conversion.
	ExcludeGrouped bool
}

// ProcessStream reads the formed document from r, and writes the formbar entities
// (or the repeat group names) to w.
//
// Nothing is written to w if the conversion fails.
func (P *FormedProcessor) ProcessStream(w io.Writer, r io.Reader) error {
	doc, err := Parse(r)
	if err != nil {
		return err
	}
	var buf strings.Builder
	if P.ListGroups {
		names, err := ListGroups(doc)
		if err != nil {
			return err
		}
		for _, nm := range names {
			buf.WriteString(nm)
			buf.WriteByte('\n')
		}
	} else {
		fragments, err := P.Convert(doc)
		if err != nil {
			return err
		}
		for _, f := range fragments {
			buf.WriteString(f)
		}
	}
	_, err = io.WriteString(w, buf.String())
	return errors.Wrap(err, "write")
}

// ListGroups returns the name of every repeat group, in document order.
func ListGroups(doc *Element) ([]string, error) {
	groups := doc.Descendants(repeatTag)
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		nm, err := g.mustAttr("name")
		if err != nil {
			return names, err
		}
		names = append(names, nm)
	}
	return names, nil
}

// Convert returns the formbar fragments for the fields of doc.
func (P *FormedProcessor) Convert(doc *Element) ([]string, error) {
	if P.RepeatGroup != "" {
		for _, g := range doc.Descendants(repeatTag) {
			nm, err := g.mustAttr("name")
			if err != nil {
				return nil, err
			}
			if nm != P.RepeatGroup {
				continue
			}
			entities, err := collectInOrder(g)
			if err != nil {
				return nil, errors.WithMessage(err, "repeat group "+nm)
			}
			return render(entities, nil), nil
		}
		log.Printf("repeat group %q not found, converting the whole document", P.RepeatGroup)
	}

	var ignored map[string]struct{}
	if P.ExcludeGrouped {
		var err error
		if ignored, err = groupedNames(doc); err != nil {
			return nil, err
		}
	}
	entities, err := collectByKind(doc)
	if err != nil {
		return nil, err
	}
	return render(entities, ignored), nil
}

// collectByKind returns all text fields, then all int, date and choice fields,
// each kind in document order.
func collectByKind(root *Element) ([]Entity, error) {
	var entities []Entity
	for _, k := range Kinds {
		for _, e := range root.Descendants(k.Tag()) {
			E, err := NewEntity(e, k)
			if err != nil {
				return entities, err
			}
			entities = append(entities, E)
		}
	}
	return entities, nil
}

// collectInOrder returns the fields below root in document order.
func collectInOrder(root *Element) ([]Entity, error) {
	var entities []Entity
	var err error
	root.walk(func(e *Element) {
		if err != nil {
			return
		}
		k, ok := KindOf(e.Tag())
		if !ok {
			return
		}
		var E Entity
		if E, err = NewEntity(e, k); err == nil {
			entities = append(entities, E)
		}
	})
	return entities, err
}

// groupedNames returns the names of the fields inside any repeat group.
func groupedNames(doc *Element) (map[string]struct{}, error) {
	names := make(map[string]struct{})
	for _, g := range doc.Descendants(repeatTag) {
		entities, err := collectByKind(g)
		if err != nil {
			return names, err
		}
		for _, E := range entities {
			names[E.Name] = struct{}{}
		}
	}
	return names, nil
}

func render(entities []Entity, ignored map[string]struct{}) []string {
	fragments := make([]string, 0, len(entities))
	for _, E := range entities {
		if _, ok := ignored[E.Name]; ok {
			continue
		}
		fragments = append(fragments, E.String())
	}
	return fragments
}
