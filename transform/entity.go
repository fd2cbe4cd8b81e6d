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

package transform

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind is a recognized formed field element.
type Kind uint8

const (
	KindText Kind = iota
	KindInt
	KindDate
	KindChoice
)

// Kinds lists the field kinds in scan order.
var Kinds = [...]Kind{KindText, KindInt, KindDate, KindChoice}

var kindTags = [...]string{
	KindText:   "text",
	KindInt:    "int",
	KindDate:   "date",
	KindChoice: "choice",
}

// formbar has no distinct choice type, choices are integers with options.
var kindTypes = [...]string{
	KindText:   "string",
	KindInt:    "integer",
	KindDate:   "date",
	KindChoice: "integer",
}

// Tag returns the formed element name of the kind.
func (k Kind) Tag() string { return kindTags[k] }

// Type returns the formbar entity type of the kind.
func (k Kind) Type() string { return kindTypes[k] }

func (k Kind) String() string { return k.Tag() }

// KindOf returns the Kind for a formed tag.
func KindOf(tag string) (Kind, bool) {
	for _, k := range Kinds {
		if kindTags[k] == tag {
			return k, true
		}
	}
	return 0, false
}

const (
	optionTag           = "bool"
	flagsRequiredPrefix = "required"
	noValue             = "-1"
)

// ErrMissingAttribute is returned when an element lacks an attribute the conversion needs.
var ErrMissingAttribute = errors.New("missing attribute")

// Entity is one formbar entity.
type Entity struct {
	ID, Name, Label, Type string
	Desired               bool
	Options               []Option
}

// Option is one enumerated value of an Entity.
type Option struct {
	Value, Label string
}

// NewEntity maps a formed field element to a formbar Entity.
func NewEntity(e *Element, k Kind) (Entity, error) {
	name, err := e.mustAttr("name")
	if err != nil {
		return Entity{}, err
	}
	E := Entity{
		ID: name, Name: name,
		Label: e.getAttr("description"),
		Type:  k.Type(),
	}
	if flags, ok := e.Attr("flags"); ok && strings.HasPrefix(flags, flagsRequiredPrefix) {
		E.Desired = true
	}
	for i := range e.Children {
		c := &e.Children[i]
		if c.Tag() != optionTag {
			continue
		}
		value, err := c.mustAttr("value")
		if err != nil {
			return E, errors.WithMessage(err, name)
		}
		label, err := c.mustAttr("description")
		if err != nil {
			return E, errors.WithMessage(err, name)
		}
		if value == noValue {
			value = ""
		}
		E.Options = append(E.Options, Option{Value: value, Label: label})
	}
	return E, nil
}

const (
	optionsIndent = "    "
	optionIndent  = "        "
)

// String renders the entity as a formbar fragment, closed by a newline.
func (E Entity) String() string {
	var buf strings.Builder
	buf.WriteString(`<entity id="` + escape(E.ID) +
		`" name="` + escape(E.Name) +
		`" label="` + escape(E.Label) +
		`" type="` + escape(E.Type) + `" `)
	if E.Desired {
		buf.WriteString(`desired="true"`)
	}
	buf.WriteString(">")
	if len(E.Options) != 0 {
		buf.WriteString("\n" + optionsIndent + "<options>\n")
		for _, o := range E.Options {
			buf.WriteString(optionIndent + `<option value="` + escape(o.Value) + `">` +
				textEscaper.Replace(o.Label) + "</option>\n")
		}
		buf.WriteString(optionsIndent + "</options>\n")
	}
	buf.WriteString("</entity>\n")
	return buf.String()
}

var (
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", `"`, "&quot;")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;")
)

func escape(s string) string { return attrEscaper.Replace(s) }
