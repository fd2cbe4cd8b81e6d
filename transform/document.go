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
	"bytes"
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// Element is one node of a parsed formed document.
// Character data, comments and namespaces are dropped.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Element  `xml:",any"`
}

// Tag returns the local name of the element.
func (e *Element) Tag() string { return e.XMLName.Local }

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *Element) getAttr(name string) string {
	v, _ := e.Attr(name)
	return v
}

// mustAttr returns the named attribute, or ErrMissingAttribute.
func (e *Element) mustAttr(name string) (string, error) {
	if v, ok := e.Attr(name); ok {
		return v, nil
	}
	return "", errors.Wrapf(ErrMissingAttribute, "<%s> has no %q", e.Tag(), name)
}

// Descendants returns every element below e (e excluded) whose tag is tag,
// in document order.
func (e *Element) Descendants(tag string) []*Element {
	var found []*Element
	e.walk(func(c *Element) {
		if c.Tag() == tag {
			found = append(found, c)
		}
	})
	return found
}

// walk calls f on every element below e in document order.
func (e *Element) walk(f func(*Element)) {
	for i := range e.Children {
		c := &e.Children[i]
		f(c)
		c.walk(f)
	}
}

// Parse reads a whole formed document.
// Anything but whitespace, comments and processing instructions outside the
// document element is a syntax error.
func Parse(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	var root Element
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, errors.Wrap(err, "parse")
		}
		if err = checkOutside(dec, tok, "before"); err != nil {
			return nil, err
		}
		if st, ok := tok.(xml.StartElement); ok {
			if err = dec.DecodeElement(&root, &st); err != nil {
				return nil, errors.Wrap(err, "parse")
			}
			break
		}
	}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parse")
		}
		if st, ok := tok.(xml.StartElement); ok {
			return nil, errors.Wrap(
				&xml.SyntaxError{Msg: "junk after document element <" + st.Name.Local + ">", Line: line(dec)},
				"parse")
		}
		if err = checkOutside(dec, tok, "after"); err != nil {
			return nil, err
		}
	}
	return &root, nil
}

// checkOutside rejects non-whitespace text outside the document element.
func checkOutside(dec *xml.Decoder, tok xml.Token, where string) error {
	cd, ok := tok.(xml.CharData)
	if !ok || len(bytes.TrimSpace(cd)) == 0 {
		return nil
	}
	return errors.Wrap(
		&xml.SyntaxError{Msg: "text " + where + " document element", Line: line(dec)},
		"parse")
}

func line(dec *xml.Decoder) int {
	l, _ := dec.InputPos()
	return l
}
