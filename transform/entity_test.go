package transform_test

import (
	"strings"
	"testing"

	"github.com/UNO-SOFT/formed2formbar/transform"
	"github.com/google/go-cmp/cmp"
)

func TestKinds(t *testing.T) {
	for tag, want := range map[string]string{
		"text": "string", "int": "integer", "date": "date", "choice": "integer",
	} {
		k, ok := transform.KindOf(tag)
		if !ok {
			t.Errorf("%q is not recognized", tag)
			continue
		}
		if k.Tag() != tag {
			t.Errorf("%q: got tag %q", tag, k.Tag())
		}
		if k.Type() != want {
			t.Errorf("%q: got type %q, wanted %q", tag, k.Type(), want)
		}
	}
	for _, tag := range []string{"bool", "repeat", "float", ""} {
		if k, ok := transform.KindOf(tag); ok {
			t.Errorf("%q recognized as %v", tag, k)
		}
	}
}

func firstChild(t *testing.T, s string) *transform.Element {
	t.Helper()
	doc, err := transform.Parse(strings.NewReader(s))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Children) == 0 {
		t.Fatal("no children in " + s)
	}
	return &doc.Children[0]
}

func TestNewEntity(t *testing.T) {
	for tName, tc := range map[string]struct {
		In   string
		Kind transform.Kind
		Want transform.Entity
	}{
		"plain": {
			In: `<f><text name="a" description="Name"/></f>`, Kind: transform.KindText,
			Want: transform.Entity{ID: "a", Name: "a", Label: "Name", Type: "string"},
		},
		"required": {
			In: `<f><int name="b" description="Age" flags="required"/></f>`, Kind: transform.KindInt,
			Want: transform.Entity{ID: "b", Name: "b", Label: "Age", Type: "integer", Desired: true},
		},
		"requiredPrefix": {
			In: `<f><date name="d" description="D" flags="required|readonly"/></f>`, Kind: transform.KindDate,
			Want: transform.Entity{ID: "d", Name: "d", Label: "D", Type: "date", Desired: true},
		},
		"optional": {
			In: `<f><date name="d" description="D" flags="optional"/></f>`, Kind: transform.KindDate,
			Want: transform.Entity{ID: "d", Name: "d", Label: "D", Type: "date"},
		},
		"notPrefix": {
			In: `<f><text name="t" description="T" flags="readonly required"/></f>`, Kind: transform.KindText,
			Want: transform.Entity{ID: "t", Name: "t", Label: "T", Type: "string"},
		},
		"emptyFlags": {
			In: `<f><text name="t" description="T" flags=""/></f>`, Kind: transform.KindText,
			Want: transform.Entity{ID: "t", Name: "t", Label: "T", Type: "string"},
		},
		"noDescription": {
			In: `<f><text name="t"/></f>`, Kind: transform.KindText,
			Want: transform.Entity{ID: "t", Name: "t", Type: "string"},
		},
		"options": {
			In: `<f><choice name="c" description="C">` +
				`<bool value="-1" description="unset"/><bool value="0" description="no"/>` +
				`<bool value="-10" description="minus ten"/><other value="9" description="skipped"/>` +
				`<nested><bool value="7" description="not immediate"/></nested>` +
				`</choice></f>`,
			Kind: transform.KindChoice,
			Want: transform.Entity{ID: "c", Name: "c", Label: "C", Type: "integer",
				Options: []transform.Option{
					{Value: "", Label: "unset"},
					{Value: "0", Label: "no"},
					{Value: "-10", Label: "minus ten"},
				},
			},
		},
	} {
		tc := tc
		t.Run(tName, func(t *testing.T) {
			got, err := transform.NewEntity(firstChild(t, tc.In), tc.Kind)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.Want, got); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestEntityString(t *testing.T) {
	for tName, tc := range map[string]struct {
		E    transform.Entity
		Want string
	}{
		"bare": {
			E:    transform.Entity{ID: "a", Name: "a", Label: "Name", Type: "string"},
			Want: `<entity id="a" name="a" label="Name" type="string" ></entity>` + "\n",
		},
		"desired": {
			E:    transform.Entity{ID: "b", Name: "b", Label: "Age", Type: "integer", Desired: true},
			Want: `<entity id="b" name="b" label="Age" type="integer" desired="true"></entity>` + "\n",
		},
		"options": {
			E: transform.Entity{ID: "c", Name: "c", Label: "C", Type: "integer",
				Options: []transform.Option{{Value: "", Label: "unset"}, {Value: "2", Label: "two"}}},
			Want: "<entity id=\"c\" name=\"c\" label=\"C\" type=\"integer\" >\n" +
				"    <options>\n" +
				"        <option value=\"\">unset</option>\n" +
				"        <option value=\"2\">two</option>\n" +
				"    </options>\n" +
				"</entity>\n",
		},
		"escaped": {
			E: transform.Entity{ID: "e", Name: "e", Label: `Tom & "Jerry"`, Type: "string",
				Options: []transform.Option{{Value: "<1>", Label: "a<b"}}},
			Want: "<entity id=\"e\" name=\"e\" label=\"Tom &amp; &quot;Jerry&quot;\" type=\"string\" >\n" +
				"    <options>\n" +
				"        <option value=\"&lt;1>\">a&lt;b</option>\n" +
				"    </options>\n" +
				"</entity>\n",
		},
		"apostrophe": {
			E:    transform.Entity{ID: "o", Name: "o", Label: "Owner's name", Type: "string"},
			Want: `<entity id="o" name="o" label="Owner's name" type="string" ></entity>` + "\n",
		},
		"plainPunctuation": {
			E: transform.Entity{ID: "p", Name: "p", Label: "a > b\tc", Type: "integer",
				Options: []transform.Option{{Value: "1", Label: `say "yes" > 'no'`}}},
			Want: "<entity id=\"p\" name=\"p\" label=\"a > b\tc\" type=\"integer\" >\n" +
				"    <options>\n" +
				"        <option value=\"1\">say \"yes\" > 'no'</option>\n" +
				"    </options>\n" +
				"</entity>\n",
		},
	} {
		tc := tc
		t.Run(tName, func(t *testing.T) {
			if diff := cmp.Diff(tc.Want, tc.E.String()); diff != "" {
				t.Error(diff)
			}
		})
	}
}
