package dom

import (
	"strings"
	"testing"

	xqerrors "github.com/jacoelho/xq/errors"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	d, err := ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("ParseBytes(%q) failed: %v", src, err)
	}
	return d
}

func TestParseSimpleElement(t *testing.T) {
	d := mustParse(t, `<greeting kind="warm">hello</greeting>`)

	root := d.Root()
	if got := d.Kind(root); got != KindElement {
		t.Fatalf("root kind = %v, want element", got)
	}
	if got := d.LocalName(root); got != "greeting" {
		t.Errorf("root local name = %q, want greeting", got)
	}

	attrs := d.Attributes(root)
	if len(attrs) != 1 {
		t.Fatalf("attributes = %d, want 1", len(attrs))
	}
	if got := d.Name(attrs[0]); got != "kind" {
		t.Errorf("attribute name = %q, want kind", got)
	}
	if got := d.Value(attrs[0]); got != "warm" {
		t.Errorf("attribute value = %q, want warm", got)
	}

	if got := d.StringValue(root); got != "hello" {
		t.Errorf("string-value = %q, want hello", got)
	}
}

func TestParsePreservesWhitespaceAndEntities(t *testing.T) {
	d := mustParse(t, "<a>\n  one &amp; two\n</a>")

	if got := d.StringValue(d.Root()); got != "\n  one & two\n" {
		t.Errorf("string-value = %q", got)
	}
}

func TestParseCharacterReferences(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"<a>&#65;</a>", "A"},
		{"<a>&#x41;</a>", "A"},
		{"<a>&lt;&gt;&quot;&apos;</a>", `<>"'`},
		{"<a>&#x1F600;</a>", "\U0001F600"},
	}
	for _, tt := range tests {
		d := mustParse(t, tt.src)
		if got := d.StringValue(d.Root()); got != tt.want {
			t.Errorf("StringValue(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseCDATA(t *testing.T) {
	d := mustParse(t, "<a>before<![CDATA[<not & markup>]]>after</a>")

	children := d.Children(d.Root())
	if len(children) != 1 {
		t.Fatalf("children = %d, want 1 merged text node", len(children))
	}
	if got := d.Value(children[0]); got != "before<not & markup>after" {
		t.Errorf("text = %q", got)
	}
}

func TestParseCommentsAndProcessingInstructions(t *testing.T) {
	d := mustParse(t, `<?xml version="1.0"?><!-- top --><a><?go fmt?><!-- in --></a>`)

	if got := d.Declaration(); got != `<?xml version="1.0"?>` {
		t.Errorf("declaration = %q", got)
	}

	top := d.Children(DocumentRoot)
	if len(top) != 2 {
		t.Fatalf("document children = %d, want 2", len(top))
	}
	if got := d.Kind(top[0]); got != KindComment {
		t.Errorf("first child kind = %v, want comment", got)
	}

	inner := d.Children(d.Root())
	if len(inner) != 2 {
		t.Fatalf("element children = %d, want 2", len(inner))
	}
	if got, want := d.Name(inner[0]), "go"; got != want {
		t.Errorf("PI target = %q, want %q", got, want)
	}
	if got, want := d.Value(inner[0]), "fmt"; got != want {
		t.Errorf("PI data = %q, want %q", got, want)
	}
}

func TestParseNamespaceDeclarations(t *testing.T) {
	d := mustParse(t, `<p:root xmlns:p="urn:one" xmlns="urn:default"><child/></p:root>`)

	root := d.Root()
	if got := d.Namespace(root); got != "urn:one" {
		t.Errorf("root namespace = %q, want urn:one", got)
	}
	if got := d.Prefix(root); got != "p" {
		t.Errorf("root prefix = %q, want p", got)
	}

	child := d.Children(root)[0]
	if got := d.Namespace(child); got != "urn:default" {
		t.Errorf("child namespace = %q, want urn:default", got)
	}

	decls := d.NamespaceDecls(root)
	if len(decls) != 2 {
		t.Fatalf("namespace decls = %d, want 2", len(decls))
	}
}

func TestParseSelfClosed(t *testing.T) {
	d := mustParse(t, `<a><b/><c></c></a>`)

	children := d.Children(d.Root())
	if !d.SelfClosed(children[0]) {
		t.Error("b should be marked self-closed")
	}
	if d.SelfClosed(children[1]) {
		t.Error("c should not be marked self-closed")
	}
}

func TestParseDocumentOrderIsNodeIDOrder(t *testing.T) {
	d := mustParse(t, `<a x="1"><b><c/></b><d/>tail</a>`)

	var last NodeID = -1
	var walk func(n NodeID)
	walk = func(n NodeID) {
		if n <= last {
			t.Fatalf("node %d allocated out of document order (previous %d)", n, last)
		}
		last = n
		for _, extra := range d.AttributesAndNamespaces(n) {
			walk(extra)
		}
		for _, child := range d.Children(n) {
			walk(child)
		}
	}
	walk(DocumentRoot)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code xqerrors.ErrorCode
	}{
		{"empty input", "", xqerrors.ErrMalformedXML},
		{"unclosed element", "<a><b></a>", xqerrors.ErrMalformedXML},
		{"mismatched end tag", "<a></b>", xqerrors.ErrMalformedXML},
		{"two roots", "<a/><b/>", xqerrors.ErrMalformedXML},
		{"text after root", "<a/>oops", xqerrors.ErrMalformedXML},
		{"doctype", "<!DOCTYPE html><a/>", xqerrors.ErrMalformedXML},
		{"literal lt in attribute", `<a b="<"/>`, xqerrors.ErrMalformedXML},
		{"unknown entity", "<a>&nope;</a>", xqerrors.ErrMalformedXML},
		{"bad char reference", "<a>&#x0;</a>", xqerrors.ErrMalformedXML},
		{"attribute without value", "<a b></a>", xqerrors.ErrMalformedXML},
		{"unterminated comment", "<a><!-- nope</a>", xqerrors.ErrMalformedXML},
		{"unbound element prefix", "<p:a/>", xqerrors.ErrUnboundPrefix},
		{"unbound attribute prefix", `<a p:b="1"/>`, xqerrors.ErrUnboundPrefix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes([]byte(tt.src))
			if err == nil {
				t.Fatalf("ParseBytes(%q) succeeded, want %s", tt.src, tt.code)
			}
			if got := xqerrors.CodeOf(err); got != tt.code {
				t.Errorf("error code = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := ParseBytes([]byte("<a>\n  <b></c>\n</a>"))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	diag, ok := xqerrors.AsError(err)
	if !ok {
		t.Fatalf("error %v carries no diagnostic", err)
	}
	if diag.Line != 2 {
		t.Errorf("error line = %d, want 2", diag.Line)
	}
}

func TestParseSkipsByteOrderMark(t *testing.T) {
	d := mustParse(t, "\xEF\xBB\xBF<a/>")
	if got := d.LocalName(d.Root()); got != "a" {
		t.Errorf("root = %q, want a", got)
	}
}

func TestParseFragment(t *testing.T) {
	nodes, doc, err := ParseFragment(`text <b>bold</b> tail`)
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("fragment nodes = %d, want 3", len(nodes))
	}
	kinds := []NodeKind{doc.Kind(nodes[0]), doc.Kind(nodes[1]), doc.Kind(nodes[2])}
	want := []NodeKind{KindText, KindElement, KindText}
	for i := range kinds {
		if kinds[i] != want[i] {
			t.Errorf("fragment node %d kind = %v, want %v", i, kinds[i], want[i])
		}
	}
}

func TestParseFragmentRejectsMarkupErrors(t *testing.T) {
	if _, _, err := ParseFragment(`<b>unclosed`); err == nil {
		t.Error("ParseFragment accepted unclosed markup")
	}
}

func TestParseFromReader(t *testing.T) {
	d, err := Parse(strings.NewReader(`<a/>`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := d.LocalName(d.Root()); got != "a" {
		t.Errorf("root = %q, want a", got)
	}
}
