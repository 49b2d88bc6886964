package dom

import (
	"strings"
	"testing"
)

func serialize(t *testing.T, d *Document) string {
	t.Helper()
	var sb strings.Builder
	if err := d.WriteDocument(&sb); err != nil {
		t.Fatalf("WriteDocument failed: %v", err)
	}
	return sb.String()
}

func TestRoundTrip(t *testing.T) {
	tests := []string{
		`<a/>`,
		`<a></a>`,
		`<a b="1" c="2"/>`,
		"<a>\n  <b>text</b>\n  <c/>\n</a>",
		`<?xml version="1.0" encoding="UTF-8"?><root><child/></root>`,
		`<p:a xmlns:p="urn:x" xmlns="urn:y"><b p:c="v"/></p:a>`,
		`<a><!-- note --><?pi data?></a>`,
		`<!-- before --><a/><!-- after -->`,
	}
	for _, src := range tests {
		d := mustParse(t, src)
		if got := serialize(t, d); got != src {
			t.Errorf("round trip of %q produced %q", src, got)
		}
	}
}

func TestSerializeEscapesText(t *testing.T) {
	d := mustParse(t, `<a>&lt;tag&gt; &amp; co</a>`)
	want := `<a>&lt;tag&gt; &amp; co</a>`
	if got := serialize(t, d); got != want {
		t.Errorf("serialized = %q, want %q", got, want)
	}
}

func TestSerializeEscapesAttributes(t *testing.T) {
	d := mustParse(t, `<a b="&quot;x&quot; &amp; y"/>`)
	want := `<a b="&quot;x&quot; &amp; y"/>`
	if got := serialize(t, d); got != want {
		t.Errorf("serialized = %q, want %q", got, want)
	}
}

func TestSerializePreservesAttributeOrder(t *testing.T) {
	src := `<a z="1" xmlns:p="urn:x" a="2" p:m="3"/>`
	d := mustParse(t, src)
	if got := serialize(t, d); got != src {
		t.Errorf("serialized = %q, want %q", got, src)
	}
}

func TestWriteNodeKinds(t *testing.T) {
	d := mustParse(t, `<a href="x.html"><b>bold</b><!-- c --><?p q?>text</a>`)
	root := d.Root()
	children := d.Children(root)

	tests := []struct {
		name string
		id   NodeID
		want string
	}{
		{"element", children[0], `<b>bold</b>`},
		{"comment", children[1], `<!-- c -->`},
		{"processing instruction", children[2], `<?p q?>`},
		{"text", children[3], "text"},
		{"attribute", d.Attributes(root)[0], "x.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.String(tt.id); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStringValue(t *testing.T) {
	d := mustParse(t, `<a>one<b>two<c>three</c></b><!-- skip -->four</a>`)
	if got := d.StringValue(d.Root()); got != "onetwothreefour" {
		t.Errorf("string-value = %q, want onetwothreefour", got)
	}
	if got := d.StringValue(DocumentRoot); got != "onetwothreefour" {
		t.Errorf("document string-value = %q, want onetwothreefour", got)
	}
}
