package dom

import "testing"

func TestReplaceTextKeepsAttributes(t *testing.T) {
	d := mustParse(t, `<a id="1"><b/>old</a>`)
	d.ReplaceText(d.Root(), "new")

	want := `<a id="1">new</a>`
	if got := serialize(t, d); got != want {
		t.Errorf("after ReplaceText: %q, want %q", got, want)
	}
}

func TestReplaceTextOnSelfClosed(t *testing.T) {
	d := mustParse(t, `<a><b/></a>`)
	b := d.Children(d.Root())[0]
	d.ReplaceText(b, "filled")

	want := `<a><b>filled</b></a>`
	if got := serialize(t, d); got != want {
		t.Errorf("after ReplaceText: %q, want %q", got, want)
	}
}

func TestReplaceContentImportsFragment(t *testing.T) {
	d := mustParse(t, `<doc><target>old</target></doc>`)
	nodes, frag, err := ParseFragment(`<x a="1">v</x> tail`)
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}

	target := d.Children(d.Root())[0]
	d.ReplaceContent(target, frag, nodes)

	want := `<doc><target><x a="1">v</x> tail</target></doc>`
	if got := serialize(t, d); got != want {
		t.Errorf("after ReplaceContent: %q, want %q", got, want)
	}
}

func TestReplaceContentTwiceFromSameFragment(t *testing.T) {
	d := mustParse(t, `<doc><a>1</a><b>2</b></doc>`)
	nodes, frag, err := ParseFragment(`<v/>`)
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}

	for _, el := range d.Children(d.Root()) {
		d.ReplaceContent(el, frag, nodes)
	}

	want := `<doc><a><v/></a><b><v/></b></doc>`
	if got := serialize(t, d); got != want {
		t.Errorf("after ReplaceContent: %q, want %q", got, want)
	}
}

func TestReplaceContentEmptyFragment(t *testing.T) {
	d := mustParse(t, `<doc><target>old</target></doc>`)
	nodes, frag, err := ParseFragment(``)
	if err != nil {
		t.Fatalf("ParseFragment failed: %v", err)
	}

	target := d.Children(d.Root())[0]
	d.ReplaceContent(target, frag, nodes)

	// Content was assigned, so the element renders with an end tag.
	want := `<doc><target></target></doc>`
	if got := serialize(t, d); got != want {
		t.Errorf("after ReplaceContent: %q, want %q", got, want)
	}
}

func TestSetAttributeValue(t *testing.T) {
	d := mustParse(t, `<a href="old.html">link</a>`)
	d.SetAttributeValue(d.Attributes(d.Root())[0], "new.html")

	want := `<a href="new.html">link</a>`
	if got := serialize(t, d); got != want {
		t.Errorf("after SetAttributeValue: %q, want %q", got, want)
	}
}

func TestSetTextValue(t *testing.T) {
	d := mustParse(t, `<a>old<b/>keep</a>`)
	d.SetTextValue(d.Children(d.Root())[0], "new")

	want := `<a>new<b/>keep</a>`
	if got := serialize(t, d); got != want {
		t.Errorf("after SetTextValue: %q, want %q", got, want)
	}
}

func TestMutationIgnoresKindMismatch(t *testing.T) {
	d := mustParse(t, `<a b="1">text</a>`)
	before := serialize(t, d)

	text := d.Children(d.Root())[0]
	attr := d.Attributes(d.Root())[0]
	d.ReplaceText(text, "x")
	d.SetAttributeValue(text, "x")
	d.SetTextValue(attr, "x")
	d.ReplaceContent(attr, d, nil)

	if got := serialize(t, d); got != before {
		t.Errorf("mismatched mutations changed the document: %q -> %q", before, got)
	}
}
