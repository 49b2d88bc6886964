package dom

import (
	"io"
	"strings"
)

// WriteDocument serializes the whole document, reproducing the XML
// declaration and prolog when the source had them. No whitespace is
// added or removed.
func (d *Document) WriteDocument(w io.Writer) error {
	if d.decl != "" {
		if _, err := io.WriteString(w, d.decl); err != nil {
			return err
		}
	}
	for _, child := range d.Children(DocumentRoot) {
		if err := d.WriteNode(w, child); err != nil {
			return err
		}
	}
	return nil
}

// WriteNode serializes a single node. Elements render as markup with
// their source prefixes and attribute order; standalone attribute and
// namespace nodes emit only their value, and text nodes their raw
// content, matching the query tool's output rules.
func (d *Document) WriteNode(w io.Writer, id NodeID) error {
	if !d.valid(id) {
		return nil
	}
	switch d.nodes[id].kind {
	case KindDocument:
		return d.WriteDocument(w)
	case KindElement:
		return d.writeElement(w, id)
	case KindText, KindAttribute, KindNamespace:
		_, err := io.WriteString(w, d.nodes[id].value)
		return err
	case KindComment:
		_, err := io.WriteString(w, "<!--"+d.nodes[id].value+"-->")
		return err
	case KindProcInst:
		n := d.nodes[id]
		s := "<?" + n.local
		if n.value != "" {
			s += " " + n.value
		}
		_, err := io.WriteString(w, s+"?>")
		return err
	default:
		return nil
	}
}

func (d *Document) writeElement(w io.Writer, id NodeID) error {
	n := d.nodes[id]
	name := d.Name(id)

	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(name)
	for _, extra := range n.extras {
		x := d.nodes[extra]
		sb.WriteByte(' ')
		switch x.kind {
		case KindAttribute:
			sb.WriteString(d.Name(extra))
		case KindNamespace:
			if x.prefix == "" {
				sb.WriteString("xmlns")
			} else {
				sb.WriteString("xmlns:" + x.prefix)
			}
		}
		sb.WriteString(`="`)
		escapeAttr(&sb, x.value)
		sb.WriteByte('"')
	}

	if len(n.children) == 0 && n.selfClosed {
		sb.WriteString("/>")
		_, err := io.WriteString(w, sb.String())
		return err
	}

	sb.WriteByte('>')
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	for _, child := range n.children {
		if d.nodes[child].kind == KindText {
			var tb strings.Builder
			escapeText(&tb, d.nodes[child].value)
			if _, err := io.WriteString(w, tb.String()); err != nil {
				return err
			}
			continue
		}
		if err := d.WriteNode(w, child); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+name+">")
	return err
}

// String renders a node to a string; it is a convenience over WriteNode.
func (d *Document) String(id NodeID) string {
	var sb strings.Builder
	_ = d.WriteNode(&sb, id)
	return sb.String()
}

func escapeText(sb *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		default:
			sb.WriteRune(r)
		}
	}
}

func escapeAttr(sb *strings.Builder, s string) {
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '"':
			sb.WriteString("&quot;")
		default:
			sb.WriteRune(r)
		}
	}
}
