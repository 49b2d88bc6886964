// Package dom implements the namespace-aware XML document tree shared by
// the parser, the XPath engine, the serializer, and the edit mutator.
//
// Nodes live in a per-document arena and are addressed by NodeID. All
// navigation links (parent, children, attributes) are IDs into the arena,
// so the ownership graph stays a strict tree. The parser emits nodes in
// pre-order with attribute and namespace-declaration nodes immediately
// after their owning element, which makes NodeID order the document order
// for any document that has not been mutated.
package dom

import "strings"

// NodeID identifies a node in the document arena.
type NodeID int32

// InvalidNode represents an invalid node reference.
const InvalidNode NodeID = -1

// DocumentRoot is the ID of the synthetic document node.
const DocumentRoot NodeID = 0

// NodeKind discriminates the node variants stored in the arena.
type NodeKind uint8

const (
	// KindDocument is the synthetic root owning the prolog and the root element.
	KindDocument NodeKind = iota
	// KindElement is an element node.
	KindElement
	// KindAttribute is an attribute node, owned by an element.
	KindAttribute
	// KindText is a character data node.
	KindText
	// KindComment is a comment node.
	KindComment
	// KindProcInst is a processing-instruction node.
	KindProcInst
	// KindNamespace is a namespace declaration node, owned by an element.
	KindNamespace
)

type node struct {
	kind   NodeKind
	prefix string // element/attribute prefix, or the declared prefix of a namespace node
	local  string // element/attribute local name, or a processing-instruction target
	ns     string // resolved namespace URI of an element or attribute
	value  string // text/comment/PI content, attribute value, or namespace URI
	parent NodeID

	// children holds element, text, comment and PI nodes in document order.
	children []NodeID
	// extras holds attribute and namespace-declaration nodes in source
	// order; the mixed list preserves the original declaration order for
	// serialization.
	extras []NodeID

	selfClosed bool
}

// Document is the arena for one parsed XML document.
type Document struct {
	nodes []node
	decl  string // raw XML declaration, including <? and ?>, or ""
}

// NewDocument returns a document containing only the synthetic root node.
func NewDocument() *Document {
	return &Document{nodes: []node{{kind: KindDocument, parent: InvalidNode}}}
}

func (d *Document) valid(id NodeID) bool {
	return d != nil && id >= 0 && int(id) < len(d.nodes)
}

func (d *Document) alloc(n node) NodeID {
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

// Root returns the document's root element, or InvalidNode for an empty
// document.
func (d *Document) Root() NodeID {
	for _, id := range d.Children(DocumentRoot) {
		if d.Kind(id) == KindElement {
			return id
		}
	}
	return InvalidNode
}

// Declaration returns the raw XML declaration, or "" when the source had none.
func (d *Document) Declaration() string {
	if d == nil {
		return ""
	}
	return d.decl
}

// Kind returns the node kind, or KindDocument for invalid IDs.
func (d *Document) Kind(id NodeID) NodeKind {
	if !d.valid(id) {
		return KindDocument
	}
	return d.nodes[id].kind
}

// Parent returns the parent node, or InvalidNode for the document node.
// Attribute and namespace nodes report their owning element.
func (d *Document) Parent(id NodeID) NodeID {
	if !d.valid(id) {
		return InvalidNode
	}
	return d.nodes[id].parent
}

// Prefix returns the source namespace prefix of an element or attribute,
// or the declared prefix of a namespace node ("" for the default).
func (d *Document) Prefix(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	return d.nodes[id].prefix
}

// LocalName returns the local part of an element or attribute name, the
// target of a processing instruction, or "" for other kinds.
func (d *Document) LocalName(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	return d.nodes[id].local
}

// Namespace returns the resolved namespace URI of an element or attribute.
func (d *Document) Namespace(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	return d.nodes[id].ns
}

// Value returns text/comment/PI content, an attribute value, or the URI
// of a namespace node.
func (d *Document) Value(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	return d.nodes[id].value
}

// Name returns the qualified name as written in the source, prefix included.
func (d *Document) Name(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	n := d.nodes[id]
	switch n.kind {
	case KindElement, KindAttribute:
		if n.prefix != "" {
			return n.prefix + ":" + n.local
		}
		return n.local
	case KindProcInst:
		return n.local
	case KindNamespace:
		return n.prefix
	default:
		return ""
	}
}

// Children returns the child nodes of a document or element node.
// The returned slice aliases the arena; do not modify or retain it.
func (d *Document) Children(id NodeID) []NodeID {
	if !d.valid(id) {
		return nil
	}
	return d.nodes[id].children
}

// AttributesAndNamespaces returns the element's attribute and
// namespace-declaration nodes in source order.
// The returned slice aliases the arena; do not modify or retain it.
func (d *Document) AttributesAndNamespaces(id NodeID) []NodeID {
	if !d.valid(id) {
		return nil
	}
	return d.nodes[id].extras
}

// Attributes returns the element's attribute nodes in source order.
func (d *Document) Attributes(id NodeID) []NodeID {
	var attrs []NodeID
	for _, x := range d.AttributesAndNamespaces(id) {
		if d.Kind(x) == KindAttribute {
			attrs = append(attrs, x)
		}
	}
	return attrs
}

// NamespaceDecls returns the namespace declarations made on the element
// itself, in source order.
func (d *Document) NamespaceDecls(id NodeID) []NodeID {
	var decls []NodeID
	for _, x := range d.AttributesAndNamespaces(id) {
		if d.Kind(x) == KindNamespace {
			decls = append(decls, x)
		}
	}
	return decls
}

// SelfClosed reports whether the element was written as an empty tag in
// the source. An edit clears the flag.
func (d *Document) SelfClosed(id NodeID) bool {
	if !d.valid(id) {
		return false
	}
	return d.nodes[id].selfClosed
}

// StringValue returns the XPath string-value of a node: for elements and
// the document node, the concatenation of all descendant text in document
// order; for every other kind, the node's value.
func (d *Document) StringValue(id NodeID) string {
	if !d.valid(id) {
		return ""
	}
	switch d.nodes[id].kind {
	case KindDocument, KindElement:
		var sb strings.Builder
		d.collectText(id, &sb)
		return sb.String()
	default:
		return d.nodes[id].value
	}
}

func (d *Document) collectText(id NodeID, sb *strings.Builder) {
	for _, child := range d.nodes[id].children {
		switch d.nodes[child].kind {
		case KindText:
			sb.WriteString(d.nodes[child].value)
		case KindElement:
			d.collectText(child, sb)
		}
	}
}

// CompareOrder reports -1, 0, or 1 as a precedes, equals, or follows b in
// document order. Valid for documents that have not been mutated.
func (d *Document) CompareOrder(a, b NodeID) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
