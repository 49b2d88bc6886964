package dom

// Mutation entry points used by the edit tool. Mutation appends nodes at
// the end of the arena, so NodeID order stops being document order once a
// document has been edited; callers must finish evaluating before they
// mutate.

// ReplaceContent discards the element's children and grafts deep copies
// of the given nodes (owned by src) in their place. The element stops
// being self-closing once content has been assigned, even when the new
// content is empty.
func (d *Document) ReplaceContent(el NodeID, src *Document, nodes []NodeID) {
	if !d.valid(el) || d.nodes[el].kind != KindElement {
		return
	}
	d.nodes[el].children = nil
	d.nodes[el].selfClosed = false
	for _, n := range nodes {
		imported := d.importNode(src, n, el)
		if imported != InvalidNode {
			d.nodes[el].children = append(d.nodes[el].children, imported)
		}
	}
}

// ReplaceText discards the element's children and inserts a single text
// node holding the literal value.
func (d *Document) ReplaceText(el NodeID, value string) {
	if !d.valid(el) || d.nodes[el].kind != KindElement {
		return
	}
	textID := d.alloc(node{kind: KindText, value: value, parent: el})
	d.nodes[el].children = []NodeID{textID}
	d.nodes[el].selfClosed = false
}

// SetAttributeValue replaces an attribute node's value.
func (d *Document) SetAttributeValue(attr NodeID, value string) {
	if !d.valid(attr) || d.nodes[attr].kind != KindAttribute {
		return
	}
	d.nodes[attr].value = value
}

// SetTextValue replaces a text node's content.
func (d *Document) SetTextValue(text NodeID, value string) {
	if !d.valid(text) || d.nodes[text].kind != KindText {
		return
	}
	d.nodes[text].value = value
}

// importNode deep-copies a node subtree from src into d under parent.
func (d *Document) importNode(src *Document, id NodeID, parent NodeID) NodeID {
	if !src.valid(id) {
		return InvalidNode
	}
	orig := src.nodes[id]
	copied := node{
		kind:       orig.kind,
		prefix:     orig.prefix,
		local:      orig.local,
		ns:         orig.ns,
		value:      orig.value,
		parent:     parent,
		selfClosed: orig.selfClosed,
	}
	newID := d.alloc(copied)
	for _, extra := range orig.extras {
		imported := d.importNode(src, extra, newID)
		if imported != InvalidNode {
			d.nodes[newID].extras = append(d.nodes[newID].extras, imported)
		}
	}
	for _, child := range orig.children {
		imported := d.importNode(src, child, newID)
		if imported != InvalidNode {
			d.nodes[newID].children = append(d.nodes[newID].children, imported)
		}
	}
	return newID
}
