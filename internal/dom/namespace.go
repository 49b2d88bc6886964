package dom

import "slices"

// Well-known namespaces.
const (
	// XMLNamespace is the namespace implicitly bound to the xml prefix.
	XMLNamespace = "http://www.w3.org/XML/1998/namespace"
	// XMLNSNamespace is the namespace of xmlns declarations themselves.
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"
)

// LookupPrefix resolves prefix at the given node by walking ancestors
// outward for a matching declaration, nearest-ancestor-wins. The xml
// prefix is implicitly bound. An undeclared default prefix resolves to
// the empty URI; any other undeclared prefix reports ok=false.
func (d *Document) LookupPrefix(id NodeID, prefix string) (uri string, ok bool) {
	if prefix == "xml" {
		return XMLNamespace, true
	}
	for cur := d.nearestElement(id); cur != InvalidNode; cur = d.Parent(cur) {
		if d.Kind(cur) != KindElement {
			break
		}
		for _, decl := range d.nodes[cur].extras {
			n := d.nodes[decl]
			if n.kind == KindNamespace && n.prefix == prefix {
				return n.value, true
			}
		}
	}
	if prefix == "" {
		return "", true
	}
	return "", false
}

// InScopeNamespaces returns the namespace-declaration nodes in scope at
// the element, nearest declaration winning per prefix, ordered by the
// position of the winning declaration in document order. The implicit
// xml binding is not materialized.
func (d *Document) InScopeNamespaces(id NodeID) []NodeID {
	seen := make(map[string]struct{})
	var decls []NodeID
	for cur := d.nearestElement(id); cur != InvalidNode; cur = d.Parent(cur) {
		if d.Kind(cur) != KindElement {
			break
		}
		for _, decl := range d.nodes[cur].extras {
			n := d.nodes[decl]
			if n.kind != KindNamespace {
				continue
			}
			if _, dup := seen[n.prefix]; dup {
				continue
			}
			seen[n.prefix] = struct{}{}
			// An empty URI undeclares the default prefix.
			if n.value == "" && n.prefix == "" {
				continue
			}
			decls = append(decls, decl)
		}
	}
	slices.Sort(decls)
	return decls
}

func (d *Document) nearestElement(id NodeID) NodeID {
	for cur := id; cur != InvalidNode; cur = d.Parent(cur) {
		if d.Kind(cur) == KindElement {
			return cur
		}
	}
	return InvalidNode
}
