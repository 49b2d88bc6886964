package xpath

import "github.com/jacoelho/xq/internal/dom"

// axisNodes returns the candidate nodes an axis selects from ctx, in
// axis order: document order for forward axes, reverse document order
// for reverse axes. The node test has not been applied yet.
func axisNodes(d *dom.Document, n dom.NodeID, axis Axis) []dom.NodeID {
	switch axis {
	case AxisSelf:
		return []dom.NodeID{n}
	case AxisChild:
		return append([]dom.NodeID(nil), d.Children(n)...)
	case AxisDescendant:
		var out []dom.NodeID
		collectDescendants(d, n, &out)
		return out
	case AxisDescendantOrSelf:
		out := []dom.NodeID{n}
		collectDescendants(d, n, &out)
		return out
	case AxisParent:
		if parent := d.Parent(n); parent != dom.InvalidNode {
			return []dom.NodeID{parent}
		}
		return nil
	case AxisAncestor:
		var out []dom.NodeID
		for cur := d.Parent(n); cur != dom.InvalidNode; cur = d.Parent(cur) {
			out = append(out, cur)
		}
		return out
	case AxisAncestorOrSelf:
		out := []dom.NodeID{n}
		for cur := d.Parent(n); cur != dom.InvalidNode; cur = d.Parent(cur) {
			out = append(out, cur)
		}
		return out
	case AxisFollowingSibling:
		return siblings(d, n, true)
	case AxisPrecedingSibling:
		return siblings(d, n, false)
	case AxisFollowing:
		return following(d, n)
	case AxisPreceding:
		return preceding(d, n)
	case AxisAttribute:
		return d.Attributes(n)
	case AxisNamespace:
		return d.InScopeNamespaces(n)
	default:
		return nil
	}
}

func collectDescendants(d *dom.Document, n dom.NodeID, out *[]dom.NodeID) {
	for _, child := range d.Children(n) {
		*out = append(*out, child)
		collectDescendants(d, child, out)
	}
}

// siblings returns the following or preceding siblings of n. Attribute
// and namespace nodes have no siblings. Preceding siblings come back in
// reverse document order, as the axis requires.
func siblings(d *dom.Document, n dom.NodeID, followingDir bool) []dom.NodeID {
	kind := d.Kind(n)
	if kind == dom.KindAttribute || kind == dom.KindNamespace {
		return nil
	}
	parent := d.Parent(n)
	if parent == dom.InvalidNode {
		return nil
	}
	all := d.Children(parent)
	idx := -1
	for i, sib := range all {
		if sib == n {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	if followingDir {
		return append([]dom.NodeID(nil), all[idx+1:]...)
	}
	out := make([]dom.NodeID, 0, idx)
	for i := idx - 1; i >= 0; i-- {
		out = append(out, all[i])
	}
	return out
}

// following selects every node after n in document order, excluding
// descendants and attribute/namespace nodes: for each ancestor-or-self,
// the subtrees of its following siblings.
func following(d *dom.Document, n dom.NodeID) []dom.NodeID {
	var out []dom.NodeID
	for cur := startingElementOrSelf(d, n); cur != dom.InvalidNode; cur = d.Parent(cur) {
		for _, sib := range siblings(d, cur, true) {
			out = append(out, sib)
			collectDescendants(d, sib, &out)
		}
	}
	return out
}

// preceding selects every node before n in document order, excluding
// ancestors and attribute/namespace nodes, in reverse document order.
func preceding(d *dom.Document, n dom.NodeID) []dom.NodeID {
	var out []dom.NodeID
	for cur := startingElementOrSelf(d, n); cur != dom.InvalidNode; cur = d.Parent(cur) {
		for _, sib := range siblings(d, cur, false) {
			var subtree []dom.NodeID
			subtree = append(subtree, sib)
			collectDescendants(d, sib, &subtree)
			for i := len(subtree) - 1; i >= 0; i-- {
				out = append(out, subtree[i])
			}
		}
	}
	return out
}

// startingElementOrSelf maps attribute and namespace nodes to their
// owning element; following/preceding are defined relative to it.
func startingElementOrSelf(d *dom.Document, n dom.NodeID) dom.NodeID {
	switch d.Kind(n) {
	case dom.KindAttribute, dom.KindNamespace:
		return d.Parent(n)
	default:
		return n
	}
}

// matchTest reports whether a candidate passes the step's node test.
// The principal node type of the attribute axis is attribute, of the
// namespace axis namespace, and element for every other axis.
func matchTest(d *dom.Document, n dom.NodeID, axis Axis, test NodeTest) bool {
	kind := d.Kind(n)
	switch test.Kind {
	case TestNode:
		return true
	case TestText:
		return kind == dom.KindText
	case TestComment:
		return kind == dom.KindComment
	case TestProcInst:
		if kind != dom.KindProcInst {
			return false
		}
		return test.Local == "" || test.Local == d.LocalName(n)
	case TestName:
		switch axis {
		case AxisAttribute:
			if kind != dom.KindAttribute {
				return false
			}
		case AxisNamespace:
			if kind != dom.KindNamespace {
				return false
			}
			// A namespace node's expanded name is its prefix.
			if test.Local == "*" && !test.Prefixed {
				return true
			}
			return test.Namespace == "" && test.Local == d.Prefix(n)
		default:
			if kind != dom.KindElement {
				return false
			}
		}
		if test.Local == "*" && !test.Prefixed {
			return true
		}
		if d.Namespace(n) != test.Namespace {
			return false
		}
		return test.Local == "*" || test.Local == d.LocalName(n)
	default:
		return false
	}
}
