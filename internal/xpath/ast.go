// Package xpath implements an XPath 1.0 expression parser and evaluator
// over the dom document tree. Expressions are compiled once against an
// external prefix-to-URI binding table and can then be evaluated against
// any document.
package xpath

// Expr is an evaluable expression-tree node.
type Expr interface {
	exprNode()
}

// Operator enumerates the binary operators of XPath 1.0.
type Operator int

const (
	OpOr Operator = iota
	OpAnd
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpUnion
)

var operatorNames = map[Operator]string{
	OpOr: "or", OpAnd: "and",
	OpEq: "=", OpNeq: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "div", OpMod: "mod",
	OpUnion: "|",
}

// String returns the operator as written in an expression.
func (op Operator) String() string { return operatorNames[op] }

// BinaryExpr applies a binary operator to two sub-expressions.
type BinaryExpr struct {
	Op    Operator
	Left  Expr
	Right Expr
}

// NegExpr is unary minus.
type NegExpr struct {
	X Expr
}

// NumberLit is a numeric literal.
type NumberLit struct {
	Value float64
}

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
}

// VarRef is a $name variable reference. The engine has no variable
// bindings, so evaluation of a VarRef always fails.
type VarRef struct {
	Name string
}

// FuncCall invokes a core library function.
type FuncCall struct {
	Name string
	Args []Expr
}

// FilterExpr is a primary expression narrowed by predicates.
type FilterExpr struct {
	Primary    Expr
	Predicates []Expr
}

// PathExpr is a location path, optionally rooted at the document or at
// the node-set produced by a filter expression.
type PathExpr struct {
	Absolute bool // path starts at the document root
	Input    Expr // optional filter expression producing the start set
	Steps    []*Step
}

// Step is one axis/node-test/predicates unit of a location path.
type Step struct {
	Axis       Axis
	Test       NodeTest
	Predicates []Expr
}

// Axis enumerates the XPath 1.0 axes.
type Axis int

const (
	AxisChild Axis = iota
	AxisDescendant
	AxisDescendantOrSelf
	AxisSelf
	AxisParent
	AxisAncestor
	AxisAncestorOrSelf
	AxisFollowingSibling
	AxisPrecedingSibling
	AxisFollowing
	AxisPreceding
	AxisAttribute
	AxisNamespace
)

var axisNamesByAxis = map[Axis]string{
	AxisChild:            "child",
	AxisDescendant:       "descendant",
	AxisDescendantOrSelf: "descendant-or-self",
	AxisSelf:             "self",
	AxisParent:           "parent",
	AxisAncestor:         "ancestor",
	AxisAncestorOrSelf:   "ancestor-or-self",
	AxisFollowingSibling: "following-sibling",
	AxisPrecedingSibling: "preceding-sibling",
	AxisFollowing:        "following",
	AxisPreceding:        "preceding",
	AxisAttribute:        "attribute",
	AxisNamespace:        "namespace",
}

var axesByName = func() map[string]Axis {
	m := make(map[string]Axis, len(axisNamesByAxis))
	for axis, name := range axisNamesByAxis {
		m[name] = axis
	}
	return m
}()

// String returns the axis name as written in an expression.
func (a Axis) String() string { return axisNamesByAxis[a] }

// Reverse reports whether the axis numbers its nodes in reverse document
// order for position().
func (a Axis) Reverse() bool {
	switch a {
	case AxisParent, AxisAncestor, AxisAncestorOrSelf, AxisPrecedingSibling, AxisPreceding:
		return true
	default:
		return false
	}
}

// TestKind discriminates node tests.
type TestKind int

const (
	// TestName matches the axis's principal node type by name; Local may
	// be "*" for a namespace wildcard or any-name test.
	TestName TestKind = iota
	// TestNode matches any node.
	TestNode
	// TestText matches text nodes.
	TestText
	// TestComment matches comment nodes.
	TestComment
	// TestProcInst matches processing instructions, optionally by target.
	TestProcInst
)

// NodeTest filters the candidates an axis selects. For TestName the
// Namespace URI has been resolved from the expression prefix at compile
// time; Prefixed records whether the source name carried a prefix.
type NodeTest struct {
	Kind      TestKind
	Namespace string
	Local     string // local name, "*", or a processing-instruction target
	Prefixed  bool
}

func (*BinaryExpr) exprNode() {}
func (*NegExpr) exprNode()    {}
func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*VarRef) exprNode()     {}
func (*FuncCall) exprNode()   {}
func (*FilterExpr) exprNode() {}
func (*PathExpr) exprNode()   {}
