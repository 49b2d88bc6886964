package xpath

import (
	"strconv"
	"strings"

	xqerrors "github.com/jacoelho/xq/errors"
)

// Parse compiles an XPath 1.0 expression against an external
// prefix-to-URI binding table. Prefixes in the expression resolve
// against this table only, never against the document, so a query can
// target namespaces regardless of the prefixes the document declares.
// The "" key of ns supplies a default binding for unprefixed element
// name tests.
func Parse(expr string, ns map[string]string) (Expr, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{input: expr, tokens: tokens, ns: ns}
	parsed, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().kind != tokEOF {
		return nil, p.errorf(p.cur(), "unexpected trailing content")
	}
	return parsed, nil
}

type parser struct {
	input  string
	tokens []token
	pos    int
	ns     map[string]string
}

func (p *parser) cur() token { return p.tokens[p.pos] }

func (p *parser) peek() token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if p.pos+1 < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) errorf(at token, format string, args ...any) error {
	diag := xqerrors.Newf(xqerrors.ErrXPathSyntax, format, args...)
	diag.Line = 1
	diag.Column = at.pos + 1
	end := at.pos + 12
	if end > len(p.input) {
		end = len(p.input)
	}
	if at.pos < end {
		return diag.WithFragment(p.input[at.pos:end])
	}
	return diag
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if p.cur().kind != kind {
		return token{}, p.errorf(p.cur(), "expected %s", what)
	}
	return p.advance(), nil
}

// isOperatorName reports whether the current token is one of the
// operator NCNames. Valid only where a binary operator is expected.
func (t token) isOperatorName(name string) bool {
	return t.kind == tokName && t.text == name
}

func (p *parser) parseExpr() (Expr, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().isOperatorName("or") {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.cur().isOperatorName("and") {
		p.advance()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseEquality() (Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch p.cur().kind {
		case tokEq:
			op = OpEq
		case tokNeq:
			op = OpNeq
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseRelational() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch p.cur().kind {
		case tokLt:
			op = OpLt
		case tokLe:
			op = OpLe
		case tokGt:
			op = OpGt
		case tokGe:
			op = OpGe
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch p.cur().kind {
		case tokPlus:
			op = OpAdd
		case tokMinus:
			op = OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op Operator
		switch {
		case p.cur().kind == tokStar:
			op = OpMul
		case p.cur().isOperatorName("div"):
			op = OpDiv
		case p.cur().isOperatorName("mod"):
			op = OpMod
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.cur().kind == tokMinus {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NegExpr{X: x}, nil
	}
	return p.parseUnion()
}

func (p *parser) parseUnion() (Expr, error) {
	left, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	for p.cur().kind == tokPipe {
		p.advance()
		right, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpUnion, Left: left, Right: right}
	}
	return left, nil
}

// parsePath parses a PathExpr: a location path, or a filter expression
// optionally continued by a location path.
func (p *parser) parsePath() (Expr, error) {
	switch t := p.cur(); t.kind {
	case tokSlash:
		p.advance()
		path := &PathExpr{Absolute: true}
		if !p.startsStep() {
			// A lone '/' selects the document root.
			return path, nil
		}
		if err := p.parseRelativeSteps(path); err != nil {
			return nil, err
		}
		return path, nil
	case tokDoubleSlash:
		p.advance()
		path := &PathExpr{Absolute: true}
		path.Steps = append(path.Steps, descendantOrSelfStep())
		if err := p.parseRelativeSteps(path); err != nil {
			return nil, err
		}
		return path, nil
	case tokDot, tokDotDot, tokAt, tokStar:
		path := &PathExpr{}
		if err := p.parseRelativeSteps(path); err != nil {
			return nil, err
		}
		return path, nil
	case tokName:
		if p.isStepName(t) {
			path := &PathExpr{}
			if err := p.parseRelativeSteps(path); err != nil {
				return nil, err
			}
			return path, nil
		}
		return p.parseFilterPath()
	case tokLiteral, tokNumber, tokDollar, tokLParen:
		return p.parseFilterPath()
	default:
		return nil, p.errorf(t, "expected expression")
	}
}

// isStepName reports whether a name token begins a location step rather
// than a function call.
func (p *parser) isStepName(t token) bool {
	if p.peek().kind == tokAxisSep {
		return true
	}
	if p.peek().kind == tokLParen {
		return isNodeTypeName(t.text)
	}
	return true
}

func isNodeTypeName(name string) bool {
	switch name {
	case "node", "text", "comment", "processing-instruction":
		return true
	default:
		return false
	}
}

// parseFilterPath parses PrimaryExpr Predicate* ( ('/'|'//') RelativeLocationPath )?.
func (p *parser) parseFilterPath() (Expr, error) {
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	var predicates []Expr
	for p.cur().kind == tokLBracket {
		pred, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, pred)
	}

	if len(predicates) > 0 {
		primary = &FilterExpr{Primary: primary, Predicates: predicates}
	}

	switch p.cur().kind {
	case tokSlash:
		p.advance()
		path := &PathExpr{Input: primary}
		if err := p.parseRelativeSteps(path); err != nil {
			return nil, err
		}
		return path, nil
	case tokDoubleSlash:
		p.advance()
		path := &PathExpr{Input: primary}
		path.Steps = append(path.Steps, descendantOrSelfStep())
		if err := p.parseRelativeSteps(path); err != nil {
			return nil, err
		}
		return path, nil
	default:
		return primary, nil
	}
}

func (p *parser) parsePrimary() (Expr, error) {
	switch t := p.cur(); t.kind {
	case tokDollar:
		p.advance()
		name, err := p.expect(tokName, "variable name after '$'")
		if err != nil {
			return nil, err
		}
		return &VarRef{Name: name.text}, nil
	case tokLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case tokLiteral:
		p.advance()
		return &StringLit{Value: t.text}, nil
	case tokNumber:
		p.advance()
		value, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, p.errorf(t, "invalid number %q", t.text)
		}
		return &NumberLit{Value: value}, nil
	case tokName:
		return p.parseFunctionCall()
	default:
		return nil, p.errorf(t, "expected expression")
	}
}

func (p *parser) parseFunctionCall() (Expr, error) {
	name := p.advance()
	if strings.Contains(name.text, ":") {
		return nil, p.errorf(name, "unknown function %q", name.text)
	}
	if _, err := p.expect(tokLParen, "'(' after function name"); err != nil {
		return nil, err
	}
	var args []Expr
	if p.cur().kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur().kind != tokComma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	sig, ok := coreFunctions[name.text]
	if !ok {
		return nil, p.errorf(name, "unknown function %q", name.text)
	}
	if len(args) < sig.minArgs || (sig.maxArgs >= 0 && len(args) > sig.maxArgs) {
		return nil, p.errorf(name, "function %s called with %d argument(s)", name.text, len(args))
	}
	return &FuncCall{Name: name.text, Args: args}, nil
}

// parseRelativeSteps parses Step (('/'|'//') Step)* and appends to path.
func (p *parser) parseRelativeSteps(path *PathExpr) error {
	for {
		step, err := p.parseStep()
		if err != nil {
			return err
		}
		path.Steps = append(path.Steps, step)

		switch p.cur().kind {
		case tokSlash:
			p.advance()
		case tokDoubleSlash:
			p.advance()
			path.Steps = append(path.Steps, descendantOrSelfStep())
		default:
			return nil
		}
	}
}

func (p *parser) startsStep() bool {
	switch t := p.cur(); t.kind {
	case tokDot, tokDotDot, tokAt, tokStar, tokName:
		return true
	default:
		return false
	}
}

func descendantOrSelfStep() *Step {
	return &Step{Axis: AxisDescendantOrSelf, Test: NodeTest{Kind: TestNode}}
}

func (p *parser) parseStep() (*Step, error) {
	switch t := p.cur(); t.kind {
	case tokDot:
		p.advance()
		return &Step{Axis: AxisSelf, Test: NodeTest{Kind: TestNode}}, nil
	case tokDotDot:
		p.advance()
		return &Step{Axis: AxisParent, Test: NodeTest{Kind: TestNode}}, nil
	case tokAt:
		p.advance()
		return p.parseStepTail(AxisAttribute)
	case tokStar:
		return p.parseStepTail(AxisChild)
	case tokName:
		if p.peek().kind == tokAxisSep {
			axis, ok := axesByName[t.text]
			if !ok {
				return nil, p.errorf(t, "unknown axis %q", t.text)
			}
			p.advance()
			p.advance()
			return p.parseStepTail(axis)
		}
		return p.parseStepTail(AxisChild)
	default:
		return nil, p.errorf(t, "expected location step")
	}
}

func (p *parser) parseStepTail(axis Axis) (*Step, error) {
	test, err := p.parseNodeTest(axis)
	if err != nil {
		return nil, err
	}
	step := &Step{Axis: axis, Test: test}
	for p.cur().kind == tokLBracket {
		pred, err := p.parsePredicate()
		if err != nil {
			return nil, err
		}
		step.Predicates = append(step.Predicates, pred)
	}
	return step, nil
}

func (p *parser) parsePredicate() (Expr, error) {
	if _, err := p.expect(tokLBracket, "'['"); err != nil {
		return nil, err
	}
	pred, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRBracket, "']'"); err != nil {
		return nil, err
	}
	return pred, nil
}

func (p *parser) parseNodeTest(axis Axis) (NodeTest, error) {
	switch t := p.cur(); t.kind {
	case tokStar:
		p.advance()
		return NodeTest{Kind: TestName, Local: "*"}, nil
	case tokName:
		if p.peek().kind == tokLParen && isNodeTypeName(t.text) {
			return p.parseNodeTypeTest()
		}
		p.advance()
		return p.resolveNameTest(t, axis)
	default:
		return NodeTest{}, p.errorf(t, "expected node test")
	}
}

func (p *parser) parseNodeTypeTest() (NodeTest, error) {
	name := p.advance()
	p.advance() // '('
	test := NodeTest{}
	switch name.text {
	case "node":
		test.Kind = TestNode
	case "text":
		test.Kind = TestText
	case "comment":
		test.Kind = TestComment
	case "processing-instruction":
		test.Kind = TestProcInst
		if p.cur().kind == tokLiteral {
			test.Local = p.advance().text
		}
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return NodeTest{}, err
	}
	return test, nil
}

// resolveNameTest binds the name test's prefix against the external
// namespace table. Unprefixed tests on element-principal axes pick up
// the external default binding when one exists; attribute and namespace
// tests never do.
func (p *parser) resolveNameTest(t token, axis Axis) (NodeTest, error) {
	prefix, local, hasPrefix := strings.Cut(t.text, ":")
	if !hasPrefix {
		local = t.text
		test := NodeTest{Kind: TestName, Local: local}
		if axis != AxisAttribute && axis != AxisNamespace {
			test.Namespace = p.ns[""]
		}
		return test, nil
	}

	uri, ok := p.ns[prefix]
	if !ok {
		diag := xqerrors.Newf(xqerrors.ErrUnboundPrefix, "prefix %q has no namespace binding", prefix)
		diag.Line = 1
		diag.Column = t.pos + 1
		return NodeTest{}, diag.WithFragment(t.text)
	}
	return NodeTest{Kind: TestName, Namespace: uri, Local: local, Prefixed: true}, nil
}
