package dom

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	xqerrors "github.com/jacoelho/xq/errors"
)

// Parse builds a document tree from complete UTF-8 XML input. Whitespace
// inside the root element is preserved verbatim; character and entity
// references are decoded; xmlns attributes become namespace-declaration
// nodes. A malformed document yields an ErrMalformedXML diagnostic with
// line and column context.
func Parse(r io.Reader) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, xqerrors.Newf(xqerrors.ErrMalformedXML, "read input: %v", err)
	}
	return ParseBytes(src)
}

// ParseBytes is Parse over an in-memory buffer.
func ParseBytes(src []byte) (*Document, error) {
	p := &parser{src: src, doc: NewDocument()}
	if err := p.parseDocument(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

// ParseFragment parses content as the children of a synthetic wrapper
// element and returns their IDs together with the document that owns
// them. It is used by the edit mutator to interpret replacement values.
func ParseFragment(content string) ([]NodeID, *Document, error) {
	wrapped := "<fragment>" + content + "</fragment>"
	doc, err := ParseBytes([]byte(wrapped))
	if err != nil {
		return nil, nil, err
	}
	root := doc.Root()
	children := append([]NodeID(nil), doc.Children(root)...)
	return children, doc, nil
}

type parser struct {
	src []byte
	pos int
	doc *Document
}

func (p *parser) lineCol(at int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < at && i < len(p.src); i++ {
		if p.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func (p *parser) errorf(at int, format string, args ...any) error {
	line, col := p.lineCol(at)
	return xqerrors.NewAt(xqerrors.ErrMalformedXML, line, col, format, args...)
}

func (p *parser) parseDocument() error {
	// A leading byte-order mark is tolerated and skipped.
	if bytes.HasPrefix(p.src, []byte{0xEF, 0xBB, 0xBF}) {
		p.pos += 3
	}

	if err := p.parseProlog(); err != nil {
		return err
	}

	if p.pos >= len(p.src) || p.src[p.pos] != '<' {
		return p.errorf(p.pos, "expected root element")
	}
	rootID, err := p.parseElement(DocumentRoot)
	if err != nil {
		return err
	}
	p.doc.nodes[DocumentRoot].children = append(p.doc.nodes[DocumentRoot].children, rootID)

	// Only comments, processing instructions, and whitespace may follow
	// the root element.
	for p.pos < len(p.src) {
		p.skipWhitespace()
		if p.pos >= len(p.src) {
			break
		}
		switch {
		case p.hasPrefix("<!--"):
			id, err := p.parseComment(DocumentRoot)
			if err != nil {
				return err
			}
			p.appendChild(DocumentRoot, id)
		case p.hasPrefix("<?"):
			id, err := p.parseProcInst(DocumentRoot)
			if err != nil {
				return err
			}
			p.appendChild(DocumentRoot, id)
		default:
			return p.errorf(p.pos, "unexpected content after document end")
		}
	}
	return nil
}

func (p *parser) parseProlog() error {
	if p.hasPrefix("<?xml") && p.pos+5 < len(p.src) && isSpace(p.src[p.pos+5]) {
		start := p.pos
		end := bytes.Index(p.src[p.pos:], []byte("?>"))
		if end < 0 {
			return p.errorf(start, "unterminated XML declaration")
		}
		p.doc.decl = string(p.src[start : p.pos+end+2])
		p.pos += end + 2
	}
	for {
		p.skipWhitespace()
		switch {
		case p.hasPrefix("<!--"):
			id, err := p.parseComment(DocumentRoot)
			if err != nil {
				return err
			}
			p.appendChild(DocumentRoot, id)
		case p.hasPrefix("<!"):
			return p.errorf(p.pos, "document type declarations are not supported")
		case p.hasPrefix("<?"):
			id, err := p.parseProcInst(DocumentRoot)
			if err != nil {
				return err
			}
			p.appendChild(DocumentRoot, id)
		default:
			return nil
		}
	}
}

func (p *parser) appendChild(parent, child NodeID) {
	p.doc.nodes[parent].children = append(p.doc.nodes[parent].children, child)
}

// parseElement parses one element including its content and end tag.
// The caller is positioned on '<'.
func (p *parser) parseElement(parent NodeID) (NodeID, error) {
	start := p.pos
	p.pos++ // '<'
	name, err := p.readName()
	if err != nil {
		return InvalidNode, err
	}
	prefix, local := splitQName(name)

	id := p.doc.alloc(node{kind: KindElement, prefix: prefix, local: local, parent: parent})

	var prefixedAttrs []NodeID

	for {
		hadSpace := p.skipWhitespaceCount() > 0
		if p.pos >= len(p.src) {
			return InvalidNode, p.errorf(start, "unclosed start tag <%s", name)
		}
		if p.hasPrefix("/>") {
			p.pos += 2
			p.doc.nodes[id].selfClosed = true
			return id, p.resolveElement(id, start, prefixedAttrs)
		}
		if p.src[p.pos] == '>' {
			p.pos++
			break
		}
		if !hadSpace {
			return InvalidNode, p.errorf(p.pos, "expected whitespace before attribute in <%s", name)
		}

		attrAt := p.pos
		attrName, err := p.readName()
		if err != nil {
			return InvalidNode, err
		}
		p.skipWhitespace()
		if p.pos >= len(p.src) || p.src[p.pos] != '=' {
			return InvalidNode, p.errorf(attrAt, "attribute %s has no value", attrName)
		}
		p.pos++
		p.skipWhitespace()
		value, err := p.readAttrValue(attrAt, attrName)
		if err != nil {
			return InvalidNode, err
		}

		switch {
		case attrName == "xmlns":
			p.addExtra(id, node{kind: KindNamespace, prefix: "", value: value, parent: id})
		case strings.HasPrefix(attrName, "xmlns:"):
			declared := attrName[len("xmlns:"):]
			if declared == "" {
				return InvalidNode, p.errorf(attrAt, "invalid namespace declaration %s", attrName)
			}
			p.addExtra(id, node{kind: KindNamespace, prefix: declared, value: value, parent: id})
		default:
			aPrefix, aLocal := splitQName(attrName)
			attrID := p.addExtra(id, node{kind: KindAttribute, prefix: aPrefix, local: aLocal, value: value, parent: id})
			if aPrefix != "" {
				prefixedAttrs = append(prefixedAttrs, attrID)
			}
		}
	}

	if err := p.resolveElement(id, start, prefixedAttrs); err != nil {
		return InvalidNode, err
	}

	if err := p.parseContent(id, name, start); err != nil {
		return InvalidNode, err
	}
	return id, nil
}

func (p *parser) addExtra(owner NodeID, n node) NodeID {
	id := p.doc.alloc(n)
	p.doc.nodes[owner].extras = append(p.doc.nodes[owner].extras, id)
	return id
}

// resolveElement binds the element's own prefix and those of its
// prefixed attributes now that the element's declarations are recorded.
func (p *parser) resolveElement(id NodeID, at int, prefixedAttrs []NodeID) error {
	elemPrefix := p.doc.nodes[id].prefix
	uri, ok := p.doc.LookupPrefix(id, elemPrefix)
	if !ok {
		return p.unboundPrefix(at, elemPrefix)
	}
	p.doc.nodes[id].ns = uri

	for _, attrID := range prefixedAttrs {
		aPrefix := p.doc.nodes[attrID].prefix
		uri, ok := p.doc.LookupPrefix(id, aPrefix)
		if !ok || uri == "" {
			return p.unboundPrefix(at, aPrefix)
		}
		p.doc.nodes[attrID].ns = uri
	}
	return nil
}

func (p *parser) unboundPrefix(at int, prefix string) error {
	line, col := p.lineCol(at)
	return xqerrors.NewAt(xqerrors.ErrUnboundPrefix, line, col, "namespace prefix %q is not declared", prefix)
}

func (p *parser) parseContent(id NodeID, name string, start int) error {
	var text strings.Builder
	haveText := false

	flushText := func() {
		if !haveText {
			return
		}
		textID := p.doc.alloc(node{kind: KindText, value: text.String(), parent: id})
		p.appendChild(id, textID)
		text.Reset()
		haveText = false
	}

	for {
		if p.pos >= len(p.src) {
			return p.errorf(start, "element <%s> is not closed", name)
		}
		switch {
		case p.hasPrefix("</"):
			flushText()
			p.pos += 2
			endName, err := p.readName()
			if err != nil {
				return err
			}
			if endName != name {
				return p.errorf(p.pos, "end tag </%s> does not match <%s>", endName, name)
			}
			p.skipWhitespace()
			if p.pos >= len(p.src) || p.src[p.pos] != '>' {
				return p.errorf(p.pos, "malformed end tag </%s", endName)
			}
			p.pos++
			return nil
		case p.hasPrefix("<![CDATA["):
			p.pos += len("<![CDATA[")
			end := bytes.Index(p.src[p.pos:], []byte("]]>"))
			if end < 0 {
				return p.errorf(p.pos, "unterminated CDATA section")
			}
			text.Write(p.src[p.pos : p.pos+end])
			haveText = true
			p.pos += end + 3
		case p.hasPrefix("<!--"):
			flushText()
			cid, err := p.parseComment(id)
			if err != nil {
				return err
			}
			p.appendChild(id, cid)
		case p.hasPrefix("<?"):
			flushText()
			pid, err := p.parseProcInst(id)
			if err != nil {
				return err
			}
			p.appendChild(id, pid)
		case p.src[p.pos] == '<':
			flushText()
			childID, err := p.parseElement(id)
			if err != nil {
				return err
			}
			p.appendChild(id, childID)
		case p.src[p.pos] == '&':
			r, err := p.readReference()
			if err != nil {
				return err
			}
			text.WriteString(r)
			haveText = true
		default:
			text.WriteByte(p.src[p.pos])
			haveText = true
			p.pos++
		}
	}
}

func (p *parser) parseComment(parent NodeID) (NodeID, error) {
	start := p.pos
	p.pos += len("<!--")
	end := bytes.Index(p.src[p.pos:], []byte("-->"))
	if end < 0 {
		return InvalidNode, p.errorf(start, "unterminated comment")
	}
	value := string(p.src[p.pos : p.pos+end])
	p.pos += end + 3
	return p.doc.alloc(node{kind: KindComment, value: value, parent: parent}), nil
}

func (p *parser) parseProcInst(parent NodeID) (NodeID, error) {
	start := p.pos
	p.pos += len("<?")
	target, err := p.readName()
	if err != nil {
		return InvalidNode, err
	}
	if strings.EqualFold(target, "xml") {
		return InvalidNode, p.errorf(start, "XML declaration is only allowed at the start of the document")
	}
	end := bytes.Index(p.src[p.pos:], []byte("?>"))
	if end < 0 {
		return InvalidNode, p.errorf(start, "unterminated processing instruction")
	}
	value := strings.TrimLeft(string(p.src[p.pos:p.pos+end]), " \t\r\n")
	p.pos += end + 2
	return p.doc.alloc(node{kind: KindProcInst, local: target, value: value, parent: parent}), nil
}

func (p *parser) readAttrValue(at int, name string) (string, error) {
	if p.pos >= len(p.src) || (p.src[p.pos] != '"' && p.src[p.pos] != '\'') {
		return "", p.errorf(at, "attribute %s has no quoted value", name)
	}
	quote := p.src[p.pos]
	p.pos++
	var sb strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorf(at, "attribute %s value is not terminated", name)
		}
		switch c := p.src[p.pos]; c {
		case quote:
			p.pos++
			return sb.String(), nil
		case '<':
			return "", p.errorf(p.pos, "literal '<' in attribute %s value", name)
		case '&':
			r, err := p.readReference()
			if err != nil {
				return "", err
			}
			sb.WriteString(r)
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

// readReference decodes one entity or character reference starting at '&'.
func (p *parser) readReference() (string, error) {
	start := p.pos
	semi := bytes.IndexByte(p.src[p.pos:], ';')
	if semi < 0 || semi > 32 {
		return "", p.errorf(start, "unterminated entity reference")
	}
	ref := string(p.src[p.pos+1 : p.pos+semi])
	p.pos += semi + 1

	switch ref {
	case "lt":
		return "<", nil
	case "gt":
		return ">", nil
	case "amp":
		return "&", nil
	case "apos":
		return "'", nil
	case "quot":
		return "\"", nil
	}
	if strings.HasPrefix(ref, "#") {
		digits := ref[1:]
		base := 10
		if strings.HasPrefix(digits, "x") || strings.HasPrefix(digits, "X") {
			digits = digits[1:]
			base = 16
		}
		n, err := strconv.ParseUint(digits, base, 32)
		if err != nil {
			return "", p.errorf(start, "invalid character reference &%s;", ref)
		}
		r := rune(n)
		if !isXMLChar(r) {
			return "", p.errorf(start, "character reference &%s; is not a valid XML character", ref)
		}
		return string(r), nil
	}
	return "", p.errorf(start, "unknown entity &%s;", ref)
}

func (p *parser) readName() (string, error) {
	start := p.pos
	r, size := utf8.DecodeRune(p.src[p.pos:])
	if !isNameStart(r) {
		return "", p.errorf(start, "invalid name character %q", r)
	}
	p.pos += size
	for p.pos < len(p.src) {
		r, size = utf8.DecodeRune(p.src[p.pos:])
		if !isNameChar(r) {
			break
		}
		p.pos += size
	}
	return string(p.src[start:p.pos]), nil
}

func (p *parser) hasPrefix(s string) bool {
	return bytes.HasPrefix(p.src[p.pos:], []byte(s))
}

func (p *parser) skipWhitespace() {
	p.skipWhitespaceCount()
}

func (p *parser) skipWhitespaceCount() int {
	n := 0
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
		n++
	}
	return n
}

func splitQName(name string) (prefix, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isNameStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isNameChar(r rune) bool {
	return isNameStart(r) || r == '-' || r == '.' || r == ':' || unicode.IsDigit(r)
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x9 || r == 0xA || r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	default:
		return false
	}
}
