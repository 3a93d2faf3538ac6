package fbx

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type tokenType int

const (
	Ident tokenType = iota
	Number
	String
	Operator
	BlockStart
	BlockEnd
	EOL
	EOF
)

type textParser struct {
	r       *bufio.Reader
	strings *stringDecoder
	buf     []byte
	line    int
	err     error
}

func (p *textParser) errorf(f string, a ...interface{}) error {
	if p.err == nil || p.err == io.EOF {
		p.err = errors.Errorf("line %d: "+f, append([]interface{}{p.line + 1}, a...)...)
	}
	return p.err
}

func (p *textParser) read() byte {
	if len(p.buf) > 0 {
		b := p.buf[0]
		p.buf = p.buf[1:]
		return b
	}
	if p.err != nil {
		return 0
	}
	b, err := p.r.ReadByte()
	if err != nil {
		p.err = err
		return 0
	}
	if b == '\n' {
		p.line++
	}
	return b
}

func (p *textParser) unread(c byte) {
	if p.err == nil {
		p.buf = append(p.buf, c)
	}
}

func isNumberChar(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E'
}

func isIdentChar(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '|'
}

func (p *textParser) getToken() (tokenType, string) {
	var c byte
	for p.err == nil || len(p.buf) > 0 {
		c = p.read()
		if c == ';' {
			for p.err == nil && c != '\n' {
				c = p.read()
			}
			if c == '\n' {
				return EOL, ""
			}
			continue
		} else if c == '{' {
			return BlockStart, string(c)
		} else if c == '}' {
			return BlockEnd, string(c)
		} else if c == '*' || c == ':' || c == ',' {
			return Operator, string(c)
		} else if c >= '0' && c <= '9' || c == '.' || c == '-' {
			buf := []byte{c}
			c = p.read()
			for isNumberChar(c) && p.err == nil {
				buf = append(buf, c)
				c = p.read()
			}
			p.unread(c)
			return Number, string(buf)
		} else if c == '\n' {
			return EOL, ""
		} else if c == '"' {
			buf := []byte{}
			c = p.read()
			for c != '"' && p.err == nil {
				buf = append(buf, c)
				c = p.read()
			}
			if p.err != nil {
				p.errorf("unterminated string")
			}
			return String, p.strings.decode(buf)
		} else if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_' {
			buf := []byte{}
			for isIdentChar(c) && p.err == nil {
				buf = append(buf, c)
				c = p.read()
			}
			p.unread(c)
			return Ident, string(buf)
		}
	}
	return EOF, ""
}

func (p *textParser) Skip(t tokenType) bool {
	typ, s := p.getToken()
	if typ != t {
		p.errorf("unexpected token %q", s)
	}
	return typ == t
}

func (p *textParser) parseArray() *Attribute {
	_, s := p.getToken()
	size, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		p.errorf("failed to parse array size: '%v'", s)
		return nil
	}
	p.Skip(BlockStart)
	for p.err == nil {
		if _, s := p.getToken(); s == ":" {
			break
		}
	}
	var values []float64
	var hasPoint bool
	for p.err == nil {
		typ, s := p.getToken()
		if typ == EOL || typ == Operator {
			continue
		} else if typ == BlockEnd {
			break
		} else if typ == Number {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				p.errorf("failed to parse num: '%v'", s)
			}
			values = append(values, v)
			hasPoint = hasPoint || strings.ContainsAny(s, ".eE")
		} else {
			p.errorf("invalid token in array: %v", s)
		}
	}
	if len(values) != int(size) {
		p.errorf("array size: %v != %v", size, len(values))
	}
	if hasPoint {
		return &Attribute{Value: values, ArraySize: uint(size)}
	}
	ivalues := make([]int64, len(values))
	for i, v := range values {
		ivalues[i] = int64(v)
	}
	return &Attribute{Value: ivalues, ArraySize: uint(size)}
}

func (p *textParser) parseNumber(s string) *Attribute {
	if !strings.ContainsAny(s, ".eE") {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &Attribute{Value: v}
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.errorf("failed to parse num: '%v'", s)
	}
	return &Attribute{Value: v}
}

func (p *textParser) parseNodeList() []*Node {
	var nodes []*Node
	for p.err == nil {
		typ, s := p.getToken()
		if typ == EOL || typ == Operator && s == "," {
			continue
		} else if typ == EOF || typ == BlockEnd {
			break
		} else if typ != Ident {
			p.errorf("unexpected token %q", s)
			break
		}
		p.Skip(Operator)
		node := &Node{Name: s}
		nodes = append(nodes, node)
		for p.err == nil {
			typ, s := p.getToken()
			if typ == EOL || typ == EOF {
				break
			} else if typ == BlockStart {
				node.Children = p.parseNodeList()
				break
			} else if typ == Number {
				node.Attributes = append(node.Attributes, p.parseNumber(s))
			} else if typ == String {
				node.Attributes = append(node.Attributes, &Attribute{Value: s})
			} else if typ == Ident {
				// bare T/Y/N flags
				node.Attributes = append(node.Attributes, &Attribute{Value: s})
			} else if typ == Operator && s == "*" {
				node.Attributes = append(node.Attributes, p.parseArray())
			} else if typ == BlockEnd {
				p.errorf("unexpected '}'")
			}
		}
	}
	return nodes
}

func (p *textParser) Parse() (*Node, error) {
	root := &Node{Name: "_FBX_ROOT"}
	root.Children = p.parseNodeList()
	if p.err != nil && p.err != io.EOF {
		return nil, p.err
	}
	return root, nil
}
