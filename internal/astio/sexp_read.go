package astio

import (
	"strings"
)

type sexpKind uint8

const (
	sexpSymbol sexpKind = iota
	sexpString
	sexpList
)

// sexp is one datum of the surface syntax, before it is given AST meaning.
type sexp struct {
	kind  sexpKind
	text  string // symbol or decoded string contents
	items []*sexp
	line  int
}

func (s *sexp) isSymbol(text string) bool {
	return s.kind == sexpSymbol && s.text == text
}

// head returns the leading symbol of a list, or "".
func (s *sexp) head() string {
	if s.kind != sexpList || len(s.items) == 0 || s.items[0].kind != sexpSymbol {
		return ""
	}
	return s.items[0].text
}

// readAll parses every top-level datum in src.
func readAll(src []byte) ([]*sexp, error) {
	c, err := newCursor(src)
	if err != nil {
		return nil, err
	}
	var out []*sexp
	for {
		c.skipTrivia()
		if c.eof() {
			return out, nil
		}
		d, err := readDatum(c)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
}

func readDatum(c *cursor) (*sexp, error) {
	c.skipTrivia()
	line := c.line
	switch b := c.peek(); {
	case c.eof():
		return nil, invalid(line, "", "unexpected end of input")
	case b == '(':
		c.bump()
		list := &sexp{kind: sexpList, line: line}
		for {
			c.skipTrivia()
			if c.eof() {
				return nil, invalid(line, "(", "unclosed list")
			}
			if c.peek() == ')' {
				c.bump()
				return list, nil
			}
			item, err := readDatum(c)
			if err != nil {
				return nil, err
			}
			list.items = append(list.items, item)
		}
	case b == ')':
		c.bump()
		return nil, invalid(line, ")", "unexpected ')'")
	case b == '"':
		return readString(c)
	default:
		start := c.off
		for !c.eof() && !isDelimiter(c.peek()) {
			c.bump()
		}
		return &sexp{kind: sexpSymbol, text: string(c.src[start:c.off]), line: line}, nil
	}
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '"', ';', ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// readString decodes a quoted string; supported escapes are \n \t \" \\.
func readString(c *cursor) (*sexp, error) {
	line := c.line
	c.bump() // opening '"'
	var sb strings.Builder
	for !c.eof() {
		b := c.bump()
		switch b {
		case '"':
			return &sexp{kind: sexpString, text: sb.String(), line: line}, nil
		case '\n':
			return nil, invalid(line, sb.String(), "newline in string literal")
		case '\\':
			if c.eof() {
				break
			}
			switch esc := c.bump(); esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '"', '\\':
				sb.WriteByte(esc)
			default:
				return nil, invalid(line, `\`+string(esc), "unknown escape sequence")
			}
		default:
			sb.WriteByte(b)
		}
	}
	return nil, invalid(line, sb.String(), "unterminated string literal")
}
