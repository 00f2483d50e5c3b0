package astio

import (
	"fortio.org/safecast"
)

// cursor walks S-expression source byte by byte and counts lines.
type cursor struct {
	src   []byte
	off   uint32
	limit uint32
	line  int
}

func newCursor(src []byte) (*cursor, error) {
	limit, err := safecast.Conv[uint32](len(src))
	if err != nil {
		return nil, invalid(0, "", "input too large: %d bytes", len(src))
	}
	return &cursor{src: src, limit: limit, line: 1}, nil
}

func (c *cursor) eof() bool {
	return c.off >= c.limit
}

// peek читает текущий байт, если есть, иначе возвращает 0
func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.off]
}

// bump перемещает курсор на один байт вперед и возвращает прочитанный байт
func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.src[c.off]
	c.off++
	if b == '\n' {
		c.line++
	}
	return b
}

// skipTrivia eats whitespace and ';' line comments.
func (c *cursor) skipTrivia() {
	for !c.eof() {
		switch b := c.peek(); {
		case b == ';':
			for !c.eof() && c.peek() != '\n' {
				c.bump()
			}
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			c.bump()
		default:
			return
		}
	}
}
