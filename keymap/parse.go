package keymap

import (
	"strings"
)

// block is a brace-delimited section of a keymap. Its body is split
// into the semicolon-terminated statements and the nested blocks that
// it contains.
type block struct {
	header string
	stmts  []string
	blocks []*block
}

// child returns the first nested block whose header begins with
// prefix.
func (b *block) child(prefix string) (*block, bool) {
	for _, c := range b.blocks {
		if strings.HasPrefix(c.header, prefix) {
			return c, true
		}
	}
	return nil, false
}

type parser struct {
	data []byte
	pos  int
}

type parseError struct {
	err error
}

func (p *parser) throw(err error) {
	if err != nil {
		panic(parseError{err: err})
	}
}

func (p *parser) catch(err *error) {
	switch r := recover().(type) {
	case parseError:
		*err = r.err
	case nil:
	default:
		panic(r)
	}
}

func (p *parser) parse() (root *block, err error) {
	defer p.catch(&err)

	return p.body(true), nil
}

func (p *parser) eof() bool {
	return (p.pos >= len(p.data)) || (p.data[p.pos] == 0)
}

func (p *parser) body(top bool) *block {
	var b block
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			b.stmts = append(b.stmts, s)
		}
		cur.Reset()
	}

	for !p.eof() {
		c := p.data[p.pos]
		p.pos++

		switch c {
		case '"':
			cur.WriteByte(c)
			p.str(&cur)

		case '/':
			if !p.eof() && (p.data[p.pos] == '/') {
				p.comment()
				continue
			}
			cur.WriteByte(c)

		case '#':
			p.comment()

		case '{':
			header := strings.TrimSpace(cur.String())
			cur.Reset()
			child := p.body(false)
			child.header = header
			b.blocks = append(b.blocks, child)

		case '}':
			if top {
				p.throw(SyntaxError{Offset: p.pos - 1, Msg: "unexpected '}'"})
			}
			flush()
			return &b

		case ';':
			flush()

		default:
			cur.WriteByte(c)
		}
	}

	if !top {
		p.throw(ErrUnterminated)
	}
	flush()
	return &b
}

// str copies the remainder of a string literal, including the closing
// quote, into cur.
func (p *parser) str(cur *strings.Builder) {
	for !p.eof() {
		c := p.data[p.pos]
		p.pos++
		cur.WriteByte(c)

		switch c {
		case '\\':
			if !p.eof() {
				cur.WriteByte(p.data[p.pos])
				p.pos++
			}
		case '"':
			return
		}
	}
	p.throw(ErrUnterminated)
}

func (p *parser) comment() {
	for !p.eof() && (p.data[p.pos] != '\n') {
		p.pos++
	}
}
