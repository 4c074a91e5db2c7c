// Package keymap extracts the keycode to keysym table from the text
// form of an XKB keymap, as sent by the compositor in a wl_keyboard
// keymap event.
package keymap

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

var (
	// ErrNoKeymap is returned when the input doesn't contain an
	// xkb_keymap block.
	ErrNoKeymap = errors.New("no xkb_keymap block")

	// ErrUnterminated is returned when the input ends inside of a
	// block or a string.
	ErrUnterminated = errors.New("unexpected end of keymap")
)

// SectionError is returned when a required section of the keymap is
// missing.
type SectionError struct {
	Section string
}

func (err SectionError) Error() string {
	return fmt.Sprintf("keymap has no %v section", err.Section)
}

// SyntaxError describes malformed keymap text.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (err SyntaxError) Error() string {
	return fmt.Sprintf("keymap syntax error at offset %v: %v", err.Offset, err.Msg)
}

// Map maps XKB keycodes to the keysym names bound to them, in level
// order. Note that XKB keycodes are offset by 8 from the evdev codes
// sent in wl_keyboard key events.
type Map map[uint32][]string

// Symbols returns the symbols bound to code.
func (m Map) Symbols(code uint32) []string {
	return m[code]
}

// Has returns true if sym is bound to code at any level.
func (m Map) Has(code uint32, sym string) bool {
	return slices.Contains(m[code], sym)
}

// HasAny returns true if any of syms is bound to code.
func (m Map) HasAny(code uint32, syms []string) bool {
	return slices.ContainsFunc(m[code], func(s string) bool {
		return slices.Contains(syms, s)
	})
}

// Parse parses an XKB keymap. Trailing NUL bytes, as are present in
// keymaps received from a compositor, are ignored.
func Parse(data []byte) (Map, error) {
	p := parser{data: data}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}

	km, ok := root.child("xkb_keymap")
	if !ok {
		return nil, ErrNoKeymap
	}
	kc, ok := km.child("xkb_keycodes")
	if !ok {
		return nil, SectionError{Section: "xkb_keycodes"}
	}
	ks, ok := km.child("xkb_symbols")
	if !ok {
		return nil, SectionError{Section: "xkb_symbols"}
	}

	codes, aliases := keycodes(kc)
	syms := symbols(ks)

	m := make(Map, len(syms))
	for name, list := range syms {
		if target, ok := aliases[name]; ok {
			if _, ok := codes[name]; !ok {
				name = target
			}
		}
		code, ok := codes[name]
		if !ok {
			continue
		}
		m[code] = list
	}
	return m, nil
}

// keycodes extracts "<NAME> = code;" and "alias <A> = <B>;" statements.
func keycodes(b *block) (codes map[string]uint32, aliases map[string]string) {
	codes = make(map[string]uint32)
	aliases = make(map[string]string)
	for _, stmt := range b.stmts {
		lhs, rhs, ok := strings.Cut(stmt, "=")
		if !ok {
			continue
		}
		lhs, rhs = strings.TrimSpace(lhs), strings.TrimSpace(rhs)

		switch {
		case strings.HasPrefix(lhs, "<"):
			name, ok := keyName(lhs)
			if !ok {
				continue
			}
			code, err := strconv.ParseUint(rhs, 10, 32)
			if err != nil {
				continue
			}
			codes[name] = uint32(code)

		case strings.HasPrefix(lhs, "alias"):
			alias, ok := keyName(lhs)
			if !ok {
				continue
			}
			target, ok := keyName(rhs)
			if !ok {
				continue
			}
			aliases[alias] = target
		}
	}
	return codes, aliases
}

// symbols extracts the symbol lists of "key <NAME> { ... };" blocks.
func symbols(b *block) map[string][]string {
	syms := make(map[string][]string)
	for _, key := range b.blocks {
		if !strings.HasPrefix(key.header, "key") {
			continue
		}
		name, ok := keyName(key.header)
		if !ok {
			continue
		}

		var list []string
		for _, stmt := range key.stmts {
			for _, field := range splitTop(stmt, ',') {
				list = append(list, symbolList(field)...)
			}
		}
		syms[name] = list
	}
	return syms
}

// symbolList returns the symbols of a field that is either a bare
// list, "[ a, b ]", or an explicit "symbols[Group1] = [ a, b ]".
func symbolList(field string) []string {
	field = strings.TrimSpace(field)
	if !strings.HasPrefix(field, "[") {
		lhs, rhs, ok := strings.Cut(field, "=")
		if !ok {
			return nil
		}
		lhs, _, _ = strings.Cut(lhs, "[")
		if strings.TrimSpace(lhs) != "symbols" {
			return nil
		}
		field = strings.TrimSpace(rhs)
	}

	if !strings.HasPrefix(field, "[") || !strings.HasSuffix(field, "]") {
		return nil
	}
	list := splitTop(field[1:len(field)-1], ',')
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}
	return slices.DeleteFunc(list, func(s string) bool { return s == "" })
}

func keyName(s string) (string, bool) {
	start := strings.IndexByte(s, '<')
	if start < 0 {
		return "", false
	}
	end := strings.IndexByte(s[start:], '>')
	if end < 0 {
		return "", false
	}
	return s[start+1 : start+end], true
}

// splitTop splits s around sep wherever sep isn't nested inside of
// brackets, parentheses or a string.
func splitTop(s string, sep byte) (parts []string) {
	var depth, start int
	var quoted bool
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case (c == '[') || (c == '('):
			depth++
		case (c == ']') || (c == ')'):
			depth--
		case (c == sep) && (depth == 0):
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}
