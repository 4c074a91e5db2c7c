package main

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"deedles.dev/chlorostart/protocol"
)

// initialisms are name parts that are written in all caps.
var initialisms = map[string]string{
	"id":       "ID",
	"fd":       "FD",
	"xkb":      "XKB",
	"argb8888": "ARGB8888",
	"xrgb8888": "XRGB8888",
}

var versionSuffix = regexp.MustCompile(`_v[0-9]+$`)

type Context struct {
	Pkg      string
	Prefixes []string
	Protocol protocol.Protocol
}

// ident converts an interface name into the identifier that its
// constants are prefixed with, such as WmBase for xdg_wm_base.
func (ctx Context) ident(v string) string {
	for _, p := range ctx.Prefixes {
		if after, ok := strings.CutPrefix(v, p); ok {
			v = after
			break
		}
	}
	v = versionSuffix.ReplaceAllString(v, "")
	return ctx.camel(v)
}

func (ctx Context) camel(v string) string {
	var buf strings.Builder
	buf.Grow(len(v))
	for _, part := range strings.Split(v, "_") {
		if i, ok := initialisms[part]; ok {
			buf.WriteString(i)
			continue
		}
		buf.WriteString(ctx.export(part))
	}
	return buf.String()
}

func (ctx Context) export(v string) string {
	if len(v) == 0 {
		return ""
	}

	c, size := utf8.DecodeRuneInString(v)
	if unicode.IsUpper(c) {
		return v
	}

	var buf strings.Builder
	buf.Grow(len(v))
	buf.WriteRune(unicode.ToUpper(c))
	buf.WriteString(v[size:])
	return buf.String()
}
