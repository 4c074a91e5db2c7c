// Command wlgen generates Go constants for the interface names, message
// opcodes and enum values described by a Wayland protocol XML file.
package main

import (
	"bytes"
	"encoding/xml"
	"flag"
	"fmt"
	"go/format"
	"log"
	"os"
	"strings"
	"text/template"

	"deedles.dev/chlorostart/protocol"
)

const fileTemplate = `// Code generated by wlgen. DO NOT EDIT.

package {{.Pkg}}

// Interface names.
const (
{{- range .Protocol.Interfaces}}
	{{ident .Name}} = {{printf "%q" .Name}}
{{- end}}
)
{{range .Protocol.Interfaces}}
{{template "interface" .}}
{{end}}`

const interfaceTemplate = `{{define "interface"}}{{$iface := ident .Name -}}
// Opcodes and enum values of {{.Name}}.
const (
{{- range $op, $r := .Requests}}
	{{$iface}}{{camel $r.Name}} uint16 = {{$op}}
{{- end}}
{{range $op, $e := .Events}}
	{{$iface}}{{camel $e.Name}} uint16 = {{$op}}
{{- end}}
{{range .Enums}}{{$enum := camel .Name}}
{{- range .Entries}}
	{{$iface}}{{$enum}}{{camel .Name}} uint32 = {{.Value}}
{{- end}}
{{end -}}
)
{{- end}}`

func loadXML(path string) (proto protocol.Protocol, err error) {
	file, err := os.Open(path)
	if err != nil {
		return proto, err
	}
	defer file.Close()

	d := xml.NewDecoder(file)
	err = d.Decode(&proto)
	return proto, err
}

func generate(ctx Context) ([]byte, error) {
	tmpl := template.New("file").Funcs(template.FuncMap{
		"ident": ctx.ident,
		"camel": ctx.camel,
	})
	tmpl = template.Must(tmpl.Parse(fileTemplate))
	tmpl = template.Must(tmpl.Parse(interfaceTemplate))

	var buf bytes.Buffer
	err := tmpl.Execute(&buf, ctx)
	if err != nil {
		return nil, err
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.Bytes(), fmt.Errorf("format: %w", err)
	}
	return src, nil
}

func main() {
	xmlfile := flag.String("xml", "", "protocol XML file")
	out := flag.String("out", "", "output file (default stdout)")
	pkg := flag.String("pkg", "protocol", "output package name")
	prefix := flag.String("prefix", "wl_,xdg_,zwlr_", "comma-separated interface prefixes to strip")
	flag.Parse()

	proto, err := loadXML(*xmlfile)
	if err != nil {
		log.Fatalf("load XML: %v", err)
	}

	src, err := generate(Context{
		Pkg:      *pkg,
		Prefixes: strings.Split(*prefix, ","),
		Protocol: proto,
	})
	if err != nil {
		log.Fatalf("generate: %v", err)
	}

	if *out == "" {
		os.Stdout.Write(src)
		return
	}
	err = os.WriteFile(*out, src, 0644)
	if err != nil {
		log.Fatalf("write output: %v", err)
	}
}
