// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package regdec

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"
)

// VolatileImport is the import path of the register access package the
// generated code wires against.
const VolatileImport = "github.com/IITGN-Operating-Systems/oxidation-exit-0-team/volatile"

var funcMap = template.FuncMap{
	"hex":        func(v uint64) string { return fmt.Sprintf("%#x", v) },
	"firstLower": firstLower,
}

var fileTemplate = template.Must(template.New("file").Funcs(funcMap).Parse(`// Code generated by regdec from {{.Source}}. DO NOT EDIT.

package {{.Package}}

import (
	"structs"
	"unsafe"

	"{{.Import}}"
)

// {{firstLower .Name}}Layout mirrors the hardware layout of {{.Name}}.
type {{firstLower .Name}}Layout struct {
	_ structs.HostLayout
{{- range .Layout}}
	{{.Name}} {{.Type}}
{{- end}}
}

var _ = [1]struct{}{}[unsafe.Sizeof({{firstLower .Name}}Layout{})-{{hex .Size}}]

{{with .Doc}}// {{.}}
{{end -}}
type {{.Name}} struct {
{{- range .Fields}}
	{{.Name}} {{.Array}}volatile.{{.Kind}}[{{.Type}}]{{with .Doc}} // {{.}}{{end}}
{{- end}}
}

// {{.Name}}Offset is where {{.Name}} sits relative to the peripheral base.
const {{.Name}}Offset = {{hex .Offset}}

// New{{.Name}} wires the {{.Name}} registers at base on b.
func New{{.Name}}(b volatile.Bus, base volatile.Addr) *{{.Name}} {
	var l {{firstLower .Name}}Layout
	r := &{{.Name}}{}
{{- range .Fields}}
{{- if .Count}}
	for i := range r.{{.Name}} {
		r.{{.Name}}[i] = volatile.{{.Builder}}(volatile.Field[{{.Type}}](b, base, unsafe.Offsetof(l.{{.Name}})+uintptr(i)*{{.Bytes}}))
	}
{{- else}}
	r.{{.Name}} = volatile.{{.Builder}}(volatile.Field[{{.Type}}](b, base, unsafe.Offsetof(l.{{.Name}})))
{{- end}}
{{- end}}
	return r
}

// Describe lists the {{.Name}} registers for a register table.
func (r *{{.Name}}) Describe(prefix string) []volatile.Named {
	return []volatile.Named{
{{- range .Fields}}
{{- $f := .}}
{{- if .Count}}
{{- range .Indexes}}
		volatile.Describe[{{$f.Type}}](prefix+"{{$f.Label}}{{.}}", r.{{$f.Name}}[{{.}}]),
{{- end}}
{{- else}}
		volatile.Describe[{{.Type}}](prefix+"{{.Label}}", r.{{.Name}}),
{{- end}}
{{- end}}
	}
}
`))

type fileData struct {
	Source  string
	Package string
	Import  string
	Name    string
	Doc     string
	Offset  uint64
	Size    uint64
	Layout  []layoutField
	Fields  []fieldData
}

type layoutField struct {
	Name string
	Type string
}

type fieldData struct {
	Name    string
	Label   string
	Type    string
	Kind    string
	Builder string
	Array   string
	Count   int
	Bytes   uint64
	Indexes []int
	Doc     string
}

var kinds = map[volatile.Qualifier][2]string{
	volatile.ReadOnlyAccess:  {"ReadOnly", "Readonly"},
	volatile.WriteOnlyAccess: {"WriteOnly", "Writeonly"},
	volatile.ReadWriteAccess: {"ReadWrite", "Readwrite"},
}

// Kind is the volatile type a register with qualifier q is declared as.
func Kind(q volatile.Qualifier) string { return kinds[q][0] }

// Generate renders d as a gofmt'd Go source file. source names the
// description file in the generated header.
func Generate(d *Device, source string) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	data := fileData{
		Source:  source,
		Package: d.Package,
		Import:  VolatileImport,
		Name:    d.Name,
		Doc:     d.Doc,
		Offset:  d.Offset,
		Size:    d.Size,
	}

	var at uint64
	pad := func(to uint64) {
		if to > at {
			data.Layout = append(data.Layout, layoutField{Name: "_", Type: fmt.Sprintf("[%d]byte", to-at)})
			at = to
		}
	}
	for _, r := range d.Registers {
		q, _ := r.Qualifier()
		pad(r.Offset)
		f := fieldData{
			Name:    r.Name,
			Label:   r.Label,
			Type:    r.ValueType(),
			Kind:    kinds[q][0],
			Builder: kinds[q][1],
			Count:   r.Count,
			Bytes:   r.bytes(),
			Doc:     r.Doc,
		}
		lt := f.Type
		if r.Count > 0 {
			f.Array = fmt.Sprintf("[%d]", r.Count)
			lt = f.Array + lt
			for i := range r.Count {
				f.Indexes = append(f.Indexes, i)
			}
		}
		data.Layout = append(data.Layout, layoutField{Name: r.Name, Type: lt})
		data.Fields = append(data.Fields, f)
		at += r.Span()
	}
	pad(d.Size)

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("template %s: %w", d.Name, err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting %s: %w\n%s", d.Name, err, buf.Bytes())
	}
	return out, nil
}

func firstLower(s string) string {
	if s == "" {
		return s
	}
	// Leading acronyms are lowered as a whole: GPIO -> gpio.
	rs := []rune(s)
	i := 0
	for i < len(rs) && unicode.IsUpper(rs[i]) {
		i++
	}
	if i > 1 && i < len(rs) {
		i--
	}
	return strings.ToLower(string(rs[:i])) + string(rs[i:])
}
