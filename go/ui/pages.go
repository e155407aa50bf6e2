package ui

import (
	"bytes"
	"io"
	"strings"

	"github.com/lunixbochs/vtclean"

	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/report"
)

// Page is one entry of the browser's navigation list.
type Page struct {
	Name   string
	Render func(r *report.Report, w io.Writer) error
}

func sectionPage(name string, t models.SectionType, fn func(r *report.Report, w io.Writer, t models.SectionType) error) Page {
	return Page{Name: name + " " + t.String(), Render: func(r *report.Report, w io.Writer) error { return fn(r, w, t) }}
}

// Pages lists what can be browsed for obj. Section pages only appear for
// sections the object has.
func Pages(obj *models.BinaryObject) []Page {
	pages := []Page{
		{"info", (*report.Report).Info},
		{"commands", (*report.Report).Commands},
		{"segments", (*report.Report).Segments},
		{"sections", (*report.Report).Sections},
		{"dylibs", (*report.Report).Dylibs},
		{"symbols", func(r *report.Report, w io.Writer) error { return r.Symbols(w, report.SymbolOptions{}) }},
		{"indirect", func(r *report.Report, w io.Writer) error { return r.Symbols(w, report.SymbolOptions{Dynamic: true}) }},
	}
	if obj.Section(models.SectionSymbolStubs) != nil {
		pages = append(pages, Page{"stubs", (*report.Report).Stubs})
	}
	for _, t := range []models.SectionType{models.SectionProgram, models.SectionSymbolStubs} {
		if obj.Section(t) != nil {
			pages = append(pages, sectionPage("dis", t, func(r *report.Report, w io.Writer, t models.SectionType) error {
				return r.Disas(w, t, 0, 0)
			}))
		}
	}
	for _, t := range []models.SectionType{models.SectionCString, models.SectionObjcMethodNames} {
		if obj.Section(t) != nil {
			pages = append(pages, sectionPage("strings", t, (*report.Report).Strings))
		}
	}
	for _, s := range obj.SortedSections() {
		pages = append(pages, sectionPage("hexdump", s.Type, func(r *report.Report, w io.Writer, t models.SectionType) error {
			return r.Hexdump(w, t, 0, 0)
		}))
	}
	return pages
}

// RenderPage runs a page into lines with terminal escapes stripped, ready
// for a gocui view.
func RenderPage(r *report.Report, p Page) []string {
	var buf bytes.Buffer
	if err := p.Render(r, &buf); err != nil {
		buf.WriteString("error: " + err.Error() + "\n")
	}
	return cleanLines(buf.String())
}

func cleanLines(s string) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = vtclean.Clean(line, false)
	}
	return lines
}
