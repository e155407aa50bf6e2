package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lunixbochs/binspect/go/loader"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/models/mock"
)

func testObject(t *testing.T) *models.BinaryObject {
	p := mock.Sample()
	objs, err := loader.Parse(bytes.NewReader(p), int64(len(p)))
	if err != nil {
		t.Fatal(err)
	}
	return objs[0]
}

func newReport(t *testing.T) *Report {
	config := models.DefaultConfig()
	config.Color = false
	return New(testObject(t), 0, config)
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	if err := newReport(t).Info(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{"arch 0: x86_64 i386 64-bit little-endian execute", "symbols    2 (1 indirect)", "sections   6"} {
		if !strings.Contains(out, s) {
			t.Fatalf("missing %q in:\n%s", s, out)
		}
	}
}

func TestSymbols(t *testing.T) {
	r := newReport(t)
	var buf bytes.Buffer
	if err := r.Symbols(&buf, SymbolOptions{Filter: "main"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "1 symbols") || !strings.Contains(out, "0000000000001000 0f  1 0000 _main") {
		t.Fatalf("bad symbol listing:\n%s", out)
	}
	buf.Reset()
	if err := r.Stubs(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "0x2000 _puts") {
		t.Fatalf("bad stub listing:\n%s", buf.String())
	}
}

func TestStrings(t *testing.T) {
	var buf bytes.Buffer
	if err := newReport(t).Strings(&buf, models.SectionCString); err != nil {
		t.Fatal(err)
	}
	expected := "arch 0: C-Strings\n  0x3000 \"hello\"\n  0x3007 \"wor\\x0ad\"\n"
	if buf.String() != expected {
		t.Fatalf("got:\n%q\nexpected:\n%q", buf.String(), expected)
	}
}

func TestHexdump(t *testing.T) {
	var buf bytes.Buffer
	if err := newReport(t).Hexdump(&buf, models.SectionProgram, 2, 2); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "0x0000000000001002: 89e5") {
		t.Fatalf("bad hexdump:\n%s", buf.String())
	}
}

func TestDisas(t *testing.T) {
	var buf bytes.Buffer
	r := newReport(t)
	if err := r.Disas(&buf, models.SectionProgram, 0, 0); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{"_main:", "0x1000: push rbp", "0x1001: mov rbp, rsp", "0x1005: ret"} {
		if !strings.Contains(out, s) {
			t.Fatalf("missing %q in:\n%s", s, out)
		}
	}
	if err := r.Disas(&buf, models.SectionProgram, 0x5000, 1); err == nil {
		t.Fatal("address outside the section accepted")
	}
}

func TestMissingSection(t *testing.T) {
	r := newReport(t)
	if err := r.Hexdump(&bytes.Buffer{}, models.SectionCodeSignature, 0, 0); err == nil {
		t.Fatal("expected an error for a missing section")
	}
	if err := r.Strings(&bytes.Buffer{}, models.SectionProgram); err == nil {
		t.Fatal("expected an error for a non-string section")
	}
}
