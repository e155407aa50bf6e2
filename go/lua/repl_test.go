package lua

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lunixbochs/binspect/go/loader"
	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/models/mock"
)

func newTestRepl(t *testing.T) (*LuaRepl, *bytes.Buffer) {
	p := mock.Sample()
	objs, err := loader.Parse(bytes.NewReader(p), int64(len(p)))
	if err != nil {
		t.Fatal(err)
	}
	config := models.DefaultConfig()
	config.Color = false
	var buf bytes.Buffer
	L, err := NewRepl(objs, config, &buf)
	if err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	return L, &buf
}

func TestExpr(t *testing.T) {
	L, buf := newTestRepl(t)
	defer L.Close()
	if L.Exec([]string{"bin.info().cpu"}) {
		t.Fatal("single expression reported incomplete")
	}
	if buf.String() != "\"x86_64\"\n" {
		t.Fatalf("got %q", buf.String())
	}
	buf.Reset()
	L.Exec([]string{"bin.sym(0x2000)"})
	if buf.String() != "\"_puts\" 0x2000(8192)\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestMultiline(t *testing.T) {
	L, buf := newTestRepl(t)
	defer L.Close()
	lines := []string{"func twice(n)"}
	if !L.Exec(lines) {
		t.Fatal("open function body should need more input")
	}
	lines = append(lines, "return n * 2", "end")
	if L.Exec(lines) {
		t.Fatal("closed function body still incomplete")
	}
	L.Exec([]string{"twice(21)"})
	if buf.String() != "0x2a(42)\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestBindings(t *testing.T) {
	L, buf := newTestRepl(t)
	defer L.Close()
	L.Exec([]string{"dis()"})
	out := buf.String()
	if !strings.HasPrefix(out, "0x1000: push rbp\n0x1001: mov rbp, rsp\n") {
		t.Fatalf("bad dis output:\n%s", out)
	}

	buf.Reset()
	L.Exec([]string{"#bin.sections()"})
	if buf.String() != "6\n" {
		t.Fatalf("section count: got %q", buf.String())
	}

	buf.Reset()
	L.Exec([]string{"local s, data = bin.section(sect.cstring)", "return data:sub(1, 5)"})
	if buf.String() != "\"hello\"\n" {
		t.Fatalf("section data: got %q", buf.String())
	}

	buf.Reset()
	L.Exec([]string{"find('_')"})
	if buf.String() != "{_main = 0x1000(4096),\n _puts = 0x2000(8192)}\n" {
		t.Fatalf("find: got %q", buf.String())
	}
}

func TestErrors(t *testing.T) {
	L, buf := newTestRepl(t)
	defer L.Close()
	L.Exec([]string{"bin.select(3)"})
	if !strings.Contains(buf.String(), "arch 3 out of range") {
		t.Fatalf("missing range error: %q", buf.String())
	}
	buf.Reset()
	L.Exec([]string{"bin.section('bogus')"})
	if !strings.Contains(buf.String(), "unknown section type") {
		t.Fatalf("missing section error: %q", buf.String())
	}
}

func TestRun(t *testing.T) {
	L, buf := newTestRepl(t)
	defer L.Close()
	dir, err := ioutil.TempDir("", "binspect-lua")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "script.lua")
	script := "print(arg[1], bin.info().filetype)\n"
	if err := ioutil.WriteFile(path, []byte(script), 0644); err != nil {
		t.Fatal(err)
	}
	if err := L.Run(path, []string{"hi"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hi execute\n" {
		t.Fatalf("got %q", buf.String())
	}
}
