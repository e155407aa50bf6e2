package cmd

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/lunixbochs/binspect/go/models"
	"github.com/lunixbochs/binspect/go/models/mock"
	"github.com/lunixbochs/binspect/go/snapshot"
)

func TestOpen(t *testing.T) {
	dir, err := ioutil.TempDir("", "binspect-cmd")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "sample")
	if err := ioutil.WriteFile(path, mock.Sample(), 0644); err != nil {
		t.Fatal(err)
	}
	objs, err := Open(path, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 1 || objs[0].CpuType != models.CpuX86_64 {
		t.Fatalf("bad parse: %v", objs)
	}

	snap := filepath.Join(dir, "sample.bisn")
	if err := snapshot.Save(snap, "sample", objs); err != nil {
		t.Fatal(err)
	}
	loaded, err := Open(snap, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].SymbolTable.Len() != objs[0].SymbolTable.Len() {
		t.Fatalf("bad snapshot round trip: %v", loaded)
	}

	junk := filepath.Join(dir, "junk")
	if err := ioutil.WriteFile(junk, []byte("not a binary"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(junk, false); err == nil {
		t.Fatal("expected an error for junk input")
	}
	if _, err := Open(filepath.Join(dir, "missing"), false); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestSelected(t *testing.T) {
	objs := []*models.BinaryObject{models.NewBinaryObject(), models.NewBinaryObject()}
	c := NewInspectCmd()
	if got := c.Selected(objs); len(got) != 2 {
		t.Fatalf("default selection: %v", got)
	}
	c.Arch = 1
	if got := c.Selected(objs); len(got) != 1 || got[0] != 1 {
		t.Fatalf("arch 1 selection: %v", got)
	}
}
