package xmlsilo

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/distr1/xmlsilo/internal/node"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "xmlsilo")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := writeTempFile(t, dir, "feed.xml", `<a>hi</a>`)

	b := NewBuilder()
	if err := b.ImportFile(path, nil); err != nil {
		t.Fatalf("ImportFile() = %v", err)
	}
	if _, err := b.Compile(context.Background(), 0); err != nil {
		t.Fatalf("Compile() = %v", err)
	}
}

func TestImportDirPreservesSortedOrder(t *testing.T) {
	dir, err := ioutil.TempDir("", "xmlsilo")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	writeTempFile(t, dir, "b.xml", `<item>second</item>`)
	writeTempFile(t, dir, "a.xml", `<item>first</item>`)
	writeTempFile(t, dir, "ignored.txt", `not xml`)

	b := NewBuilder()
	if err := b.ImportDir(dir, nil); err != nil {
		t.Fatalf("ImportDir() = %v", err)
	}
	if len(b.imports) != 2 {
		t.Fatalf("got %d imports, want 2 (ignored.txt excluded)", len(b.imports))
	}
	if b.imports[0].GUID == "" || b.imports[1].GUID == "" {
		t.Fatal("imports should carry non-empty absolute-path GUIDs")
	}

	s, err := b.Compile(context.Background(), 0)
	if err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	blob := s.Bytes()
	strtab := le32(blob[8:])
	nodes := decodeNodes(t, blob, strtab)
	strtabBytes := blob[strtab:]
	if len(nodes) != 2 {
		t.Fatalf("got %d node records, want 2", len(nodes))
	}
	if got := stringAt(strtabBytes, nodes[0].textIdx); got != "first" {
		t.Fatalf("first emitted node's text = %q, want %q (a.xml sorts before b.xml)", got, "first")
	}
	if got := stringAt(strtabBytes, nodes[1].textIdx); got != "second" {
		t.Fatalf("second emitted node's text = %q, want %q", got, "second")
	}
}

func TestImportNodeSplicedAfterImports(t *testing.T) {
	b := NewBuilder()
	b.ImportXML(`<fromimport>x</fromimport>`, "origin")

	manual := node.New("manual")
	manual.SetText("y")
	b.ImportNode(manual)

	s, err := b.Compile(context.Background(), 0)
	if err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	blob := s.Bytes()
	strtab := le32(blob[8:])
	nodes := decodeNodes(t, blob, strtab)
	if len(nodes) != 2 {
		t.Fatalf("got %d node records, want 2", len(nodes))
	}
	strtabBytes := blob[strtab:]
	if got := stringAt(strtabBytes, nodes[0].elementIdx); got != "fromimport" {
		t.Fatalf("first node element = %q, want fromimport (imports precede manual nodes)", got)
	}
	if got := stringAt(strtabBytes, nodes[1].elementIdx); got != "manual" {
		t.Fatalf("second node element = %q, want manual", got)
	}
}

func TestImportNodeClonesAtCompileTimeNotAddTime(t *testing.T) {
	b := NewBuilder()
	manual := node.New("m")
	manual.SetText("before")
	b.ImportNode(manual)
	manual.SetText("after")

	s, err := b.Compile(context.Background(), 0)
	if err != nil {
		t.Fatalf("Compile() = %v", err)
	}
	blob := s.Bytes()
	strtab := le32(blob[8:])
	nodes := decodeNodes(t, blob, strtab)
	strtabBytes := blob[strtab:]
	if got := stringAt(strtabBytes, nodes[0].textIdx); got != "after" {
		t.Fatalf("text = %q, want %q (Compile clones at call time, not add time)", got, "after")
	}
}
