package importsrc

import (
	"bytes"
	"compress/gzip"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/distr1/xmlsilo/internal/node"
)

func TestNewFromXMLUsesOriginAsGUID(t *testing.T) {
	imp := NewFromXML("<a/>", "my-origin")
	if imp.GUID != "my-origin" {
		t.Fatalf("GUID = %q, want %q", imp.GUID, "my-origin")
	}
}

func TestNewFromXMLHashesContentWhenOriginEmpty(t *testing.T) {
	a := NewFromXML("<a/>", "")
	b := NewFromXML("<a/>", "")
	c := NewFromXML("<b/>", "")
	if a.GUID != b.GUID {
		t.Fatalf("identical content produced different GUIDs: %q != %q", a.GUID, b.GUID)
	}
	if a.GUID == c.GUID {
		t.Fatal("different content produced the same GUID")
	}
}

func TestNewFromFileGUIDIsAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.xml")
	if err := ioutil.WriteFile(path, []byte("<a/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	imp, err := NewFromFile(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer imp.Stream.Close()
	abs, _ := filepath.Abs(path)
	if imp.GUID != abs {
		t.Fatalf("GUID = %q, want %q", imp.GUID, abs)
	}
	got, err := io.ReadAll(imp.Stream)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<a/>" {
		t.Fatalf("Stream content = %q, want %q", got, "<a/>")
	}
}

func TestNewFromFileTransparentGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.xml.gz")
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("<a>hi</a>")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	imp, err := NewFromFile(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer imp.Stream.Close()
	got, err := io.ReadAll(imp.Stream)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "<a>hi</a>" {
		t.Fatalf("decompressed content = %q, want %q", got, "<a>hi</a>")
	}
}

func TestNewFromFileCarriesInfoNode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.xml")
	if err := ioutil.WriteFile(path, []byte("<a/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	info := node.New("meta")
	imp, err := NewFromFile(path, info)
	if err != nil {
		t.Fatal(err)
	}
	defer imp.Stream.Close()
	if imp.Info != info {
		t.Fatal("Info node not carried through")
	}
}

func TestEnumerateDirFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xml", "a.xml.gz", "ignore.txt", "c.xml"} {
		if err := ioutil.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir.xml"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := EnumerateDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a.xml.gz"),
		filepath.Join(dir, "b.xml"),
		filepath.Join(dir, "c.xml"),
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
