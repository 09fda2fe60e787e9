package xmlsilo

import (
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/distr1/xmlsilo/internal/env"
	"github.com/distr1/xmlsilo/internal/guid"
	"github.com/distr1/xmlsilo/internal/importsrc"
	"github.com/distr1/xmlsilo/internal/node"
	"github.com/distr1/xmlsilo/internal/silo"
)

// Builder accumulates imports and manually-added nodes, compiling them
// into a Silo on demand. It is not safe for concurrent use: spec.md §5
// forbids two compiles racing on the same builder's mutable state, but
// distinct Builder values are fully independent.
type Builder struct {
	// Locales is the accepted-locale set consulted when NativeLangs is
	// set on a Compile call. It defaults to internal/env.AcceptedLocales,
	// mirroring the teacher's $DISTRIROOT-style env-var default.
	Locales []string

	imports []*importsrc.Import
	manual  []*node.Node
	fp      guid.Accumulator
	held    *silo.Silo
}

// NewBuilder returns an empty Builder ready to accumulate imports.
func NewBuilder() *Builder {
	return &Builder{Locales: env.AcceptedLocales}
}

// ImportXML adds text as an in-memory import, as importsrc.NewFromXML
// describes: origin becomes the import's GUID when non-empty, otherwise
// a content hash is used.
func (b *Builder) ImportXML(text, origin string) {
	b.imports = append(b.imports, importsrc.NewFromXML(text, origin))
}

// ImportFile opens path (transparently decompressing a ".xml.gz" path)
// and adds it as an import whose GUID is its absolute path. info, if
// non-nil, is spliced under every top-level element this file parses
// into (spec.md §4.3).
func (b *Builder) ImportFile(path string, info *node.Node) error {
	imp, err := importsrc.NewFromFile(path, info)
	if err != nil {
		return xerrors.Errorf("import file: %w", err)
	}
	b.imports = append(b.imports, imp)
	return nil
}

// ImportDir enumerates every *.xml and *.xml.gz file directly under dir
// (sorted, non-recursive) and imports each, attaching info to all of
// them. Files are opened concurrently via golang.org/x/sync/errgroup,
// the same fan-out-then-join shape the teacher uses for package builds
// in internal/build, but each resulting Import is appended to b.imports
// in the directory listing's sorted order rather than completion order,
// preserving the insertion-order guarantee spec.md §5 requires of
// parsing.
func (b *Builder) ImportDir(dir string, info *node.Node) error {
	paths, err := importsrc.EnumerateDir(dir)
	if err != nil {
		return xerrors.Errorf("import dir: %w", err)
	}
	imports := make([]*importsrc.Import, len(paths))
	var eg errgroup.Group
	for i, p := range paths {
		i, p := i, p
		eg.Go(func() error {
			imp, err := importsrc.NewFromFile(p, info)
			if err != nil {
				return err
			}
			imports[i] = imp
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return xerrors.Errorf("import dir %s: %w", dir, err)
	}
	b.imports = append(b.imports, imports...)
	return nil
}

// ImportNode adds a manually-constructed node.Node tree, spliced into
// the synthetic root after every import has parsed (spec.md §4.5 stage
// 2). n is deep-cloned at compile time, so later mutation of n has no
// effect on an already-started compile.
func (b *Builder) ImportNode(n *node.Node) {
	b.manual = append(b.manual, n)
}

// AppendGUID extends the builder's cumulative fingerprint string with s
// (spec.md §4.7). Every successfully parsed import calls this
// internally with its own GUID; callers may also call it directly to
// fold in arbitrary extra text (e.g. a schema version tag).
func (b *Builder) AppendGUID(s string) {
	b.fp.Append(s)
}
