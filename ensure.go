package xmlsilo

import (
	"context"
	"encoding/hex"
	"io/ioutil"
	"log"

	"golang.org/x/xerrors"

	"github.com/distr1/xmlsilo/internal/silo"
)

// Ensure compares the GUID of a cached on-disk silo at path against the
// GUID the builder's current imports would produce, recompiling only
// when they disagree. A failure reading or validating the cached file
// is logged and falls through to a fresh compile; a failure in that
// compile, or in the final save, is returned to the caller.
func (b *Builder) Ensure(ctx context.Context, path string, flags CompileFlag) (*silo.Silo, error) {
	loaded, loadErr := loadCached(path)
	if loadErr != nil {
		log.Printf("xmlsilo: ensure: %v, recompiling", loadErr)
		return b.compileAndSave(ctx, path, flags)
	}

	if b.held != nil && loaded.GUID() == b.held.GUID() {
		return b.held, nil
	}

	root, err := b.buildTree(ctx, flags)
	if err != nil {
		return nil, xerrors.Errorf("ensure: compiling %s: %w", path, err)
	}
	guidBytes := b.fp.Derive()

	if loaded.GUID() == hex.EncodeToString(guidBytes[:]) {
		b.held = loaded
		return loaded, nil
	}

	s, err := emitFromTree(root, guidBytes)
	if err != nil {
		return nil, xerrors.Errorf("ensure: compiling %s: %w", path, err)
	}
	if err := s.Save(path); err != nil {
		return nil, xerrors.Errorf("ensure: saving %s: %w", path, err)
	}
	b.held = s
	return s, nil
}

func (b *Builder) compileAndSave(ctx context.Context, path string, flags CompileFlag) (*silo.Silo, error) {
	s, err := b.Compile(ctx, flags)
	if err != nil {
		return nil, xerrors.Errorf("ensure: compiling %s: %w", path, err)
	}
	if err := s.Save(path); err != nil {
		return nil, xerrors.Errorf("ensure: saving %s: %w", path, err)
	}
	return s, nil
}

func loadCached(path string) (*silo.Silo, error) {
	blob, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading %s: %w", path, err)
	}
	s, err := silo.Load(blob)
	if err != nil {
		return nil, xerrors.Errorf("loading %s: %w", path, err)
	}
	return s, nil
}
