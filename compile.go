package xmlsilo

import (
	"context"
	"log"

	"golang.org/x/xerrors"

	"github.com/distr1/xmlsilo/internal/interner"
	"github.com/distr1/xmlsilo/internal/node"
	"github.com/distr1/xmlsilo/internal/silo"
	"github.com/distr1/xmlsilo/internal/xmlparse"
)

// Compile runs the full parse-intern-emit pipeline over the builder's
// accumulated imports and manual nodes and returns the resulting Silo.
// A failed Compile leaves the builder reusable and its previously held
// Silo, if any, untouched.
func (b *Builder) Compile(ctx context.Context, flags CompileFlag) (*silo.Silo, error) {
	root, err := b.buildTree(ctx, flags)
	if err != nil {
		return nil, err
	}
	s, err := emitFromTree(root, b.fp.Derive())
	if err != nil {
		return nil, err
	}
	b.held = s
	return s, nil
}

// emitFromTree runs the intern/emit/fixup passes over an
// already-parsed tree and the given GUID bytes, producing the final
// Silo. Split out from Compile so Ensure can parse once, inspect the
// resulting fingerprint, and only pay for emission when a fresh silo is
// actually needed.
func emitFromTree(root *node.Node, guidBytes [16]byte) (*silo.Silo, error) {
	asm, err := silo.NewAssembler()
	if err != nil {
		return nil, xerrors.Errorf("starting assembler: %w", err)
	}

	var strs interner.Interner

	node.WalkLevelOrder(root, func(n *node.Node) {
		n.ElementIdx = strs.Intern(n.Element)
	})
	strtabNTags := uint32(strs.Len())

	node.WalkLevelOrder(root, func(n *node.Node) {
		for i, a := range n.Attrs {
			n.Attrs[i].NameIdx = strs.Intern(a.Name)
		}
	})
	node.WalkLevelOrder(root, func(n *node.Node) {
		for i, a := range n.Attrs {
			n.Attrs[i].ValueIdx = strs.Intern(a.Value)
		}
	})
	node.WalkLevelOrder(root, func(n *node.Node) {
		if n.HasText() {
			n.TextIdx = strs.Intern(*n.Text)
		}
	})

	level := 0
	node.WalkPreOrder(root, func(n *node.Node, depth int) {
		if err != nil {
			return
		}
		for i := 0; i < level-depth+1; i++ {
			if err = asm.EmitSentinel(); err != nil {
				return
			}
		}
		attrs := make([]silo.AttrIdx, len(n.Attrs))
		for i, a := range n.Attrs {
			attrs[i] = silo.AttrIdx{NameIdx: a.NameIdx, ValueIdx: a.ValueIdx}
		}
		off, emitErr := asm.EmitNode(n.ElementIdx, n.HasText(), n.TextIdx, attrs)
		if emitErr != nil {
			err = emitErr
			return
		}
		n.Offset = off
		level = depth
	})
	if err != nil {
		return nil, xerrors.Errorf("emitting node table: %w", err)
	}
	for i := 0; i < level-1; i++ {
		if err := asm.EmitSentinel(); err != nil {
			return nil, xerrors.Errorf("emitting trailing sentinel: %w", err)
		}
	}

	parentOf, nextOf := linkage(root)
	node.WalkPreOrder(root, func(n *node.Node, depth int) {
		if err != nil {
			return
		}
		if p := parentOf[n]; p != nil {
			if err = asm.PatchParent(n.Offset, p.Offset); err != nil {
				return
			}
		}
		if sib := nextOf[n]; sib != nil {
			err = asm.PatchNext(n.Offset, sib.Offset)
		}
	})
	if err != nil {
		return nil, xerrors.Errorf("patching offsets: %w", err)
	}

	if err := asm.FinalizeHeader(silo.Header{
		Strtab:      silo.HeaderSize + asm.NodeTableSize(),
		StrtabNTags: strtabNTags,
		GUID:        guidBytes,
	}); err != nil {
		return nil, xerrors.Errorf("finalizing header: %w", err)
	}

	strtab := strs.Bytes()

	blob, err := asm.Finish(strtab)
	if err != nil {
		return nil, xerrors.Errorf("finishing blob: %w", err)
	}

	s, err := silo.Load(blob)
	if err != nil {
		return nil, xerrors.Errorf("loading freshly compiled blob: %w", err)
	}
	return s, nil
}

// buildTree parses every import in order into a shared synthetic root,
// then splices the builder's manually-added nodes. It returns the root
// with every IGNORE_CDATA propagation already applied by the parser
// driver, ready for the intern/emit passes.
func (b *Builder) buildTree(ctx context.Context, flags CompileFlag) (*node.Node, error) {
	root := node.New("")

	locales := make(map[string]bool, len(b.Locales))
	for _, l := range b.Locales {
		locales[l] = true
	}
	pflags := xmlparse.Flags{
		LiteralText: flags.has(LiteralText),
		NativeLangs: flags.has(NativeLangs),
		Locales:     locales,
	}

	for _, imp := range b.imports {
		// Parse into a scratch root rather than root directly: encoding/xml
		// only reports a mismatched-tag error once it reaches the offending
		// token, by which point earlier StartElements in this same import
		// may already have been attached as children. Parsing into scratch
		// first means a failed import under IGNORE_INVALID leaves no
		// zombie nodes behind in root — it is spliced in only on success,
		// matching spec.md §4.5 stage 1's "a previously damaged import
		// never corrupts the next".
		scratch := node.New("")
		err := xmlparse.Parse(ctx, imp.Stream, pflags, scratch, imp.Info)
		closeErr := imp.Stream.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			if flags.has(IgnoreInvalid) {
				log.Printf("xmlsilo: skipping import %s: %v", imp.GUID, err)
				continue
			}
			return nil, xerrors.Errorf("%s: %w", imp.GUID, err)
		}
		for _, c := range scratch.Children {
			root.AddChild(c)
		}
		b.fp.Append(imp.GUID)
	}

	for _, m := range b.manual {
		root.AddChild(m.Clone())
	}

	return root, nil
}

// linkage walks root once and returns, for every non-ignored descendant,
// its nearest real (non-ignored) parent (nil when that parent is the
// synthetic root itself) and its nearest real next sibling (nil when
// none). A node's own entry is present only if it is not itself
// IGNORE_CDATA, matching node.WalkPreOrder's skip rule.
func linkage(root *node.Node) (parentOf, nextOf map[*node.Node]*node.Node) {
	parentOf = make(map[*node.Node]*node.Node)
	nextOf = make(map[*node.Node]*node.Node)
	var walk func(n, realParent *node.Node)
	walk = func(n, realParent *node.Node) {
		var prev *node.Node
		for _, c := range n.Children {
			if c.HasFlag(node.IgnoreCDATA) {
				continue
			}
			parentOf[c] = realParent
			if prev != nil {
				nextOf[prev] = c
			}
			prev = c
			walk(c, c)
		}
	}
	walk(root, nil)
	return parentOf, nextOf
}
