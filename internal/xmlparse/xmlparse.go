// Package xmlparse implements the parser driver described in spec.md
// §4.4: it consumes SAX-style events from encoding/xml and grows a
// internal/node tree under a roving "current" cursor, applying
// xml:lang-based locale pruning along the way.
package xmlparse

import (
	"context"
	"encoding/xml"
	"io"

	"golang.org/x/net/html/charset"
	"golang.org/x/xerrors"

	"github.com/distr1/xmlsilo/internal/cancelreader"
	"github.com/distr1/xmlsilo/internal/node"
)

// Flags carries the subset of compiler flags that influence parsing.
type Flags struct {
	// LiteralText disables whitespace normalization on text nodes; any
	// node that ends up with non-whitespace text gets node.LiteralText
	// set on it.
	LiteralText bool

	// NativeLangs enables xml:lang pruning: a start element whose
	// xml:lang attribute names a locale absent from Locales has
	// node.IgnoreCDATA set on it.
	NativeLangs bool

	// Locales is the set of accepted locale tags, consulted only when
	// NativeLangs is set.
	Locales map[string]bool
}

// ErrMismatchedXML is returned when the document's start/end tags never
// return the cursor to the synthetic root, per spec.md §4.4.
var ErrMismatchedXML = xerrors.New("Mismatched XML")

// Parse reads XML events from r in document order and appends the
// resulting tree as children of root. info, if non-nil, is deep-cloned
// under every top-level (depth-1) element before it is ascended past,
// per spec.md §4.4's "End element" rule.
func Parse(ctx context.Context, r io.Reader, flags Flags, root, info *node.Node) error {
	cr := cancelreader.New(ctx, r)
	dec := xml.NewDecoder(cr)
	dec.CharsetReader = charset.NewReaderLabel

	stack := []*node.Node{root}
	cur := func() *node.Node { return stack[len(stack)-1] }

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return invalidData(dec, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := node.New(t.Name.Local)
			if cur().HasFlag(node.IgnoreCDATA) {
				n.SetFlag(node.IgnoreCDATA)
			}
			if flags.NativeLangs {
				if lang, ok := xmlLang(t.Attr); ok && !flags.Locales[lang] {
					n.SetFlag(node.IgnoreCDATA)
				}
			}
			for _, a := range t.Attr {
				n.AddAttr(attrName(a.Name), a.Value)
			}
			cur().AddChild(n)
			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) < 2 {
				return invalidData(dec, ErrMismatchedXML)
			}
			if len(stack) == 2 && info != nil {
				cur().AddChild(info.Clone())
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(t) == 0 {
				continue
			}
			if cur().HasFlag(node.IgnoreCDATA) {
				continue
			}
			if isAllWhitespace(t) {
				continue
			}
			if flags.LiteralText {
				cur().SetFlag(node.LiteralText)
			}
			cur().SetText(string(t))
		}
	}

	if len(stack) != 1 {
		return invalidData(dec, ErrMismatchedXML)
	}
	return nil
}

// xmlNamespace is the namespace encoding/xml reports in Name.Space for an
// attribute written with the reserved "xml" prefix.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

func xmlLang(attrs []xml.Attr) (string, bool) {
	for _, a := range attrs {
		if a.Name.Space == xmlNamespace && a.Name.Local == "lang" {
			return a.Value, true
		}
	}
	return "", false
}

// attrName reconstructs a source-like attribute name, keeping the "xml"
// prefix (e.g. "xml:lang") rather than discarding it the way a bare
// Name.Local would. A prefix bound by an xmlns declaration comes out as
// its namespace URL, which is what encoding/xml reports in its place.
func attrName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	if n.Space == xmlNamespace {
		return "xml:" + n.Local
	}
	return n.Space + ":" + n.Local
}

// isAllWhitespace matches spec.md §4.4 exactly: ASCII space, tab,
// newline, and carriage return only — nothing Unicode-aware.
func isAllWhitespace(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return false
		}
	}
	return true
}

func invalidData(dec *xml.Decoder, err error) error {
	if se, ok := err.(*xml.SyntaxError); ok {
		return xerrors.Errorf("line %d: %w", se.Line, err)
	}
	return xerrors.Errorf("offset %d: %w", dec.InputOffset(), err)
}
