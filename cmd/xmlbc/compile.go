package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/distr1/xmlsilo"
)

const compileHelp = `xmlbc compile -o <out.silo> [-flags] <input>...

Compile one or more XML sources into a silo file.

Each <input> is either a single file ending in .xml or .xml.gz, or a
directory, in which case every .xml/.xml.gz file directly under it is
imported in sorted order.

Example:
  % xmlbc compile -o metadata.silo feed1.xml feed2.xml.gz
  % xmlbc compile -o metadata.silo -native-langs -locales en,de ./feeds
`

func parseLocales(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(s, ",") {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func compileFlags(literalText, nativeLangs, ignoreInvalid bool) xmlsilo.CompileFlag {
	var f xmlsilo.CompileFlag
	if literalText {
		f |= xmlsilo.LiteralText
	}
	if nativeLangs {
		f |= xmlsilo.NativeLangs
	}
	if ignoreInvalid {
		f |= xmlsilo.IgnoreInvalid
	}
	return f
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func importAll(b *xmlsilo.Builder, inputs []string) error {
	for _, in := range inputs {
		if isDir(in) {
			if err := b.ImportDir(in, nil); err != nil {
				return err
			}
			continue
		}
		if err := b.ImportFile(in, nil); err != nil {
			return err
		}
	}
	return nil
}

func cmdcompile(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("compile", flag.ExitOnError)
	var (
		out           = fset.String("o", "", "path to write the compiled silo to (required)")
		literalText   = fset.Bool("literal-text", false, "disable whitespace normalization on text nodes")
		nativeLangs   = fset.Bool("native-langs", false, "prune xml:lang subtrees not in -locales")
		locales       = fset.String("locales", "", "comma-separated accepted locale list (default: $XMLSILO_LOCALES, else \"en\")")
		ignoreInvalid = fset.Bool("ignore-invalid", false, "skip malformed imports instead of aborting")
	)
	fset.Usage = usage(fset, compileHelp)
	fset.Parse(args)

	if *out == "" {
		return fmt.Errorf("compile: -o is required")
	}
	if fset.NArg() == 0 {
		return fmt.Errorf("compile: at least one input is required")
	}

	b := xmlsilo.NewBuilder()
	if ls := parseLocales(*locales); ls != nil {
		b.Locales = ls
	}
	if err := importAll(b, fset.Args()); err != nil {
		return err
	}

	s, err := b.Compile(ctx, compileFlags(*literalText, *nativeLangs, *ignoreInvalid))
	if err != nil {
		return err
	}
	return s.Save(*out)
}
