package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/distr1/xmlsilo"
)

const ensureHelp = `xmlbc ensure [-flags] <out.silo> <input>...

Like compile, but skips recompilation when out.silo already matches the
given inputs' fingerprint: a cached silo on disk is reused whenever its
stored GUID equals the GUID the current inputs would produce.

Example:
  % xmlbc ensure metadata.silo feed1.xml feed2.xml.gz
`

func cmdensure(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("ensure", flag.ExitOnError)
	var (
		literalText   = fset.Bool("literal-text", false, "disable whitespace normalization on text nodes")
		nativeLangs   = fset.Bool("native-langs", false, "prune xml:lang subtrees not in -locales")
		locales       = fset.String("locales", "", "comma-separated accepted locale list (default: $XMLSILO_LOCALES, else \"en\")")
		ignoreInvalid = fset.Bool("ignore-invalid", false, "skip malformed imports instead of aborting")
	)
	fset.Usage = usage(fset, ensureHelp)
	fset.Parse(args)

	if fset.NArg() < 2 {
		return fmt.Errorf("ensure: a target file and at least one input are required")
	}
	target := fset.Arg(0)
	inputs := fset.Args()[1:]

	b := xmlsilo.NewBuilder()
	if ls := parseLocales(*locales); ls != nil {
		b.Locales = ls
	}
	if err := importAll(b, inputs); err != nil {
		return err
	}

	_, err := b.Ensure(ctx, target, compileFlags(*literalText, *nativeLangs, *ignoreInvalid))
	return err
}
