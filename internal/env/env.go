// Package env captures process-level defaults for the silo compiler,
// mirroring the teacher's internal/env package (which reads $DISTRIROOT
// with a hardcoded fallback).
package env

import (
	"os"
	"strings"
)

// AcceptedLocales is the process's default accepted-locale list,
// consulted by Builder.Compile when the NATIVE_LANGS flag is set and the
// caller did not supply an explicit list. It is read once from
// $XMLSILO_LOCALES (a comma-separated list, e.g. "en,en_US,de") and
// falls back to a single "en" entry.
var AcceptedLocales = findAcceptedLocales()

func findAcceptedLocales() []string {
	if v := os.Getenv("XMLSILO_LOCALES"); v != "" {
		var out []string
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{"en"}
}
