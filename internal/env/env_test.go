package env

import (
	"os"
	"reflect"
	"testing"
)

func TestFindAcceptedLocalesDefault(t *testing.T) {
	os.Unsetenv("XMLSILO_LOCALES")
	got := findAcceptedLocales()
	if !reflect.DeepEqual(got, []string{"en"}) {
		t.Fatalf("findAcceptedLocales() = %v, want [en]", got)
	}
}

func TestFindAcceptedLocalesFromEnv(t *testing.T) {
	os.Setenv("XMLSILO_LOCALES", "en, de , fr")
	defer os.Unsetenv("XMLSILO_LOCALES")
	got := findAcceptedLocales()
	want := []string{"en", "de", "fr"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("findAcceptedLocales() = %v, want %v", got, want)
	}
}
