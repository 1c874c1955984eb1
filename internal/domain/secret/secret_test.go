package secret

import (
	"fmt"
	"strings"
	"testing"
)

func TestValue_PrintingIsMasked(t *testing.T) {
	v := NewValue("db-root-password", "hunter2", true)

	for _, formatted := range []string{
		fmt.Sprint(v),
		fmt.Sprintf("%v", v),
		fmt.Sprintf("%+v", v),
		fmt.Sprintf("%#v", v),
		fmt.Sprintf("%s", v),
	} {
		if strings.Contains(formatted, "hunter2") {
			t.Errorf("formatted value leaks raw secret: %q", formatted)
		}
	}

	if v.Reveal() != "hunter2" {
		t.Errorf("Reveal() = %q, want raw value", v.Reveal())
	}
}

func TestStore_Resolve(t *testing.T) {
	store := NewStore([]Value{
		NewValue("a", "one", true),
		NewValue("b", "two", false),
	})

	resolved, err := store.Resolve([]string{"a", "b"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved["a"] != "one" || resolved["b"] != "two" {
		t.Errorf("Resolve() = %v", resolved)
	}

	if _, err := store.Resolve([]string{"missing"}); err == nil {
		t.Error("Resolve() of uncollected secret should fail")
	}
}

func TestStore_SensitiveValuesLongestFirst(t *testing.T) {
	store := NewStore([]Value{
		NewValue("short", "abc", true),
		NewValue("long", "abcdef", true),
		NewValue("plain", "visible", false),
	})

	values := store.SensitiveValues()
	if len(values) != 2 {
		t.Fatalf("SensitiveValues() len = %d, want 2", len(values))
	}
	if values[0] != "abcdef" || values[1] != "abc" {
		t.Errorf("SensitiveValues() = %v, want longest first", values)
	}
}

func TestValidators(t *testing.T) {
	if err := NotEmpty("field")("  "); err == nil {
		t.Error("NotEmpty accepted blank input")
	}
	if err := NotEmpty("field")("x"); err != nil {
		t.Errorf("NotEmpty rejected %q: %v", "x", err)
	}
	if err := MinLength("field", 8)("short"); err == nil {
		t.Error("MinLength accepted short input")
	}
	if err := MinLength("field", 8)("longenough"); err != nil {
		t.Errorf("MinLength rejected valid input: %v", err)
	}
}
