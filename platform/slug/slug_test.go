package slug

import (
	"strings"
	"testing"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Go Basics", "go-basics"},
		{"  Advanced   Go  Patterns  ", "advanced-go-patterns"},
		{"C++ for C# Developers!", "c-for-c-developers"},
		{"100 Days of Code", "100-days-of-code"},
		{"already-a-slug", "already-a-slug"},
		{"!!!", ""},
	}

	for _, tt := range tests {
		if got := Make(tt.in); got != tt.want {
			t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisambiguate(t *testing.T) {
	got := Disambiguate("go-basics")

	if !strings.HasPrefix(got, "go-basics-") {
		t.Fatalf("Disambiguate result %q missing base prefix", got)
	}
	suffix := strings.TrimPrefix(got, "go-basics-")
	if suffix == "" {
		t.Fatal("expected a numeric suffix")
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			t.Fatalf("suffix %q is not numeric", suffix)
		}
	}
}
