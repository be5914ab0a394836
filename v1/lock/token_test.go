package lock

import (
	"strings"
	"testing"
)

func TestNewTokenFormat(t *testing.T) {
	tok := newToken("jobs:nightly")
	if !strings.HasPrefix(tok, "_LOCK:jobs:nightly:") {
		t.Fatalf("unexpected token %q", tok)
	}
	hexPart := tok[strings.LastIndexByte(tok, ':')+1:]
	if len(hexPart) != 32 {
		t.Fatalf("expected 32 hex chars of entropy, got %q", hexPart)
	}
}

func TestNewTokenUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		tok := newToken("k")
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestLockName(t *testing.T) {
	cases := map[string]string{
		newToken("k"):            "k",
		newToken("jobs:nightly"): "jobs:nightly",
		"not a token":            "",
		"_LOCK:":                 "",
		"":                       "",
	}
	for tok, want := range cases {
		if got := LockName(tok); got != want {
			t.Fatalf("LockName(%q) = %q, want %q", tok, got, want)
		}
	}
}
