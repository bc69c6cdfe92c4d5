package idgen

import (
	"strings"
	"testing"
)

func TestNewRequestIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewRequestID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewRequestIDIsBase32(t *testing.T) {
	const alphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"
	id := NewRequestID()
	if id == "" {
		t.Fatal("NewRequestID() returned an empty id")
	}
	for _, r := range id {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("NewRequestID() = %q, %q is not in the snowflake base32 alphabet", id, r)
		}
	}
}
