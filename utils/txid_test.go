package utils

import (
	"strings"
	"testing"
)

func TestGenerateTransactionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateTransactionID()
		if !strings.HasPrefix(id, "TXN-") {
			t.Fatalf("expected TXN- prefix, got %s", id)
		}
		if len(id) != len("TXN-")+12 {
			t.Fatalf("unexpected length for %s", id)
		}
		if id != strings.ToUpper(id) {
			t.Fatalf("expected uppercase id, got %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestGeneratePendingReference(t *testing.T) {
	ref := GeneratePendingReference()
	if !strings.HasPrefix(ref, "PENDING-") {
		t.Fatalf("expected PENDING- prefix, got %s", ref)
	}
	if ref == GeneratePendingReference() {
		t.Fatal("expected unique references")
	}
}
