package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("hold")

	first := gen.Next()
	second := gen.Next()

	if first != "hold-1" || second != "hold-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGeneratorReset(t *testing.T) {
	gen := NewIDGenerator("")
	_ = gen.Next()
	gen.Reset()

	if next := gen.NextFunc()(); next != "id-1" {
		t.Fatalf("expected id-1 after reset, got %q", next)
	}
}
