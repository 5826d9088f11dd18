package main

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	if got := parseAmount("10000"); !got.Equal(decimal.NewFromInt(10000)) {
		t.Fatalf("expected 10000, got %s", got)
	}

	if got := parseAmount("12.50"); !got.Equal(decimal.NewFromFloat(12.5)) {
		t.Fatalf("expected 12.50, got %s", got)
	}

	if got := parseAmount("not-a-number"); !got.IsZero() {
		t.Fatalf("expected zero for malformed amount, got %s", got)
	}
}
