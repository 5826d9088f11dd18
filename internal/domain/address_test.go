package domain_test

import (
	"errors"
	"testing"

	"github.com/iho/walletcore/internal/domain"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		network string
		address string
		wantErr error
	}{
		{"valid bitcoin legacy", "bitcoin", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", nil},
		{"valid bitcoin bech32", "bitcoin", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", nil},
		{"valid ethereum", "ethereum", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", nil},
		{"valid tron", "tron", "TKHuVq1oKVruCGLvqVexFs6dawKv6fQgFs", nil},
		{"valid iban", "bank", "DE89370400440532013000", nil},
		{"malformed ethereum", "ethereum", "0x742d35", domain.ErrInvalidAddress},
		{"bitcoin address on ethereum", "ethereum", "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", domain.ErrInvalidAddress},
		{"empty address", "bitcoin", "", domain.ErrInvalidAddress},
		{"unknown network", "dogecoin", "D7Y55vqrweGz6dSHGbx4GaRNBenH2xLCiK", domain.ErrUnsupportedNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.ValidateAddress(tt.network, tt.address)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestScamList(t *testing.T) {
	list := domain.NewScamList("0xDEADBEEFdeadbeefDEADBEEFdeadbeefDEADBEEF")

	if !list.Contains("0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef") {
		t.Fatal("lookup should be case-insensitive")
	}

	if list.Contains("0x742d35Cc6634C0532925a3b844Bc454e4438f44e") {
		t.Fatal("unexpected scam hit")
	}

	list.Add("TKHuVq1oKVruCGLvqVexFs6dawKv6fQgFs")
	if !list.Contains("TKHuVq1oKVruCGLvqVexFs6dawKv6fQgFs") {
		t.Fatal("added address not found")
	}
}

func TestRiskLevelFromScore(t *testing.T) {
	tests := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskLow},
		{49, domain.RiskLow},
		{50, domain.RiskMedium},
		{69, domain.RiskMedium},
		{70, domain.RiskHigh},
		{89, domain.RiskHigh},
		{90, domain.RiskCritical},
		{250, domain.RiskCritical},
	}

	for _, tt := range tests {
		if got := domain.RiskLevelFromScore(tt.score); got != tt.want {
			t.Errorf("score %d: expected %s, got %s", tt.score, tt.want, got)
		}
	}
}
