package domain

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Supported external networks.
const (
	NetworkBitcoin  = "bitcoin"
	NetworkEthereum = "ethereum"
	NetworkTron     = "tron"
	NetworkBank     = "bank"
)

var addressPatterns = map[string]*regexp.Regexp{
	NetworkBitcoin:  regexp.MustCompile(`^(1[a-km-zA-HJ-NP-Z1-9]{25,34}|3[a-km-zA-HJ-NP-Z1-9]{25,34}|bc1[ac-hj-np-z02-9]{11,71})$`),
	NetworkEthereum: regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`),
	NetworkTron:     regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`),
	// IBAN-style: country code, two check digits, up to 30 alphanumerics.
	NetworkBank: regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{10,30}$`),
}

// ValidateAddress checks that address is well-formed for the stated network.
func ValidateAddress(network, address string) error {
	pattern, ok := addressPatterns[strings.ToLower(network)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedNetwork, network)
	}
	if !pattern.MatchString(address) {
		return fmt.Errorf("%w: malformed for network %s", ErrInvalidAddress, network)
	}
	return nil
}

// SupportedNetworks returns the networks addresses can be validated for.
func SupportedNetworks() []string {
	return []string{NetworkBitcoin, NetworkEthereum, NetworkTron, NetworkBank}
}

// ScamList is a concurrency-safe set of known scam destination addresses.
type ScamList struct {
	mu    sync.RWMutex
	addrs map[string]struct{}
}

// NewScamList creates a scam list seeded with the given addresses.
func NewScamList(seed ...string) *ScamList {
	l := &ScamList{addrs: make(map[string]struct{}, len(seed))}
	for _, a := range seed {
		l.addrs[strings.ToLower(a)] = struct{}{}
	}
	return l
}

// Add registers an address as scam-listed.
func (l *ScamList) Add(address string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.addrs[strings.ToLower(address)] = struct{}{}
}

// Contains reports whether an address is scam-listed.
func (l *ScamList) Contains(address string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.addrs[strings.ToLower(address)]
	return ok
}
