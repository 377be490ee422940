// Package normalizer maps raw counterparty identifiers to canonical keys.
package normalizer

import (
	"fmt"
	"strings"
	"unicode"
)

// MappingSource supplies the two lookup tables.
type MappingSource interface {
	LoadNameMappings() (map[string]string, error)
	LoadAccountMappings() (map[string]string, error)
}

// Normalizer resolves counterparty names and account numbers through
// injected lookup tables. A lookup miss falls back to the trimmed input.
type Normalizer struct {
	names    map[string]string
	accounts map[string]string
}

// New builds a Normalizer over the given tables. Keys are trimmed; case is
// preserved, so lookups are case-sensitive.
func New(names, accounts map[string]string) *Normalizer {
	return &Normalizer{
		names:    trimKeys(names),
		accounts: trimKeys(accounts),
	}
}

// NewFromStore loads both tables from source.
func NewFromStore(source MappingSource) (*Normalizer, error) {
	names, err := source.LoadNameMappings()
	if err != nil {
		return nil, fmt.Errorf("failed to load name mappings: %w", err)
	}
	accounts, err := source.LoadAccountMappings()
	if err != nil {
		return nil, fmt.Errorf("failed to load account mappings: %w", err)
	}
	return New(names, accounts), nil
}

// Normalize returns the canonical counterparty key. A blank or purely numeric
// identifier is resolved through the account table using rawAccountNumber;
// anything else through the name table.
func (n *Normalizer) Normalize(rawIdentifier, rawAccountNumber string) string {
	identifier := strings.TrimSpace(rawIdentifier)
	if identifier == "" || isNumeric(identifier) {
		account := strings.TrimSpace(rawAccountNumber)
		if canonical, ok := n.accounts[account]; ok {
			return canonical
		}
		return account
	}
	if canonical, ok := n.names[identifier]; ok {
		return canonical
	}
	return identifier
}

// Sizes reports the number of name and account entries
func (n *Normalizer) Sizes() (names, accounts int) {
	return len(n.names), len(n.accounts)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func trimKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.TrimSpace(k)] = v
	}
	return out
}
