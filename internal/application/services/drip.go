package services

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// denomMultipliers maps supported denominations to their wei value
var denomMultipliers = map[string]*big.Int{
	"wei":   big.NewInt(1),
	"gwei":  big.NewInt(1_000_000_000),
	"eth":   new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	"ether": new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
}

// ParseDripAmount parses a drip amount of the form "<number><denom>", e.g.
// "1ether", "0.5eth" or "1000000000gwei", into wei. The result must be a
// whole number of wei.
func ParseDripAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}

	split := len(s)
	for split > 0 && unicode.IsLetter(rune(s[split-1])) {
		split--
	}

	numPart := s[:split]
	denom := s[split:]
	if numPart == "" {
		return nil, fmt.Errorf("missing numeric amount")
	}
	if denom == "" {
		return nil, fmt.Errorf("missing denomination")
	}

	multiplier, ok := denomMultipliers[denom]
	if !ok {
		return nil, fmt.Errorf("unknown denomination %q", denom)
	}

	value, ok := new(big.Rat).SetString(numPart)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q", numPart)
	}
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	wei := value.Mul(value, new(big.Rat).SetInt(multiplier))
	if !wei.IsInt() {
		return nil, fmt.Errorf("amount is not a whole number of wei")
	}

	return wei.Num(), nil
}
