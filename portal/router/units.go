package router

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the fixed-point precision of ether on every served chain
const EtherDecimals int32 = 18

// only plain positional decimals, no signs or exponents
var decimalAmountPattern = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)

// ParseEther converts a human ether amount into wei
func ParseEther(value string) (*big.Int, error) {
	return ParseUnits(value, EtherDecimals)
}

// ParseUnits converts a decimal string into integer base units with the given precision.
// Input with more fractional digits than decimals is rejected, never rounded.
func ParseUnits(value string, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("decimals must not be negative")
	}

	s := strings.TrimSpace(value)
	if s == "" {
		return nil, fmt.Errorf("amount is empty")
	}
	if !decimalAmountPattern.MatchString(s) {
		return nil, fmt.Errorf("amount %q is not a plain decimal number", value)
	}
	s = strings.TrimSuffix(normalizeLeadingDot(s), ".")

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", value, err)
	}

	shifted := amount.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", value, decimals)
	}

	return shifted.BigInt(), nil
}

// FormatUnits renders base units as a decimal string without trailing zeros
func FormatUnits(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// FormatEther renders wei as ether
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals)
}
