package router

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseHexAddress validates a 0x-prefixed 20 byte hex address.
// All-lowercase and all-uppercase input is accepted as is; mixed case must
// carry a valid EIP-55 checksum.
func ParseHexAddress(raw string) (common.Address, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "0x") {
		return common.Address{}, fmt.Errorf("address must start with 0x")
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("address must be 0x followed by 40 hex characters")
	}

	address := common.HexToAddress(s)
	body := s[2:]
	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		if address.Hex() != s {
			return common.Address{}, fmt.Errorf("address has an invalid EIP-55 checksum")
		}
	}
	return address, nil
}
