package domain

import "github.com/ethereum/go-ethereum/common"

// ChecksumAddress normalizes an address to its EIP-55 checksum form.
// The empty string and the bare "0x" placeholder pass through. Both
// ingestion and query filters run through this so address comparisons
// never depend on caller casing.
func ChecksumAddress(addr string) string {
	if addr == "" || addr == "0x" {
		return addr
	}
	return common.HexToAddress(addr).Hex()
}
