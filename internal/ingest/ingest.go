// Package ingest normalizes protocol-native order, sale and cancel
// payloads from the supported trading protocols into canonical
// activity records.
package ingest

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/mintworks/relaygraph/internal/domain"
)

// Adapter normalizes one protocol's off-chain order payloads.
type Adapter interface {
	Protocol() domain.ProtocolType
	// BuildOrder maps a protocol-native listing/bid payload into the
	// canonical activity plus order satellite. The activity id is the
	// protocol's own deterministic order hash.
	BuildOrder(raw json.RawMessage, orderType domain.ActivityType, chainID string) (domain.NormalizedActivity, error)
}

func checkSum(addr string) string {
	return domain.ChecksumAddress(addr)
}

// tokenHex renders a decimal or hex token id as 0x-prefixed hex.
func tokenHex(tokenID string) (string, error) {
	if tokenID == "" {
		return "", fmt.Errorf("empty token id")
	}
	n, ok := new(big.Int).SetString(tokenID, 0)
	if !ok {
		n, ok = new(big.Int).SetString(tokenID, 10)
		if !ok {
			return "", fmt.Errorf("unparsable token id %q", tokenID)
		}
	}
	return hexutil.EncodeBig(n), nil
}

// nftID composes the canonical nft triple used across the ledger.
func nftID(contract, tokenIDHex string) string {
	return fmt.Sprintf("ethereum/%s/%s", contract, tokenIDHex)
}

// buildActivity assembles the canonical activity row shared by every
// adapter. Zero expiration means the record never expires (on-chain
// events).
func buildActivity(
	activityType domain.ActivityType,
	activityHash string,
	walletAddress string,
	chainID string,
	nftIDs []string,
	contract string,
	timestampUnix int64,
	expirationUnix int64,
) domain.Activity {
	activity := domain.Activity{
		ActivityType:   activityType,
		ActivityTypeID: activityHash,
		Status:         domain.ActivityStatusValid,
		Read:           false,
		Timestamp:      time.Unix(timestampUnix, 0).UTC(),
		WalletAddress:  checkSum(walletAddress),
		NFTContract:    checkSum(contract),
		NFTID:          nftIDs,
		ChainID:        chainID,
	}
	if expirationUnix > 0 {
		exp := time.Unix(expirationUnix, 0).UTC()
		activity.Expiration = &exp
	}
	return activity
}

func malformed(protocol domain.ProtocolType, reason string) error {
	return domain.MalformedOrderError{Protocol: string(protocol), Reason: reason}
}
