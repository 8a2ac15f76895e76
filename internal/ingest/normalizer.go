package ingest

import (
	"encoding/json"
	"time"

	"github.com/mintworks/relaygraph/internal/domain"
)

// exchangeFor maps a protocol to the venue recorded on satellites.
func exchangeFor(protocol domain.ProtocolType) domain.ExchangeType {
	switch protocol {
	case domain.ProtocolSeaport:
		return domain.ExchangeTypeOpenSea
	case domain.ProtocolLooksRare, domain.ProtocolLooksRareV2:
		return domain.ExchangeTypeLooksRare
	case domain.ProtocolX2Y2:
		return domain.ExchangeTypeX2Y2
	default:
		return domain.ExchangeTypeNFTCOM
	}
}

// TransactionEvent is the normalized on-chain event shape handed to
// the ledger for sales, purchases, swaps and transfers. The indexer
// resolves these from receipts, so the shape is protocol-neutral with
// raw protocol detail attached.
type TransactionEvent struct {
	TransactionHash string          `json:"transactionHash"`
	BlockNumber     string          `json:"blockNumber"`
	Contract        string          `json:"contract"`
	TokenID         string          `json:"tokenId"`
	Maker           string          `json:"maker"`
	Taker           string          `json:"taker"`
	EventType       string          `json:"eventType"`
	ProtocolData    json.RawMessage `json:"protocolData"`
}

// CancelEvent is the on-chain cancellation shape, pointing back at the
// order it voids.
type CancelEvent struct {
	TransactionHash string   `json:"transactionHash"`
	BlockNumber     string   `json:"blockNumber"`
	Contract        string   `json:"contract"`
	NFTIDs          []string `json:"nftIds"`
	Maker           string   `json:"maker"`
	ForeignType     string   `json:"foreignType"`
	OrderHash       string   `json:"orderHash"`
}

// Normalizer routes raw payloads to the protocol adapters and builds
// transaction/cancel satellites for on-chain activity types.
type Normalizer struct {
	adapters map[domain.ProtocolType]Adapter
	now      func() time.Time
}

func NewNormalizer() *Normalizer {
	n := &Normalizer{
		adapters: map[domain.ProtocolType]Adapter{},
		now:      time.Now,
	}
	for _, a := range []Adapter{
		NFTCOMAdapter{},
		SeaportAdapter{},
		LooksRareAdapter{},
		LooksRareV2Adapter{},
		X2Y2Adapter{},
	} {
		n.adapters[a.Protocol()] = a
	}
	return n
}

// Normalize turns one protocol-native payload into the canonical
// activity plus its satellite. Listings and bids go through the
// protocol adapter; sales, transfers, purchases and swaps become
// transaction satellites; cancels become cancel satellites.
func (n *Normalizer) Normalize(
	protocol domain.ProtocolType,
	activityType domain.ActivityType,
	raw json.RawMessage,
	chainID string,
) (domain.NormalizedActivity, error) {
	adapter, ok := n.adapters[protocol]
	if !ok {
		return domain.NormalizedActivity{}, domain.UnsupportedProtocolError{Protocol: string(protocol)}
	}

	switch activityType {
	case domain.ActivityTypeListing, domain.ActivityTypeBid:
		return adapter.BuildOrder(raw, activityType, chainID)
	case domain.ActivityTypeSale, domain.ActivityTypePurchase, domain.ActivityTypeSwap, domain.ActivityTypeTransfer:
		return n.buildTransaction(protocol, activityType, raw, chainID)
	case domain.ActivityTypeCancel:
		return n.buildCancel(protocol, raw, chainID)
	default:
		return domain.NormalizedActivity{}, malformed(protocol, "unknown activity type "+string(activityType))
	}
}

func (n *Normalizer) buildTransaction(
	protocol domain.ProtocolType,
	activityType domain.ActivityType,
	raw json.RawMessage,
	chainID string,
) (domain.NormalizedActivity, error) {
	var event TransactionEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return domain.NormalizedActivity{}, malformed(protocol, err.Error())
	}
	if event.TransactionHash == "" {
		return domain.NormalizedActivity{}, malformed(protocol, "missing transactionHash")
	}
	if event.Maker == "" {
		return domain.NormalizedActivity{}, malformed(protocol, "missing maker")
	}

	contract := checkSum(event.Contract)
	hex, err := tokenHex(event.TokenID)
	if err != nil {
		return domain.NormalizedActivity{}, malformed(protocol, err.Error())
	}

	activity := buildActivity(activityType, event.TransactionHash, event.Maker, chainID,
		[]string{nftID(contract, hex)}, contract, n.now().Unix(), 0)

	eventType := event.EventType
	if eventType == "" {
		eventType = "Default"
	}

	sat := domain.Transaction{
		ID:                 event.TransactionHash,
		TransactionHash:    event.TransactionHash,
		TransactionType:    activityType,
		BlockNumber:        event.BlockNumber,
		Exchange:           exchangeFor(protocol),
		Protocol:           protocol,
		Maker:              checkSum(event.Maker),
		Taker:              checkSum(event.Taker),
		NFTContractAddress: contract,
		NFTContractTokenID: hex,
		EventType:          eventType,
		ChainID:            chainID,
		ProtocolData:       event.ProtocolData,
	}

	return domain.NormalizedActivity{Activity: activity, Transaction: &sat}, nil
}

func (n *Normalizer) buildCancel(
	protocol domain.ProtocolType,
	raw json.RawMessage,
	chainID string,
) (domain.NormalizedActivity, error) {
	var event CancelEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return domain.NormalizedActivity{}, malformed(protocol, err.Error())
	}
	if event.TransactionHash == "" {
		return domain.NormalizedActivity{}, malformed(protocol, "missing transactionHash")
	}
	if event.OrderHash == "" {
		return domain.NormalizedActivity{}, malformed(protocol, "missing orderHash")
	}

	contract := checkSum(event.Contract)
	activity := buildActivity(domain.ActivityTypeCancel, event.TransactionHash, event.Maker, chainID,
		event.NFTIDs, contract, n.now().Unix(), 0)

	foreignType := domain.ActivityType(event.ForeignType)
	if foreignType == "" {
		foreignType = domain.ActivityTypeListing
	}

	sat := domain.Cancel{
		ID:              event.TransactionHash,
		TransactionHash: event.TransactionHash,
		BlockNumber:     event.BlockNumber,
		Exchange:        exchangeFor(protocol),
		ForeignType:     foreignType,
		ForeignKeyID:    event.OrderHash,
		ChainID:         chainID,
	}

	return domain.NormalizedActivity{Activity: activity, Cancel: &sat}, nil
}
