package ingest

import (
	"encoding/json"
	"strconv"

	"github.com/mintworks/relaygraph/internal/domain"
)

// LooksRareOrderV2 is the v2 order shape, with merkle-tree batching
// and split nonces.
type LooksRareOrderV2 struct {
	ID                   string                        `json:"id"`
	Hash                 string                        `json:"hash"`
	QuoteType            int                           `json:"quoteType"`
	GlobalNonce          string                        `json:"globalNonce"`
	SubsetNonce          string                        `json:"subsetNonce"`
	OrderNonce           string                        `json:"orderNonce"`
	Collection           string                        `json:"collection"`
	CollectionType       int                           `json:"collectionType"`
	Currency             string                        `json:"currency"`
	Signer               string                        `json:"signer"`
	StrategyID           int                           `json:"strategyId"`
	StartTime            int64                         `json:"startTime"`
	EndTime              int64                         `json:"endTime"`
	Price                string                        `json:"price"`
	ItemIDs              []string                      `json:"itemIds"`
	Amounts              []string                      `json:"amounts"`
	AdditionalParameters string                        `json:"additionalParameters"`
	Signature            string                        `json:"signature"`
	MerkleRoot           string                        `json:"merkleRoot"`
	MerkleProof          []domain.LooksRareMerkleProof `json:"merkleProof"`
	Status               string                        `json:"status"`
}

type LooksRareV2Adapter struct{}

func (LooksRareV2Adapter) Protocol() domain.ProtocolType { return domain.ProtocolLooksRareV2 }

func (a LooksRareV2Adapter) BuildOrder(raw json.RawMessage, orderType domain.ActivityType, chainID string) (domain.NormalizedActivity, error) {
	var order LooksRareOrderV2
	if err := json.Unmarshal(raw, &order); err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}
	if order.Hash == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing hash")
	}
	if order.Signer == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing signer")
	}
	if len(order.ItemIDs) == 0 {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "empty itemIds")
	}

	contract := checkSum(order.Collection)
	hex, err := tokenHex(order.ItemIDs[0])
	if err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}

	activity := buildActivity(orderType, order.Hash, order.Signer, chainID,
		[]string{nftID(contract, hex)}, contract, order.StartTime, order.EndTime)

	protocolData, err := json.Marshal(domain.LooksRareV2ProtocolData{
		ID:                   order.ID,
		Hash:                 order.Hash,
		QuoteType:            order.QuoteType,
		GlobalNonce:          order.GlobalNonce,
		SubsetNonce:          order.SubsetNonce,
		OrderNonce:           order.OrderNonce,
		Collection:           contract,
		CollectionType:       order.CollectionType,
		Currency:             checkSum(order.Currency),
		Signer:               checkSum(order.Signer),
		StrategyID:           order.StrategyID,
		StartTime:            order.StartTime,
		EndTime:              order.EndTime,
		Price:                order.Price,
		ItemIDs:              order.ItemIDs,
		Amounts:              order.Amounts,
		AdditionalParameters: order.AdditionalParameters,
		Signature:            order.Signature,
		MerkleRoot:           order.MerkleRoot,
		MerkleProof:          order.MerkleProof,
		Status:               order.Status,
	})
	if err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}

	nonce, _ := strconv.ParseInt(order.GlobalNonce, 10, 64)

	sat := domain.Order{
		ID:           order.Hash,
		OrderHash:    order.Hash,
		OrderType:    orderType,
		Exchange:     domain.ExchangeTypeLooksRare,
		Protocol:     a.Protocol(),
		MakerAddress: checkSum(order.Signer),
		Nonce:        nonce,
		ChainID:      chainID,
		ProtocolData: protocolData,
	}

	return domain.NormalizedActivity{Activity: activity, Order: &sat}, nil
}
