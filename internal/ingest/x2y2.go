package ingest

import (
	"encoding/json"

	"github.com/mintworks/relaygraph/internal/domain"
)

// X2Y2Order is the order shape from the X2Y2 API, snake_case fields
// as served.
type X2Y2Order struct {
	ItemHash          string    `json:"item_hash"`
	Maker             string    `json:"maker"`
	Taker             string    `json:"taker"`
	Price             string    `json:"price"`
	Amount            string    `json:"amount"`
	Currency          string    `json:"currency"`
	CreatedAt         int64     `json:"created_at"`
	UpdatedAt         int64     `json:"updated_at"`
	EndAt             int64     `json:"end_at"`
	ID                int64     `json:"id"`
	Type              string    `json:"type"`
	Side              int       `json:"side"`
	Status            string    `json:"status"`
	ERCType           int       `json:"erc_type"`
	RoyaltyFee        int64     `json:"royalty_fee"`
	IsCollectionOffer bool      `json:"is_collection_offer"`
	IsBundle          bool      `json:"is_bundle"`
	IsPrivate         bool      `json:"is_private"`
	Token             x2y2Token `json:"token"`
}

type x2y2Token struct {
	Contract string `json:"contract"`
	TokenID  string `json:"token_id"`
}

type X2Y2Adapter struct{}

func (X2Y2Adapter) Protocol() domain.ProtocolType { return domain.ProtocolX2Y2 }

func (a X2Y2Adapter) BuildOrder(raw json.RawMessage, orderType domain.ActivityType, chainID string) (domain.NormalizedActivity, error) {
	var order X2Y2Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}
	if order.ItemHash == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing item_hash")
	}
	if order.Maker == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing maker")
	}
	if order.Token.Contract == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing token contract")
	}

	contract := checkSum(order.Token.Contract)
	tokenID := order.Token.TokenID
	if tokenID == "" {
		tokenID = "0"
	}
	hex, err := tokenHex(tokenID)
	if err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}

	activity := buildActivity(orderType, order.ItemHash, order.Maker, chainID,
		[]string{nftID(contract, hex)}, contract, order.CreatedAt, order.EndAt)

	protocolData, err := json.Marshal(domain.X2Y2ProtocolData{
		ID:                order.ID,
		Side:              order.Side,
		Type:              order.Type,
		ERCType:           order.ERCType,
		Status:            order.Status,
		Maker:             checkSum(order.Maker),
		Contract:          contract,
		TokenID:           order.Token.TokenID,
		Price:             order.Price,
		Amount:            order.Amount,
		CurrencyAddress:   checkSum(order.Currency),
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
		EndAt:             order.EndAt,
		RoyaltyFee:        order.RoyaltyFee,
		IsCollectionOffer: order.IsCollectionOffer,
		IsBundle:          order.IsBundle,
		IsPrivate:         order.IsPrivate,
	})
	if err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}

	sat := domain.Order{
		ID:           order.ItemHash,
		OrderHash:    order.ItemHash,
		OrderType:    orderType,
		Exchange:     domain.ExchangeTypeX2Y2,
		Protocol:     a.Protocol(),
		MakerAddress: checkSum(order.Maker),
		Nonce:        order.ID,
		ChainID:      chainID,
		ProtocolData: protocolData,
	}
	if order.Taker != "" {
		sat.TakerAddress = checkSum(order.Taker)
	}

	return domain.NormalizedActivity{Activity: activity, Order: &sat}, nil
}
