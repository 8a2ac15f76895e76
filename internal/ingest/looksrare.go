package ingest

import (
	"encoding/json"
	"strconv"

	"github.com/mintworks/relaygraph/internal/domain"
)

// LooksRareOrder is the flat v1 order shape from the LooksRare API.
type LooksRareOrder struct {
	Hash               string `json:"hash"`
	Signer             string `json:"signer"`
	CollectionAddress  string `json:"collectionAddress"`
	CurrencyAddress    string `json:"currencyAddress"`
	TokenID            string `json:"tokenId"`
	Price              string `json:"price"`
	Amount             string `json:"amount"`
	Strategy           string `json:"strategy"`
	Nonce              string `json:"nonce"`
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
	MinPercentageToAsk string `json:"minPercentageToAsk"`
	Params             string `json:"params"`
	IsOrderAsk         bool   `json:"isOrderAsk"`
	V                  string `json:"v"`
	R                  string `json:"r"`
	S                  string `json:"s"`
}

type LooksRareAdapter struct{}

func (LooksRareAdapter) Protocol() domain.ProtocolType { return domain.ProtocolLooksRare }

func (a LooksRareAdapter) BuildOrder(raw json.RawMessage, orderType domain.ActivityType, chainID string) (domain.NormalizedActivity, error) {
	var order LooksRareOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}
	if order.Hash == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing hash")
	}
	if order.Signer == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing signer")
	}
	if order.TokenID == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing tokenId")
	}

	contract := checkSum(order.CollectionAddress)
	hex, err := tokenHex(order.TokenID)
	if err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}

	startTime, _ := strconv.ParseInt(order.StartTime, 10, 64)
	endTime, _ := strconv.ParseInt(order.EndTime, 10, 64)
	nonce, _ := strconv.ParseInt(order.Nonce, 10, 64)

	activity := buildActivity(orderType, order.Hash, order.Signer, chainID,
		[]string{nftID(contract, hex)}, contract, startTime, endTime)

	protocolData, err := json.Marshal(domain.LooksRareProtocolData{
		IsOrderAsk:         order.IsOrderAsk,
		Signer:             checkSum(order.Signer),
		CollectionAddress:  contract,
		CurrencyAddress:    checkSum(order.CurrencyAddress),
		Price:              order.Price,
		TokenID:            order.TokenID,
		Amount:             order.Amount,
		Strategy:           order.Strategy,
		Nonce:              order.Nonce,
		StartTime:          order.StartTime,
		EndTime:            order.EndTime,
		MinPercentageToAsk: order.MinPercentageToAsk,
		Params:             order.Params,
		V:                  order.V,
		R:                  order.R,
		S:                  order.S,
	})
	if err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}

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
