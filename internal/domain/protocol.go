package domain

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// ProtocolType tags which trading protocol produced an order and which
// variant its protocolData decodes to.
type ProtocolType string

const (
	ProtocolNFTCOM      ProtocolType = "NFTCOM"
	ProtocolSeaport     ProtocolType = "Seaport"
	ProtocolLooksRare   ProtocolType = "LooksRare"
	ProtocolLooksRareV2 ProtocolType = "LooksRareV2"
	ProtocolX2Y2        ProtocolType = "X2Y2"
)

// ProtocolData is the closed union of per-protocol order detail.
type ProtocolData interface {
	protocolData()
}

type SeaportItem struct {
	ItemType             int    `json:"itemType"`
	Token                string `json:"token"`
	IdentifierOrCriteria string `json:"identifierOrCriteria"`
	StartAmount          string `json:"startAmount"`
	EndAmount            string `json:"endAmount"`
	Recipient            string `json:"recipient,omitempty"`
}

type SeaportParameters struct {
	Offerer                         string        `json:"offerer"`
	Zone                            string        `json:"zone"`
	ZoneHash                        string        `json:"zoneHash"`
	StartTime                       string        `json:"startTime"`
	EndTime                         string        `json:"endTime"`
	OrderType                       int           `json:"orderType"`
	Salt                            string        `json:"salt"`
	ConduitKey                      string        `json:"conduitKey"`
	Counter                         string        `json:"counter"`
	TotalOriginalConsiderationItems int           `json:"totalOriginalConsiderationItems"`
	Offer                           []SeaportItem `json:"offer"`
	Consideration                   []SeaportItem `json:"consideration"`
}

type SeaportProtocolData struct {
	Parameters SeaportParameters `json:"parameters"`
	Signature  string            `json:"signature"`
}

type LooksRareProtocolData struct {
	IsOrderAsk         bool   `json:"isOrderAsk"`
	Signer             string `json:"signer"`
	CollectionAddress  string `json:"collectionAddress"`
	CurrencyAddress    string `json:"currencyAddress"`
	Price              string `json:"price"`
	TokenID            string `json:"tokenId"`
	Amount             string `json:"amount"`
	Strategy           string `json:"strategy"`
	Nonce              string `json:"nonce"`
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
	MinPercentageToAsk string `json:"minPercentageToAsk"`
	Params             string `json:"params"`
	V                  string `json:"v,omitempty"`
	R                  string `json:"r,omitempty"`
	S                  string `json:"s,omitempty"`
}

type LooksRareMerkleProof struct {
	Position int    `json:"position"`
	Value    string `json:"value"`
}

type LooksRareV2ProtocolData struct {
	ID                   string                 `json:"id"`
	Hash                 string                 `json:"hash"`
	QuoteType            int                    `json:"quoteType"`
	GlobalNonce          string                 `json:"globalNonce"`
	SubsetNonce          string                 `json:"subsetNonce"`
	OrderNonce           string                 `json:"orderNonce"`
	Collection           string                 `json:"collection"`
	CollectionType       int                    `json:"collectionType"`
	Currency             string                 `json:"currency"`
	Signer               string                 `json:"signer"`
	StrategyID           int                    `json:"strategyId"`
	StartTime            int64                  `json:"startTime"`
	EndTime              int64                  `json:"endTime"`
	Price                string                 `json:"price"`
	ItemIDs              []string               `json:"itemIds"`
	Amounts              []string               `json:"amounts"`
	AdditionalParameters string                 `json:"additionalParameters"`
	Signature            string                 `json:"signature"`
	MerkleRoot           string                 `json:"merkleRoot,omitempty"`
	MerkleProof          []LooksRareMerkleProof `json:"merkleProof,omitempty"`
	Status               string                 `json:"status,omitempty"`
}

type X2Y2ProtocolData struct {
	ID                int64  `json:"id"`
	Side              int    `json:"side"`
	Type              string `json:"type"`
	ERCType           int    `json:"erc_type"`
	Status            string `json:"status"`
	Maker             string `json:"maker"`
	Contract          string `json:"contract"`
	TokenID           string `json:"tokenId"`
	Price             string `json:"price"`
	Amount            string `json:"amount"`
	CurrencyAddress   string `json:"currencyAddress"`
	CreatedAt         int64  `json:"created_at"`
	UpdatedAt         int64  `json:"updated_at"`
	EndAt             int64  `json:"end_at"`
	RoyaltyFee        int64  `json:"royalty_fee"`
	IsCollectionOffer bool   `json:"is_collection_offer"`
	IsBundle          bool   `json:"is_bundle"`
	IsPrivate         bool   `json:"is_private"`
}

type MarketplaceAsset struct {
	StandardType    string `json:"standardType"`
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenId"`
	Value           string `json:"value"`
	MinimumBid      string `json:"minimumBid,omitempty"`
}

type NFTCOMSignature struct {
	V int    `json:"v"`
	R string `json:"r"`
	S string `json:"s"`
}

type NFTCOMProtocolData struct {
	ListingID         string             `json:"listingId,omitempty"`
	AuctionType       string             `json:"auctionType,omitempty"`
	Salt              int64              `json:"salt"`
	Start             int64              `json:"start"`
	End               int64              `json:"end"`
	MakeAsset         []MarketplaceAsset `json:"makeAsset"`
	TakeAsset         []MarketplaceAsset `json:"takeAsset"`
	Signature         NFTCOMSignature    `json:"signature"`
	BuyNowTaker       string             `json:"buyNowTaker,omitempty"`
	AcceptedAt        int64              `json:"acceptedAt,omitempty"`
	RejectedAt        int64              `json:"rejectedAt,omitempty"`
	SwapTransactionID string             `json:"swapTransactionId,omitempty"`
}

func (SeaportProtocolData) protocolData()     {}
func (LooksRareProtocolData) protocolData()   {}
func (LooksRareV2ProtocolData) protocolData() {}
func (X2Y2ProtocolData) protocolData()        {}
func (NFTCOMProtocolData) protocolData()      {}

// DecodeProtocolData decodes a satellite's raw protocolData into the
// variant selected by protocol. The switch is exhaustive over the
// closed protocol set.
func DecodeProtocolData(protocol ProtocolType, raw []byte) (ProtocolData, error) {
	var (
		data ProtocolData
		err  error
	)
	switch protocol {
	case ProtocolSeaport:
		var v SeaportProtocolData
		err = json.Unmarshal(raw, &v)
		data = v
	case ProtocolLooksRare:
		var v LooksRareProtocolData
		err = json.Unmarshal(raw, &v)
		data = v
	case ProtocolLooksRareV2:
		var v LooksRareV2ProtocolData
		err = json.Unmarshal(raw, &v)
		data = v
	case ProtocolX2Y2:
		var v X2Y2ProtocolData
		err = json.Unmarshal(raw, &v)
		data = v
	case ProtocolNFTCOM:
		var v NFTCOMProtocolData
		err = json.Unmarshal(raw, &v)
		data = v
	default:
		return nil, UnsupportedProtocolError{Protocol: string(protocol)}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s protocol data", protocol)
	}
	return data, nil
}
