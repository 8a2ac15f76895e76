package ingest

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mintworks/relaygraph/internal/domain"
)

// NFTCOMOrder is the native marketplace order shape. Unlike the
// third-party protocols the feed carries no precomputed hash; the
// order id is derived from the signed fields.
type NFTCOMOrder struct {
	ListingID    string                    `json:"listingId"`
	MakerAddress string                    `json:"makerAddress"`
	TakerAddress string                    `json:"takerAddress"`
	AuctionType  string                    `json:"auctionType"`
	Salt         int64                     `json:"salt"`
	Start        int64                     `json:"start"`
	End          int64                     `json:"end"`
	MakeAsset    []domain.MarketplaceAsset `json:"makeAsset"`
	TakeAsset    []domain.MarketplaceAsset `json:"takeAsset"`
	Signature    domain.NFTCOMSignature    `json:"signature"`
	Memo         string                    `json:"memo"`
	BuyNowTaker  string                    `json:"buyNowTaker"`
}

type NFTCOMAdapter struct{}

func (NFTCOMAdapter) Protocol() domain.ProtocolType { return domain.ProtocolNFTCOM }

// orderHash derives the deterministic order id: keccak256 over the
// maker, salt and time window plus each asset's contract/token/value
// triple, in declaration order.
func (NFTCOMAdapter) orderHash(order NFTCOMOrder) string {
	var buf []byte
	buf = append(buf, common.HexToAddress(order.MakerAddress).Bytes()...)
	buf = append(buf, common.LeftPadBytes(big.NewInt(order.Salt).Bytes(), 32)...)
	buf = append(buf, common.LeftPadBytes(big.NewInt(order.Start).Bytes(), 32)...)
	buf = append(buf, common.LeftPadBytes(big.NewInt(order.End).Bytes(), 32)...)
	for _, asset := range append(append([]domain.MarketplaceAsset{}, order.MakeAsset...), order.TakeAsset...) {
		buf = append(buf, common.HexToAddress(asset.ContractAddress).Bytes()...)
		buf = append(buf, []byte(asset.TokenID)...)
		buf = append(buf, []byte(asset.Value)...)
	}
	return crypto.Keccak256Hash(buf).Hex()
}

func (a NFTCOMAdapter) BuildOrder(raw json.RawMessage, orderType domain.ActivityType, chainID string) (domain.NormalizedActivity, error) {
	var order NFTCOMOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}
	if order.MakerAddress == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing makerAddress")
	}
	if len(order.MakeAsset) == 0 {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "empty makeAsset")
	}

	orderHash := a.orderHash(order)
	contract := checkSum(order.MakeAsset[0].ContractAddress)

	nftIDs := make([]string, 0, len(order.MakeAsset))
	for _, asset := range order.MakeAsset {
		hex, err := tokenHex(asset.TokenID)
		if err != nil {
			return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
		}
		nftIDs = append(nftIDs, nftID(checkSum(asset.ContractAddress), hex))
	}

	activity := buildActivity(orderType, orderHash, order.MakerAddress, chainID,
		nftIDs, contract, order.Start, order.End)

	protocolData, err := json.Marshal(domain.NFTCOMProtocolData{
		ListingID:   order.ListingID,
		AuctionType: order.AuctionType,
		Salt:        order.Salt,
		Start:       order.Start,
		End:         order.End,
		MakeAsset:   order.MakeAsset,
		TakeAsset:   order.TakeAsset,
		Signature:   order.Signature,
		BuyNowTaker: order.BuyNowTaker,
	})
	if err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}

	sat := domain.Order{
		ID:           orderHash,
		OrderHash:    orderHash,
		OrderType:    orderType,
		Exchange:     domain.ExchangeTypeNFTCOM,
		Protocol:     a.Protocol(),
		MakerAddress: checkSum(order.MakerAddress),
		Nonce:        order.Salt,
		Memo:         order.Memo,
		ChainID:      chainID,
		ProtocolData: protocolData,
	}
	if order.TakerAddress != "" {
		sat.TakerAddress = checkSum(order.TakerAddress)
	}

	return domain.NormalizedActivity{Activity: activity, Order: &sat}, nil
}
