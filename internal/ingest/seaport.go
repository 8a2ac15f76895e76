package ingest

import (
	"encoding/json"
	"strconv"

	"github.com/mintworks/relaygraph/internal/domain"
)

// SeaportOrder is the payload shape returned by the Seaport order
// feed. Offer identifiers arrive as decimal strings.
type SeaportOrder struct {
	OrderHash    string                     `json:"order_hash"`
	ProtocolData domain.SeaportProtocolData `json:"protocol_data"`
	Maker        *seaportAccount            `json:"maker"`
	Taker        *seaportAccount            `json:"taker"`
	CurrentPrice string                     `json:"current_price"`
}

type seaportAccount struct {
	Address string `json:"address"`
}

type SeaportAdapter struct{}

func (SeaportAdapter) Protocol() domain.ProtocolType { return domain.ProtocolSeaport }

func (a SeaportAdapter) BuildOrder(raw json.RawMessage, orderType domain.ActivityType, chainID string) (domain.NormalizedActivity, error) {
	var order SeaportOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}
	if order.OrderHash == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing order_hash")
	}
	params := order.ProtocolData.Parameters
	if params.Offerer == "" {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "missing offerer")
	}
	if len(params.Offer) == 0 {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), "empty offer array")
	}

	contract := checkSum(params.Offer[0].Token)
	nftIDs := make([]string, 0, len(params.Offer))
	for _, offer := range params.Offer {
		hex, err := tokenHex(offer.IdentifierOrCriteria)
		if err != nil {
			return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
		}
		nftIDs = append(nftIDs, nftID(contract, hex))
	}

	startTime, _ := strconv.ParseInt(params.StartTime, 10, 64)
	endTime, _ := strconv.ParseInt(params.EndTime, 10, 64)

	activity := buildActivity(orderType, order.OrderHash, params.Offerer, chainID, nftIDs, contract, startTime, endTime)

	protocolData, err := json.Marshal(order.ProtocolData)
	if err != nil {
		return domain.NormalizedActivity{}, malformed(a.Protocol(), err.Error())
	}

	var nonce int64
	if params.Counter != "" {
		nonce, _ = strconv.ParseInt(params.Counter, 10, 64)
	}

	sat := domain.Order{
		ID:           order.OrderHash,
		OrderHash:    order.OrderHash,
		OrderType:    orderType,
		Exchange:     domain.ExchangeTypeOpenSea,
		Protocol:     a.Protocol(),
		MakerAddress: checkSum(params.Offerer),
		Nonce:        nonce,
		Zone:         params.Zone,
		ChainID:      chainID,
		ProtocolData: protocolData,
	}
	if order.Taker != nil && order.Taker.Address != "" {
		sat.TakerAddress = checkSum(order.Taker.Address)
	}

	return domain.NormalizedActivity{Activity: activity, Order: &sat}, nil
}
