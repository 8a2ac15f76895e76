package domain

import "time"

type ActivityType string

const (
	ActivityTypeListing  ActivityType = "Listing"
	ActivityTypeBid      ActivityType = "Bid"
	ActivityTypeSale     ActivityType = "Sale"
	ActivityTypeCancel   ActivityType = "Cancel"
	ActivityTypePurchase ActivityType = "Purchase"
	ActivityTypeSwap     ActivityType = "Swap"
	ActivityTypeTransfer ActivityType = "Transfer"
)

type ActivityStatus string

const (
	ActivityStatusValid     ActivityStatus = "Valid"
	ActivityStatusExecuted  ActivityStatus = "Executed"
	ActivityStatusCancelled ActivityStatus = "Cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s ActivityStatus) Terminal() bool {
	return s == ActivityStatusExecuted || s == ActivityStatusCancelled
}

// ExpirationType selects the time window of a ledger query.
type ExpirationType string

const (
	ExpirationTypeActive  ExpirationType = "Active"
	ExpirationTypeExpired ExpirationType = "Expired"
	ExpirationTypeBoth    ExpirationType = "Both"
)

type ExchangeType string

const (
	ExchangeTypeOpenSea   ExchangeType = "OpenSea"
	ExchangeTypeLooksRare ExchangeType = "LooksRare"
	ExchangeTypeX2Y2      ExchangeType = "X2Y2"
	ExchangeTypeNFTCOM    ExchangeType = "NFTCOM"
)

// Activity is the canonical record of one marketplace event. Exactly
// one satellite (Order, Transaction or Cancel) shares ActivityTypeID.
type Activity struct {
	ID             string         `json:"id"`
	ActivityType   ActivityType   `json:"activityType"`
	ActivityTypeID string         `json:"activityTypeId"`
	Status         ActivityStatus `json:"status"`
	Read           bool           `json:"read"`
	ReadTimestamp  *time.Time     `json:"readTimestamp,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	Expiration     *time.Time     `json:"expiration,omitempty"`
	WalletAddress  string         `json:"walletAddress"`
	NFTContract    string         `json:"nftContract"`
	NFTID          []string       `json:"nftId"`
	ChainID        string         `json:"chainId"`

	Order       *Order       `json:"order,omitempty"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Cancel      *Cancel      `json:"cancel,omitempty"`
}

// Order is the satellite for Listing and Bid activities. Its ID is the
// protocol-derived order hash and equals the activity's ActivityTypeID.
type Order struct {
	ID           string       `json:"id"`
	ActivityID   string       `json:"activityId"`
	OrderHash    string       `json:"orderHash"`
	OrderType    ActivityType `json:"orderType"`
	Exchange     ExchangeType `json:"exchange"`
	Protocol     ProtocolType `json:"protocol"`
	MakerAddress string       `json:"makerAddress"`
	TakerAddress string       `json:"takerAddress,omitempty"`
	Nonce        int64        `json:"nonce,omitempty"`
	Zone         string       `json:"zone,omitempty"`
	Memo         string       `json:"memo,omitempty"`
	ChainID      string       `json:"chainId"`
	ProtocolData []byte       `json:"protocolData"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Transaction is the satellite for on-chain Sale, Purchase, Swap and
// Transfer activities, keyed by transaction hash.
type Transaction struct {
	ID                 string       `json:"id"`
	ActivityID         string       `json:"activityId"`
	TransactionHash    string       `json:"transactionHash"`
	TransactionType    ActivityType `json:"transactionType"`
	BlockNumber        string       `json:"blockNumber"`
	Exchange           ExchangeType `json:"exchange"`
	Protocol           ProtocolType `json:"protocol"`
	Maker              string       `json:"maker"`
	Taker              string       `json:"taker"`
	NFTContractAddress string       `json:"nftContractAddress"`
	NFTContractTokenID string       `json:"nftContractTokenId"`
	EventType          string       `json:"eventType"`
	ChainID            string       `json:"chainId"`
	ProtocolData       []byte       `json:"protocolData"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

// Cancel is the satellite for Cancel activities, keyed by the
// cancellation transaction hash and pointing back at the order it
// cancelled.
type Cancel struct {
	ID              string       `json:"id"`
	ActivityID      string       `json:"activityId"`
	TransactionHash string       `json:"transactionHash"`
	BlockNumber     string       `json:"blockNumber"`
	Exchange        ExchangeType `json:"exchange"`
	ForeignType     ActivityType `json:"foreignType"`
	ForeignKeyID    string       `json:"foreignKeyId"`
	ChainID         string       `json:"chainId"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// ActivityFilter selects ledger rows; all set fields are ANDed.
// Status defaults to Valid and ExpirationType defaults to Active when
// unset.
type ActivityFilter struct {
	ActivityType   ActivityType
	Status         ActivityStatus
	ExpirationType ExpirationType
	WalletAddress  string
	NFTContract    string
	NFTID          string
	ChainID        string
	Read           *bool
}

// BatchResult is the partial-success outcome of a bulk id update.
type BatchResult struct {
	UpdatedIDsSuccess   []string `json:"updatedIdsSuccess"`
	IDsNotFoundOrFailed []string `json:"idsNotFoundOrFailed"`
}

// NormalizedActivity pairs an Activity with exactly one satellite, as
// produced by a protocol adapter.
type NormalizedActivity struct {
	Activity    Activity
	Order       *Order
	Transaction *Transaction
	Cancel      *Cancel
}
