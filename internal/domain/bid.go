package domain

import "time"

type BidStatus string

const (
	BidStatusSubmitted BidStatus = "Submitted"
	BidStatusExecuted  BidStatus = "Executed"
)

// TokenDecimals is the fixed token scale used when converting a staked
// price into whole tokens for stake-weight accumulation.
const TokenDecimals = 18

// Bid is one lineage row per (profile, user); re-bidding updates the
// row in place, carrying the accumulated stake-weighted seconds.
type Bid struct {
	ID                   string    `json:"id"`
	ProfileID            string    `json:"profileId"`
	UserID               string    `json:"userId"`
	WalletID             string    `json:"walletId"`
	Price                string    `json:"price"`
	StakeWeightedSeconds float64   `json:"stakeWeightedSeconds"`
	Status               BidStatus `json:"status"`
	Signature            string    `json:"signature,omitempty"`
	ChainID              string    `json:"chainId"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// BidFilter selects bids; zero-valued fields are not applied.
type BidFilter struct {
	ProfileID string
	UserID    string
	WalletID  string
	Status    BidStatus
	ChainID   string
}
