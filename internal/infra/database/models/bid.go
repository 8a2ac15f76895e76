package models

import (
	"time"

	"github.com/mintworks/relaygraph/internal/domain"
)

type Bid struct {
	ID                   string    `json:"id" gorm:"primaryKey;type:text"`
	ProfileID            string    `json:"profileId" gorm:"type:text;not null;index:idx_bid_profile_user,priority:1"`
	UserID               string    `json:"userId" gorm:"type:text;not null;index:idx_bid_profile_user,priority:2"`
	WalletID             string    `json:"walletId" gorm:"type:text;not null"`
	Price                string    `json:"price" gorm:"type:numeric(78,0);not null"`
	StakeWeightedSeconds float64   `json:"stakeWeightedSeconds" gorm:"type:double precision;not null;default:0"`
	Status               string    `json:"status" gorm:"type:text;not null;default:'Submitted'"`
	Signature            string    `json:"signature" gorm:"type:text"`
	ChainID              string    `json:"chainId" gorm:"type:text"`
	CreatedAt            time.Time `json:"createdAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt            time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

func (b Bid) ToDomain() domain.Bid {
	return domain.Bid{
		ID:                   b.ID,
		ProfileID:            b.ProfileID,
		UserID:               b.UserID,
		WalletID:             b.WalletID,
		Price:                b.Price,
		StakeWeightedSeconds: b.StakeWeightedSeconds,
		Status:               domain.BidStatus(b.Status),
		Signature:            b.Signature,
		ChainID:              b.ChainID,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}

func BidFromDomain(b domain.Bid) Bid {
	return Bid{
		ID:                   b.ID,
		ProfileID:            b.ProfileID,
		UserID:               b.UserID,
		WalletID:             b.WalletID,
		Price:                b.Price,
		StakeWeightedSeconds: b.StakeWeightedSeconds,
		Status:               string(b.Status),
		Signature:            b.Signature,
		ChainID:              b.ChainID,
	}
}
