package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/mintworks/relaygraph/internal/domain"
)

type TxActivity struct {
	ID             string         `json:"id" gorm:"primaryKey;type:text"`
	ActivityType   string         `json:"activityType" gorm:"type:text;not null;index:idx_activity_window,priority:1"`
	ActivityTypeID string         `json:"activityTypeId" gorm:"type:text;not null;uniqueIndex"`
	Status         string         `json:"status" gorm:"type:text;not null;default:'Valid';index:idx_activity_window,priority:2"`
	Read           bool           `json:"read" gorm:"type:boolean;not null;default:false"`
	ReadTimestamp  *time.Time     `json:"readTimestamp" gorm:"type:timestamp with time zone"`
	Timestamp      time.Time      `json:"timestamp" gorm:"type:timestamp with time zone;not null;index:idx_activity_wallet_ts,priority:2"`
	Expiration     *time.Time     `json:"expiration" gorm:"type:timestamp with time zone;index:idx_activity_window,priority:3"`
	WalletAddress  string         `json:"walletAddress" gorm:"type:text;not null;index:idx_activity_wallet_ts,priority:1"`
	NFTContract    string         `json:"nftContract" gorm:"type:text;not null;default:'0x';index"`
	NFTID          pq.StringArray `json:"nftId" gorm:"type:text[]"`
	ChainID        string         `json:"chainId" gorm:"type:text;index:idx_activity_window,priority:4"`
	CreatedAt      time.Time      `json:"createdAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt      time.Time      `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type TxOrder struct {
	ID           string    `json:"id" gorm:"primaryKey;type:text"`
	ActivityID   string    `json:"activityId" gorm:"type:text;not null;index"`
	OrderHash    string    `json:"orderHash" gorm:"type:text;not null;uniqueIndex"`
	OrderType    string    `json:"orderType" gorm:"type:text;not null"`
	Exchange     string    `json:"exchange" gorm:"type:text;not null;index:idx_order_maker,priority:2"`
	Protocol     string    `json:"protocol" gorm:"type:text;not null"`
	MakerAddress string    `json:"makerAddress" gorm:"type:text;not null;index:idx_order_maker,priority:1"`
	TakerAddress string    `json:"takerAddress" gorm:"type:text"`
	Nonce        int64     `json:"nonce" gorm:"type:bigint;index:idx_order_maker,priority:3"`
	Zone         string    `json:"zone" gorm:"type:text"`
	Memo         string    `json:"memo" gorm:"type:text"`
	ChainID      string    `json:"chainId" gorm:"type:text"`
	ProtocolData []byte    `json:"protocolData" gorm:"type:jsonb"`
	CreatedAt    time.Time `json:"createdAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type TxTransaction struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:text"`
	ActivityID         string    `json:"activityId" gorm:"type:text;not null;index"`
	TransactionHash    string    `json:"transactionHash" gorm:"type:text;not null;uniqueIndex"`
	TransactionType    string    `json:"transactionType" gorm:"type:text;not null"`
	BlockNumber        string    `json:"blockNumber" gorm:"type:text;not null"`
	Exchange           string    `json:"exchange" gorm:"type:text;not null"`
	Protocol           string    `json:"protocol" gorm:"type:text;not null"`
	Maker              string    `json:"maker" gorm:"type:text;not null"`
	Taker              string    `json:"taker" gorm:"type:text;not null;index"`
	NFTContractAddress string    `json:"nftContractAddress" gorm:"type:text"`
	NFTContractTokenID string    `json:"nftContractTokenId" gorm:"type:text"`
	EventType          string    `json:"eventType" gorm:"type:text;not null;default:'Default'"`
	ChainID            string    `json:"chainId" gorm:"type:text"`
	ProtocolData       []byte    `json:"protocolData" gorm:"type:jsonb"`
	CreatedAt          time.Time `json:"createdAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt          time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type TxCancel struct {
	ID              string    `json:"id" gorm:"primaryKey;type:text"`
	ActivityID      string    `json:"activityId" gorm:"type:text;not null;index"`
	TransactionHash string    `json:"transactionHash" gorm:"type:text;not null;uniqueIndex"`
	BlockNumber     string    `json:"blockNumber" gorm:"type:text"`
	Exchange        string    `json:"exchange" gorm:"type:text;not null"`
	ForeignType     string    `json:"foreignType" gorm:"type:text;not null"`
	ForeignKeyID    string    `json:"foreignKeyId" gorm:"type:text;not null;index"`
	ChainID         string    `json:"chainId" gorm:"type:text"`
	CreatedAt       time.Time `json:"createdAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt       time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

func (a TxActivity) ToDomain() domain.Activity {
	return domain.Activity{
		ID:             a.ID,
		ActivityType:   domain.ActivityType(a.ActivityType),
		ActivityTypeID: a.ActivityTypeID,
		Status:         domain.ActivityStatus(a.Status),
		Read:           a.Read,
		ReadTimestamp:  a.ReadTimestamp,
		Timestamp:      a.Timestamp,
		Expiration:     a.Expiration,
		WalletAddress:  a.WalletAddress,
		NFTContract:    a.NFTContract,
		NFTID:          []string(a.NFTID),
		ChainID:        a.ChainID,
	}
}

func ActivityFromDomain(a domain.Activity) TxActivity {
	return TxActivity{
		ID:             a.ID,
		ActivityType:   string(a.ActivityType),
		ActivityTypeID: a.ActivityTypeID,
		Status:         string(a.Status),
		Read:           a.Read,
		ReadTimestamp:  a.ReadTimestamp,
		Timestamp:      a.Timestamp,
		Expiration:     a.Expiration,
		WalletAddress:  a.WalletAddress,
		NFTContract:    a.NFTContract,
		NFTID:          pq.StringArray(a.NFTID),
		ChainID:        a.ChainID,
	}
}

func (o TxOrder) ToDomain() domain.Order {
	return domain.Order{
		ID:           o.ID,
		ActivityID:   o.ActivityID,
		OrderHash:    o.OrderHash,
		OrderType:    domain.ActivityType(o.OrderType),
		Exchange:     domain.ExchangeType(o.Exchange),
		Protocol:     domain.ProtocolType(o.Protocol),
		MakerAddress: o.MakerAddress,
		TakerAddress: o.TakerAddress,
		Nonce:        o.Nonce,
		Zone:         o.Zone,
		Memo:         o.Memo,
		ChainID:      o.ChainID,
		ProtocolData: o.ProtocolData,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func OrderFromDomain(o domain.Order) TxOrder {
	return TxOrder{
		ID:           o.ID,
		ActivityID:   o.ActivityID,
		OrderHash:    o.OrderHash,
		OrderType:    string(o.OrderType),
		Exchange:     string(o.Exchange),
		Protocol:     string(o.Protocol),
		MakerAddress: o.MakerAddress,
		TakerAddress: o.TakerAddress,
		Nonce:        o.Nonce,
		Zone:         o.Zone,
		Memo:         o.Memo,
		ChainID:      o.ChainID,
		ProtocolData: o.ProtocolData,
	}
}

func (t TxTransaction) ToDomain() domain.Transaction {
	return domain.Transaction{
		ID:                 t.ID,
		ActivityID:         t.ActivityID,
		TransactionHash:    t.TransactionHash,
		TransactionType:    domain.ActivityType(t.TransactionType),
		BlockNumber:        t.BlockNumber,
		Exchange:           domain.ExchangeType(t.Exchange),
		Protocol:           domain.ProtocolType(t.Protocol),
		Maker:              t.Maker,
		Taker:              t.Taker,
		NFTContractAddress: t.NFTContractAddress,
		NFTContractTokenID: t.NFTContractTokenID,
		EventType:          t.EventType,
		ChainID:            t.ChainID,
		ProtocolData:       t.ProtocolData,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func TransactionFromDomain(t domain.Transaction) TxTransaction {
	return TxTransaction{
		ID:                 t.ID,
		ActivityID:         t.ActivityID,
		TransactionHash:    t.TransactionHash,
		TransactionType:    string(t.TransactionType),
		BlockNumber:        t.BlockNumber,
		Exchange:           string(t.Exchange),
		Protocol:           string(t.Protocol),
		Maker:              t.Maker,
		Taker:              t.Taker,
		NFTContractAddress: t.NFTContractAddress,
		NFTContractTokenID: t.NFTContractTokenID,
		EventType:          t.EventType,
		ChainID:            t.ChainID,
		ProtocolData:       t.ProtocolData,
	}
}

func (c TxCancel) ToDomain() domain.Cancel {
	return domain.Cancel{
		ID:              c.ID,
		ActivityID:      c.ActivityID,
		TransactionHash: c.TransactionHash,
		BlockNumber:     c.BlockNumber,
		Exchange:        domain.ExchangeType(c.Exchange),
		ForeignType:     domain.ActivityType(c.ForeignType),
		ForeignKeyID:    c.ForeignKeyID,
		ChainID:         c.ChainID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func CancelFromDomain(c domain.Cancel) TxCancel {
	return TxCancel{
		ID:              c.ID,
		ActivityID:      c.ActivityID,
		TransactionHash: c.TransactionHash,
		BlockNumber:     c.BlockNumber,
		Exchange:        string(c.Exchange),
		ForeignType:     string(c.ForeignType),
		ForeignKeyID:    c.ForeignKeyID,
		ChainID:         c.ChainID,
	}
}
