package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mintworks/relaygraph/internal/domain"
)

type Edge struct {
	ID             string         `json:"id" gorm:"primaryKey;type:text"`
	CollectionID   string         `json:"collectionId" gorm:"type:text;index"`
	ThisEntityType string         `json:"thisEntityType" gorm:"type:text;not null"`
	ThisEntityID   string         `json:"thisEntityId" gorm:"type:text;not null;index:idx_edge_this,priority:1"`
	ThatEntityType string         `json:"thatEntityType" gorm:"type:text;not null"`
	ThatEntityID   string         `json:"thatEntityId" gorm:"type:text;not null;index:idx_edge_that,priority:1"`
	EdgeType       string         `json:"edgeType" gorm:"type:text;not null;index:idx_edge_this,priority:2;index:idx_edge_that,priority:2"`
	Weight         string         `json:"weight" gorm:"type:text"`
	Hide           bool           `json:"hide" gorm:"type:boolean;not null;default:false"`
	DeletedBy      string         `json:"deletedBy" gorm:"type:text"`
	CreatedAt      time.Time      `json:"createdAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt      time.Time      `json:"updatedAt" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	DeletedAt      gorm.DeletedAt `json:"deletedAt" gorm:"index"`
}

func (e Edge) ToDomain() domain.Edge {
	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}
	return domain.Edge{
		ID:             e.ID,
		CollectionID:   e.CollectionID,
		ThisEntityType: domain.EntityType(e.ThisEntityType),
		ThisEntityID:   e.ThisEntityID,
		ThatEntityType: domain.EntityType(e.ThatEntityType),
		ThatEntityID:   e.ThatEntityID,
		EdgeType:       domain.EdgeType(e.EdgeType),
		Weight:         e.Weight,
		Hidden:         e.Hide,
		DeletedBy:      e.DeletedBy,
		DeletedAt:      deletedAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func EdgeFromDomain(e domain.Edge) Edge {
	return Edge{
		ID:             e.ID,
		CollectionID:   e.CollectionID,
		ThisEntityType: string(e.ThisEntityType),
		ThisEntityID:   e.ThisEntityID,
		ThatEntityType: string(e.ThatEntityType),
		ThatEntityID:   e.ThatEntityID,
		EdgeType:       string(e.EdgeType),
		Weight:         e.Weight,
		Hide:           e.Hidden,
		DeletedBy:      e.DeletedBy,
	}
}
