package domain

import "time"

// EntityType identifies which feature-owned table an entity reference
// points into. The graph never dereferences the payload, only the id.
type EntityType string

const (
	EntityTypeUser       EntityType = "User"
	EntityTypeWallet     EntityType = "Wallet"
	EntityTypeProfile    EntityType = "Profile"
	EntityTypeNFT        EntityType = "NFT"
	EntityTypeCollection EntityType = "Collection"
	EntityTypeCuration   EntityType = "Curation"
)

// EdgeType is the closed set of relations the graph supports.
type EdgeType string

const (
	EdgeTypeIncludes EdgeType = "Includes"
	EdgeTypeDisplays EdgeType = "Displays"
	EdgeTypeFollows  EdgeType = "Follows"
	EdgeTypeWatches  EdgeType = "Watches"
	EdgeTypeReferred EdgeType = "Referred"
)

// Orderable reports whether edges of this type carry a user-controlled
// weight key.
func (t EdgeType) Orderable() bool {
	return t == EdgeTypeDisplays
}

// Edge is a directed, typed relation between two entity references.
type Edge struct {
	ID             string     `json:"id"`
	CollectionID   string     `json:"collectionId,omitempty"`
	ThisEntityType EntityType `json:"thisEntityType"`
	ThisEntityID   string     `json:"thisEntityId"`
	ThatEntityType EntityType `json:"thatEntityType"`
	ThatEntityID   string     `json:"thatEntityId"`
	EdgeType       EdgeType   `json:"edgeType"`
	Weight         string     `json:"weight,omitempty"`
	Hidden         bool       `json:"hidden"`
	DeletedBy      string     `json:"deletedBy,omitempty"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// EdgeFilter selects edges. Zero-valued fields are not applied.
// Soft-deleted rows are excluded unless IncludeDeleted is set, hidden
// rows are excluded unless IncludeHidden is set.
type EdgeFilter struct {
	ID             string
	CollectionID   string
	ThisEntityType EntityType
	ThisEntityID   string
	ThatEntityType EntityType
	ThatEntityID   string
	EdgeType       EdgeType
	IncludeHidden  bool
	IncludeDeleted bool
}
