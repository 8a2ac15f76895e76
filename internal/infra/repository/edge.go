package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/mintworks/relaygraph/internal/domain"
	"github.com/mintworks/relaygraph/internal/infra/database/models"
)

const sortedListingCachePrefix = "listing:sorted"

type EdgeRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewEdgeRepository(db *gorm.DB, rdb *redis.Client) *EdgeRepository {
	return &EdgeRepository{db: db, rdb: rdb}
}

func (r *EdgeRepository) filtered(db *gorm.DB, filter domain.EdgeFilter) *gorm.DB {
	q := db.Model(&models.Edge{})
	if filter.IncludeDeleted {
		q = q.Unscoped()
	}
	if filter.ID != "" {
		q = q.Where("id = ?", filter.ID)
	}
	if filter.CollectionID != "" {
		q = q.Where("collection_id = ?", filter.CollectionID)
	}
	if filter.ThisEntityType != "" {
		q = q.Where("this_entity_type = ?", string(filter.ThisEntityType))
	}
	if filter.ThisEntityID != "" {
		q = q.Where("this_entity_id = ?", filter.ThisEntityID)
	}
	if filter.ThatEntityType != "" {
		q = q.Where("that_entity_type = ?", string(filter.ThatEntityType))
	}
	if filter.ThatEntityID != "" {
		q = q.Where("that_entity_id = ?", filter.ThatEntityID)
	}
	if filter.EdgeType != "" {
		q = q.Where("edge_type = ?", string(filter.EdgeType))
	}
	if !filter.IncludeHidden {
		q = q.Where("hide = ?", false)
	}
	return q
}

// Create inserts one edge. Orderable edge types get an appended weight
// when none is supplied; the append reads the partition maximum inside
// the same transaction.
func (r *EdgeRepository) Create(ctx context.Context, edge domain.Edge) (domain.Edge, error) {
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}

	row := models.EdgeFromDomain(edge)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if row.Weight == "" && edge.EdgeType.Orderable() {
			max, err := r.maxWeight(tx, edge.ThisEntityID, edge.EdgeType)
			if err != nil {
				return err
			}
			row.Weight = domain.NextWeight(max)
		}
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ConflictError{Resource: "edge", Detail: row.ID}
			}
			return errors.Wrap(err, "creating edge")
		}
		return nil
	})
	if err != nil {
		return domain.Edge{}, err
	}

	r.invalidateListing(ctx, edge.ThisEntityID, edge.EdgeType)
	return row.ToDomain(), nil
}

func (r *EdgeRepository) maxWeight(tx *gorm.DB, thisEntityID string, edgeType domain.EdgeType) (string, error) {
	var row models.Edge
	err := tx.
		Where("this_entity_id = ? AND edge_type = ?", thisEntityID, string(edgeType)).
		Order("weight DESC").
		Limit(1).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "querying max weight")
	}
	return row.Weight, nil
}

func (r *EdgeRepository) Find(ctx context.Context, filter domain.EdgeFilter) ([]domain.Edge, error) {
	var rows []models.Edge
	err := r.filtered(r.db.WithContext(ctx), filter).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding edges")
	}
	edges := make([]domain.Edge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, row.ToDomain())
	}
	return edges, nil
}

// ListOrdered returns the live edges of one orderable partition sorted
// by weight ascending.
func (r *EdgeRepository) ListOrdered(ctx context.Context, thisEntityID string, edgeType domain.EdgeType) ([]domain.Edge, error) {
	var rows []models.Edge
	err := r.db.WithContext(ctx).
		Where("this_entity_id = ? AND edge_type = ?", thisEntityID, string(edgeType)).
		Order("weight ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "listing ordered edges")
	}
	edges := make([]domain.Edge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, row.ToDomain())
	}
	return edges, nil
}

func (r *EdgeRepository) Exists(ctx context.Context, filter domain.EdgeFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *EdgeRepository) Count(ctx context.Context, filter domain.EdgeFilter) (int64, error) {
	var count int64
	err := r.filtered(r.db.WithContext(ctx), filter).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "counting edges")
	}
	return count, nil
}

func (r *EdgeRepository) UpdateWeight(ctx context.Context, edgeID string, weight string) error {
	res := r.db.WithContext(ctx).Model(&models.Edge{}).
		Where("id = ?", edgeID).
		Update("weight", weight)
	if res.Error != nil {
		return errors.Wrap(res.Error, "updating edge weight")
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "edge", ID: edgeID}
	}
	return nil
}

// SoftDelete marks matching edges deleted; subsequent reads exclude
// them by default. The attribution update and the delete run in one
// transaction so a row can never be deleted without its deleted_by.
func (r *EdgeRepository) SoftDelete(ctx context.Context, filter domain.EdgeFilter, deletedBy string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if deletedBy != "" {
			if err := r.filtered(tx, filter).Update("deleted_by", deletedBy).Error; err != nil {
				return errors.Wrap(err, "recording deleted_by")
			}
		}
		res := r.filtered(tx, filter).Delete(&models.Edge{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "soft deleting edges")
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// HardDelete purges rows irreversibly. Maintenance and test teardown
// only.
func (r *EdgeRepository) HardDelete(ctx context.Context, filter domain.EdgeFilter) (int64, error) {
	filter.IncludeDeleted = true
	filter.IncludeHidden = true
	res := r.filtered(r.db.WithContext(ctx), filter).Delete(&models.Edge{})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "hard deleting edges")
	}
	return res.RowsAffected, nil
}

// Reparent points every live edge of edgeType from one source entity
// at another, in bulk. Used when de-duplicating collections.
func (r *EdgeRepository) Reparent(ctx context.Context, fromThisID, toThisID string, edgeType domain.EdgeType) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Edge{}).
		Where("this_entity_id = ? AND edge_type = ?", fromThisID, string(edgeType)).
		Updates(map[string]any{
			"this_entity_id": toThisID,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "reparenting edges")
	}
	r.invalidateListing(ctx, fromThisID, edgeType)
	r.invalidateListing(ctx, toThisID, edgeType)
	return res.RowsAffected, nil
}

// InvalidateListing drops the cached sorted listing for a partition.
// Called after reorders and rebalances that bypass Create.
func (r *EdgeRepository) InvalidateListing(ctx context.Context, thisEntityID string, edgeType domain.EdgeType) {
	r.invalidateListing(ctx, thisEntityID, edgeType)
}

func (r *EdgeRepository) invalidateListing(ctx context.Context, thisEntityID string, edgeType domain.EdgeType) {
	if r.rdb == nil || !edgeType.Orderable() {
		return
	}
	key := fmt.Sprintf("%s:%s:%s", sortedListingCachePrefix, string(edgeType), thisEntityID)
	// cache invalidation is best effort
	r.rdb.Del(ctx, key)
}
