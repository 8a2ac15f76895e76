package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/mintworks/relaygraph/internal/domain"
	"github.com/mintworks/relaygraph/internal/infra/database/models"
)

const topBidCacheTTL = 60 // seconds

type BidRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewBidRepository(db *gorm.DB, mc *memcache.Client) *BidRepository {
	return &BidRepository{db: db, mc: mc}
}

// FindRecentByProfileUser returns the bidder's current lineage row for
// a profile, or NotFoundError when the bidder has never staked.
func (r *BidRepository) FindRecentByProfileUser(ctx context.Context, profileID, userID string) (domain.Bid, error) {
	var row models.Bid
	err := r.db.WithContext(ctx).
		Where("profile_id = ? AND user_id = ?", profileID, userID).
		Order("updated_at DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Bid{}, domain.NotFoundError{Resource: "bid"}
	}
	if err != nil {
		return domain.Bid{}, errors.Wrap(err, "finding recent bid")
	}
	return row.ToDomain(), nil
}

// Save upserts the bid lineage row: a bid with an id updates in place,
// one without starts a new lineage.
func (r *BidRepository) Save(ctx context.Context, bid domain.Bid) (domain.Bid, error) {
	row := models.BidFromDomain(bid)
	if row.ID == "" {
		row.ID = uuid.NewString()
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return domain.Bid{}, errors.Wrap(err, "creating bid")
		}
	} else {
		res := r.db.WithContext(ctx).Model(&models.Bid{}).
			Where("id = ?", row.ID).
			Updates(map[string]any{
				"price":                  row.Price,
				"stake_weighted_seconds": row.StakeWeightedSeconds,
				"status":                 row.Status,
				"signature":              row.Signature,
				"wallet_id":              row.WalletID,
				"updated_at":             time.Now(),
			})
		if res.Error != nil {
			return domain.Bid{}, errors.Wrap(res.Error, "updating bid")
		}
		if res.RowsAffected == 0 {
			return domain.Bid{}, domain.NotFoundError{Resource: "bid", ID: row.ID}
		}
	}

	r.invalidateTopBid(bid.ProfileID)

	var saved models.Bid
	if err := r.db.WithContext(ctx).Where("id = ?", row.ID).Take(&saved).Error; err != nil {
		return domain.Bid{}, errors.Wrap(err, "reloading bid")
	}
	return saved.ToDomain(), nil
}

// FindTopBidByProfile returns the highest-ranked live bid: weighted
// seconds first, then price, earliest creation breaking ties.
func (r *BidRepository) FindTopBidByProfile(ctx context.Context, profileID string) (domain.Bid, error) {
	if cached, ok := r.topBidCacheGet(profileID); ok {
		return cached, nil
	}

	var row models.Bid
	err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("stake_weighted_seconds DESC, price DESC, created_at ASC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Bid{}, domain.NotFoundError{Resource: "bid"}
	}
	if err != nil {
		return domain.Bid{}, errors.Wrap(err, "finding top bid")
	}

	bid := row.ToDomain()
	r.topBidCacheSet(profileID, bid)
	return bid, nil
}

// Find returns bids matching the filter in top-bid rank order.
func (r *BidRepository) Find(ctx context.Context, filter domain.BidFilter) ([]domain.Bid, error) {
	q := r.db.WithContext(ctx).Model(&models.Bid{})
	if filter.ProfileID != "" {
		q = q.Where("profile_id = ?", filter.ProfileID)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.WalletID != "" {
		q = q.Where("wallet_id = ?", filter.WalletID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.ChainID != "" {
		q = q.Where("chain_id = ?", filter.ChainID)
	}

	var rows []models.Bid
	err := q.Order("stake_weighted_seconds DESC, price DESC, created_at ASC").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding bids")
	}
	bids := make([]domain.Bid, 0, len(rows))
	for _, row := range rows {
		bids = append(bids, row.ToDomain())
	}
	return bids, nil
}

func topBidKey(profileID string) string {
	return fmt.Sprintf("topbid:%s", profileID)
}

func (r *BidRepository) topBidCacheGet(profileID string) (domain.Bid, bool) {
	if r.mc == nil {
		return domain.Bid{}, false
	}
	item, err := r.mc.Get(topBidKey(profileID))
	if err != nil {
		return domain.Bid{}, false
	}
	var bid domain.Bid
	if err := json.Unmarshal(item.Value, &bid); err != nil {
		return domain.Bid{}, false
	}
	return bid, true
}

func (r *BidRepository) topBidCacheSet(profileID string, bid domain.Bid) {
	if r.mc == nil {
		return
	}
	raw, err := json.Marshal(bid)
	if err != nil {
		return
	}
	r.mc.Set(&memcache.Item{
		Key:        topBidKey(profileID),
		Value:      raw,
		Expiration: topBidCacheTTL,
	})
}

func (r *BidRepository) invalidateTopBid(profileID string) {
	if r.mc == nil {
		return
	}
	r.mc.Delete(topBidKey(profileID))
}
