package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/zeebo/xxh3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mintworks/relaygraph/internal/domain"
	"github.com/mintworks/relaygraph/internal/infra/database/models"
)

const (
	activityCacheVersionKey = "activities:ver"
	activityCacheTTL        = time.Minute
)

type ActivityRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewActivityRepository(db *gorm.DB, rdb *redis.Client) *ActivityRepository {
	return &ActivityRepository{db: db, rdb: rdb}
}

// Upsert writes an activity and its satellite together. The conflict
// target is activity_type_id, which makes re-polled payloads update in
// place instead of duplicating; the satellite write follows the
// activity write inside one transaction.
func (r *ActivityRepository) Upsert(ctx context.Context, n domain.NormalizedActivity) (domain.Activity, error) {
	if n.Order == nil && n.Transaction == nil && n.Cancel == nil {
		return domain.Activity{}, domain.ConsistencyError{
			ActivityID: n.Activity.ID,
			Detail:     "normalized activity carries no satellite",
		}
	}

	row := models.ActivityFromDomain(n.Activity)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "activity_type_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"timestamp":    row.Timestamp,
				"expiration":   row.Expiration,
				"nft_contract": row.NFTContract,
				"nft_id":       row.NFTID,
				"updated_at":   time.Now(),
			}),
		}).Create(&row).Error; err != nil {
			return errors.Wrap(err, "upserting activity")
		}

		// re-read: on conflict the original row id wins
		if err := tx.Where("activity_type_id = ?", row.ActivityTypeID).Take(&row).Error; err != nil {
			return errors.Wrap(err, "reloading upserted activity")
		}

		switch {
		case n.Order != nil:
			sat := models.OrderFromDomain(*n.Order)
			sat.ActivityID = row.ID
			return errors.Wrap(tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"protocol_data": sat.ProtocolData,
					"taker_address": sat.TakerAddress,
					"updated_at":    time.Now(),
				}),
			}).Create(&sat).Error, "upserting order satellite")
		case n.Transaction != nil:
			sat := models.TransactionFromDomain(*n.Transaction)
			sat.ActivityID = row.ID
			return errors.Wrap(tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"protocol_data": sat.ProtocolData,
					"updated_at":    time.Now(),
				}),
			}).Create(&sat).Error, "upserting transaction satellite")
		default:
			sat := models.CancelFromDomain(*n.Cancel)
			sat.ActivityID = row.ID
			return errors.Wrap(tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoNothing: true,
			}).Create(&sat).Error, "upserting cancel satellite")
		}
	})
	if err != nil {
		return domain.Activity{}, err
	}

	r.bumpCacheVersion(ctx)
	return row.ToDomain(), nil
}

func (r *ActivityRepository) filtered(db *gorm.DB, filter domain.ActivityFilter, now time.Time) *gorm.DB {
	q := db.Model(&models.TxActivity{})

	status := filter.Status
	if status == "" {
		status = domain.ActivityStatusValid
	}
	q = q.Where("status = ?", string(status))

	switch {
	case filter.ActivityType == domain.ActivityTypePurchase:
		// a purchase is a sale seen from the taker side: match the
		// wallet against the transaction's taker instead of the
		// activity's maker-side wallet
		q = q.Where("activity_type = ?", string(domain.ActivityTypeSale))
		if filter.WalletAddress != "" {
			q = q.Where("activity_type_id IN (?)",
				r.db.Model(&models.TxTransaction{}).Select("id").Where("taker = ?", filter.WalletAddress))
		}
	case filter.ActivityType != "":
		q = q.Where("activity_type = ?", string(filter.ActivityType))
		if filter.WalletAddress != "" {
			q = q.Where("wallet_address = ?", filter.WalletAddress)
		}
	case filter.WalletAddress != "":
		q = q.Where("wallet_address = ?", filter.WalletAddress)
	}
	if filter.NFTContract != "" {
		q = q.Where("nft_contract = ?", filter.NFTContract)
	}
	if filter.NFTID != "" {
		q = q.Where("nft_id @> ?", models.ActivityFromDomain(domain.Activity{NFTID: []string{filter.NFTID}}).NFTID)
	}
	if filter.ChainID != "" {
		q = q.Where("chain_id = ?", filter.ChainID)
	}
	if filter.Read != nil {
		q = q.Where("read = ?", *filter.Read)
	}

	// an unset window means Active; rows without an expiration only
	// surface under Both
	switch filter.ExpirationType {
	case domain.ExpirationTypeExpired:
		q = q.Where("expiration <= ?", now)
	case domain.ExpirationTypeBoth:
	default:
		q = q.Where("expiration > ?", now)
	}
	return q
}

// Find returns the full filtered set sorted by timestamp descending,
// satellites attached. Results are cached briefly; any ledger write
// bumps the cache version.
func (r *ActivityRepository) Find(ctx context.Context, filter domain.ActivityFilter, now time.Time) ([]domain.Activity, error) {
	cacheKey := r.cacheKey(ctx, filter)
	if cached, ok := r.cacheGet(ctx, cacheKey); ok {
		return cached, nil
	}

	var rows []models.TxActivity
	err := r.filtered(r.db.WithContext(ctx), filter, now).
		Order("timestamp DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding activities")
	}

	activities := make([]domain.Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, row.ToDomain())
	}
	if err := r.attachSatellites(ctx, activities); err != nil {
		return nil, err
	}

	r.cacheSet(ctx, cacheKey, activities)
	return activities, nil
}

func (r *ActivityRepository) attachSatellites(ctx context.Context, activities []domain.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	byTypeID := make(map[string]*domain.Activity, len(activities))
	ids := make([]string, 0, len(activities))
	for i := range activities {
		byTypeID[activities[i].ActivityTypeID] = &activities[i]
		ids = append(ids, activities[i].ActivityTypeID)
	}

	var orders []models.TxOrder
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&orders).Error; err != nil {
		return errors.Wrap(err, "loading order satellites")
	}
	for _, row := range orders {
		if a, ok := byTypeID[row.ID]; ok {
			o := row.ToDomain()
			a.Order = &o
		}
	}

	var txs []models.TxTransaction
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&txs).Error; err != nil {
		return errors.Wrap(err, "loading transaction satellites")
	}
	for _, row := range txs {
		if a, ok := byTypeID[row.ID]; ok {
			t := row.ToDomain()
			a.Transaction = &t
		}
	}

	var cancels []models.TxCancel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cancels).Error; err != nil {
		return errors.Wrap(err, "loading cancel satellites")
	}
	for _, row := range cancels {
		if a, ok := byTypeID[row.ID]; ok {
			c := row.ToDomain()
			a.Cancel = &c
		}
	}
	return nil
}

// FindByActivityTypeID returns one activity by its derived id.
func (r *ActivityRepository) FindByActivityTypeID(ctx context.Context, activityTypeID string) (domain.Activity, error) {
	var row models.TxActivity
	err := r.db.WithContext(ctx).
		Where("activity_type_id = ?", activityTypeID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Activity{}, domain.NotFoundError{Resource: "activity", ID: activityTypeID}
	}
	if err != nil {
		return domain.Activity{}, errors.Wrap(err, "finding activity")
	}
	activity := row.ToDomain()
	activities := []domain.Activity{activity}
	if err := r.attachSatellites(ctx, activities); err != nil {
		return domain.Activity{}, err
	}
	return activities[0], nil
}

// UpdateStatusByIDs flips activity statuses one id at a time; the
// result splits successes from ids that were missing or already
// terminal. One bad id never fails the batch.
func (r *ActivityRepository) UpdateStatusByIDs(ctx context.Context, ids []string, status domain.ActivityStatus) (domain.BatchResult, error) {
	result := domain.BatchResult{
		UpdatedIDsSuccess:   []string{},
		IDsNotFoundOrFailed: []string{},
	}
	for _, id := range ids {
		res := r.db.WithContext(ctx).Model(&models.TxActivity{}).
			Where("id = ? AND status = ?", id, string(domain.ActivityStatusValid)).
			Updates(map[string]any{
				"status":     string(status),
				"updated_at": time.Now(),
			})
		if res.Error != nil || res.RowsAffected == 0 {
			result.IDsNotFoundOrFailed = append(result.IDsNotFoundOrFailed, id)
			continue
		}
		result.UpdatedIDsSuccess = append(result.UpdatedIDsSuccess, id)
	}
	r.bumpCacheVersion(ctx)
	return result, nil
}

// UpdateReadByIDs marks unread activities read, stamping the read
// time. Same partial-success contract as UpdateStatusByIDs.
func (r *ActivityRepository) UpdateReadByIDs(ctx context.Context, ids []string) (domain.BatchResult, error) {
	result := domain.BatchResult{
		UpdatedIDsSuccess:   []string{},
		IDsNotFoundOrFailed: []string{},
	}
	now := time.Now()
	for _, id := range ids {
		res := r.db.WithContext(ctx).Model(&models.TxActivity{}).
			Where("id = ? AND read = ?", id, false).
			Updates(map[string]any{
				"read":           true,
				"read_timestamp": now,
				"updated_at":     now,
			})
		if res.Error != nil || res.RowsAffected == 0 {
			result.IDsNotFoundOrFailed = append(result.IDsNotFoundOrFailed, id)
			continue
		}
		result.UpdatedIDsSuccess = append(result.UpdatedIDsSuccess, id)
	}
	r.bumpCacheVersion(ctx)
	return result, nil
}

// FindOrphans reports activities without a satellite and satellites
// without an activity. Detection only; repair is a separate decision.
func (r *ActivityRepository) FindOrphans(ctx context.Context) ([]domain.ConsistencyError, error) {
	var violations []domain.ConsistencyError

	var orphanActivities []models.TxActivity
	err := r.db.WithContext(ctx).
		Where(`activity_type_id NOT IN (SELECT id FROM tx_orders)
			AND activity_type_id NOT IN (SELECT id FROM tx_transactions)
			AND activity_type_id NOT IN (SELECT id FROM tx_cancels)`).
		Find(&orphanActivities).Error
	if err != nil {
		return nil, errors.Wrap(err, "finding orphan activities")
	}
	for _, row := range orphanActivities {
		violations = append(violations, domain.ConsistencyError{
			ActivityID: row.ID,
			Detail:     "activity has no satellite",
		})
	}

	for _, table := range []string{"tx_orders", "tx_transactions", "tx_cancels"} {
		var orphanIDs []string
		err := r.db.WithContext(ctx).
			Raw(fmt.Sprintf("SELECT id FROM %s WHERE id NOT IN (SELECT activity_type_id FROM tx_activities)", table)).
			Scan(&orphanIDs).Error
		if err != nil {
			return nil, errors.Wrapf(err, "finding orphan rows in %s", table)
		}
		for _, id := range orphanIDs {
			violations = append(violations, domain.ConsistencyError{
				ActivityID: id,
				Detail:     fmt.Sprintf("%s satellite has no activity", table),
			})
		}
	}
	return violations, nil
}

func (r *ActivityRepository) cacheKey(ctx context.Context, filter domain.ActivityFilter) string {
	if r.rdb == nil {
		return ""
	}
	version, _ := r.rdb.Get(ctx, activityCacheVersionKey).Int64()
	raw, err := json.Marshal(filter)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("activities:v%d:%x", version, xxh3.Hash(raw))
}

func (r *ActivityRepository) cacheGet(ctx context.Context, key string) ([]domain.Activity, bool) {
	if r.rdb == nil || key == "" {
		return nil, false
	}
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var activities []domain.Activity
	if err := json.Unmarshal(raw, &activities); err != nil {
		return nil, false
	}
	return activities, true
}

func (r *ActivityRepository) cacheSet(ctx context.Context, key string, activities []domain.Activity) {
	if r.rdb == nil || key == "" {
		return
	}
	raw, err := json.Marshal(activities)
	if err != nil {
		return
	}
	r.rdb.Set(ctx, key, raw, activityCacheTTL)
}

func (r *ActivityRepository) bumpCacheVersion(ctx context.Context) {
	if r.rdb == nil {
		return
	}
	r.rdb.Incr(ctx, activityCacheVersionKey)
}
