package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/zeebo/xxh3"

	"github.com/mintworks/relaygraph/internal/domain"
	"github.com/mintworks/relaygraph/internal/ingest"
)

const (
	recentPayloadTTL     = 2 * time.Minute
	recentPayloadCleanup = 5 * time.Minute
)

// IngestItem is one raw payload submitted for normalization.
type IngestItem struct {
	ActivityType domain.ActivityType `json:"activityType"`
	ChainID      string              `json:"chainId"`
	Payload      json.RawMessage     `json:"payload"`
}

// IngestItemResult reports one item's outcome. Err is empty on
// success.
type IngestItemResult struct {
	ActivityTypeID string `json:"activityTypeId,omitempty"`
	Skipped        bool   `json:"skipped,omitempty"`
	Err            string `json:"error,omitempty"`
}

type IngestUsecase struct {
	normalizer *ingest.Normalizer
	repo       ActivityRepository
	// recent memoizes payload hashes so identical payloads re-polled
	// within the TTL skip the upsert entirely
	recent *cache.Cache
}

func NewIngestUsecase(normalizer *ingest.Normalizer, repo ActivityRepository) *IngestUsecase {
	return &IngestUsecase{
		normalizer: normalizer,
		repo:       repo,
		recent:     cache.New(recentPayloadTTL, recentPayloadCleanup),
	}
}

func payloadKey(protocol domain.ProtocolType, item IngestItem) string {
	return fmt.Sprintf("%s:%s:%x", protocol, item.ActivityType, xxh3.Hash(item.Payload))
}

// Ingest normalizes and upserts a batch of payloads for one protocol.
// Items fail independently; one malformed payload never blocks the
// rest of the batch.
func (uc *IngestUsecase) Ingest(ctx context.Context, protocol domain.ProtocolType, items []IngestItem) ([]IngestItemResult, error) {
	ctx, span := tracer.Start(ctx, "Ingest.Usecase.Ingest")
	defer span.End()

	if len(items) == 0 {
		err := domain.InvalidInputError{Reason: "no payloads supplied"}
		span.RecordError(err)
		return nil, err
	}

	results := make([]IngestItemResult, 0, len(items))
	for _, item := range items {
		key := payloadKey(protocol, item)
		if _, seen := uc.recent.Get(key); seen {
			results = append(results, IngestItemResult{Skipped: true})
			continue
		}

		normalized, err := uc.normalizer.Normalize(protocol, item.ActivityType, item.Payload, item.ChainID)
		if err != nil {
			span.RecordError(err)
			results = append(results, IngestItemResult{Err: err.Error()})
			continue
		}

		activity, err := uc.repo.Upsert(ctx, normalized)
		if err != nil {
			span.RecordError(err)
			results = append(results, IngestItemResult{
				ActivityTypeID: normalized.Activity.ActivityTypeID,
				Err:            err.Error(),
			})
			continue
		}

		uc.recent.Set(key, struct{}{}, cache.DefaultExpiration)
		results = append(results, IngestItemResult{ActivityTypeID: activity.ActivityTypeID})
	}
	return results, nil
}
