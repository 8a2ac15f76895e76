package usecase

import (
	"context"
	"time"

	"github.com/mintworks/relaygraph/internal/domain"
)

// ActivityRepository defines storage operations for the activity
// ledger.
type ActivityRepository interface {
	Upsert(ctx context.Context, n domain.NormalizedActivity) (domain.Activity, error)
	Find(ctx context.Context, filter domain.ActivityFilter, now time.Time) ([]domain.Activity, error)
	FindByActivityTypeID(ctx context.Context, activityTypeID string) (domain.Activity, error)
	UpdateStatusByIDs(ctx context.Context, ids []string, status domain.ActivityStatus) (domain.BatchResult, error)
	UpdateReadByIDs(ctx context.Context, ids []string) (domain.BatchResult, error)
	FindOrphans(ctx context.Context) ([]domain.ConsistencyError, error)
}

type ActivityUsecase struct {
	repo ActivityRepository
	now  func() time.Time
}

func NewActivityUsecase(repo ActivityRepository) *ActivityUsecase {
	return &ActivityUsecase{repo: repo, now: time.Now}
}

// GetActivities returns one page of the filtered ledger, newest first.
// Address filters are checksummed before querying because the ledger
// stores every address in EIP-55 form.
func (uc *ActivityUsecase) GetActivities(ctx context.Context, filter domain.ActivityFilter, page domain.PageInput) (domain.Pageable[domain.Activity], error) {
	ctx, span := tracer.Start(ctx, "Activity.Usecase.GetActivities")
	defer span.End()

	filter.WalletAddress = domain.ChecksumAddress(filter.WalletAddress)
	filter.NFTContract = domain.ChecksumAddress(filter.NFTContract)

	activities, err := uc.repo.Find(ctx, filter, uc.now())
	if err != nil {
		span.RecordError(err)
		return domain.Pageable[domain.Activity]{}, err
	}
	return domain.Paginate(activities, page), nil
}

// UpdateStatusByIDs flips the named activities to a terminal status.
// Valid is not a legal target: records become Valid only through
// ingestion. Partial failure is reported per id, not as an error.
func (uc *ActivityUsecase) UpdateStatusByIDs(ctx context.Context, ids []string, status domain.ActivityStatus) (domain.BatchResult, error) {
	ctx, span := tracer.Start(ctx, "Activity.Usecase.UpdateStatusByIDs")
	defer span.End()

	if len(ids) == 0 {
		err := domain.InvalidInputError{Reason: "no activity ids supplied"}
		span.RecordError(err)
		return domain.BatchResult{}, err
	}
	if status != domain.ActivityStatusExecuted && status != domain.ActivityStatusCancelled {
		err := domain.InvalidInputError{Reason: "status " + string(status) + " is not a valid transition target"}
		span.RecordError(err)
		return domain.BatchResult{}, err
	}

	result, err := uc.repo.UpdateStatusByIDs(ctx, ids, status)
	if err != nil {
		span.RecordError(err)
		return domain.BatchResult{}, err
	}
	return result, nil
}

// MarkRead flags the named activities read, stamping when. Already-read
// ids land in the failed list.
func (uc *ActivityUsecase) MarkRead(ctx context.Context, ids []string) (domain.BatchResult, error) {
	ctx, span := tracer.Start(ctx, "Activity.Usecase.MarkRead")
	defer span.End()

	if len(ids) == 0 {
		err := domain.InvalidInputError{Reason: "no activity ids supplied"}
		span.RecordError(err)
		return domain.BatchResult{}, err
	}

	result, err := uc.repo.UpdateReadByIDs(ctx, ids)
	if err != nil {
		span.RecordError(err)
		return domain.BatchResult{}, err
	}
	return result, nil
}

// CheckConsistency reports activities missing their satellite and
// satellites missing their activity.
func (uc *ActivityUsecase) CheckConsistency(ctx context.Context) ([]domain.ConsistencyError, error) {
	ctx, span := tracer.Start(ctx, "Activity.Usecase.CheckConsistency")
	defer span.End()

	return uc.repo.FindOrphans(ctx)
}
