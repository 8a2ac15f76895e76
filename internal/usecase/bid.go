package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/mintworks/relaygraph/internal/config"
	"github.com/mintworks/relaygraph/internal/domain"
)

// BidRepository defines storage operations for profile bid lineages.
type BidRepository interface {
	FindRecentByProfileUser(ctx context.Context, profileID, userID string) (domain.Bid, error)
	Save(ctx context.Context, bid domain.Bid) (domain.Bid, error)
	FindTopBidByProfile(ctx context.Context, profileID string) (domain.Bid, error)
	Find(ctx context.Context, filter domain.BidFilter) ([]domain.Bid, error)
}

type BidUsecase struct {
	repo      BidRepository
	blocklist config.Blocklist
	now       func() time.Time
}

func NewBidUsecase(repo BidRepository, blocklist config.Blocklist) *BidUsecase {
	return &BidUsecase{repo: repo, blocklist: blocklist, now: time.Now}
}

// stakeTokens converts a wei-denominated price string into whole
// tokens.
func stakeTokens(price string) (float64, bool) {
	wei, ok := new(big.Float).SetString(price)
	if !ok || wei.Sign() < 0 {
		return 0, false
	}
	scale := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(domain.TokenDecimals), nil))
	tokens, _ := new(big.Float).Quo(wei, scale).Float64()
	return tokens, true
}

// PlaceBid creates or refreshes the (profile, user) bid lineage. A
// re-bid first banks the stake earned since the previous update, at
// the previous price, then adopts the new price. Reducing the price
// keeps the seconds already banked.
func (uc *BidUsecase) PlaceBid(ctx context.Context, bid domain.Bid) (domain.Bid, error) {
	ctx, span := tracer.Start(ctx, "Bid.Usecase.PlaceBid")
	defer span.End()

	if bid.ProfileID == "" || bid.UserID == "" {
		err := domain.InvalidInputError{Reason: "profile and user are required"}
		span.RecordError(err)
		return domain.Bid{}, err
	}
	if uc.blocklist.Contains(bid.ProfileID) {
		err := domain.InvalidInputError{Reason: "profile " + bid.ProfileID + " is not biddable"}
		span.RecordError(err)
		return domain.Bid{}, err
	}
	if _, ok := stakeTokens(bid.Price); !ok {
		err := domain.InvalidInputError{Reason: "unparsable price " + bid.Price}
		span.RecordError(err)
		return domain.Bid{}, err
	}

	now := uc.now()

	prev, err := uc.repo.FindRecentByProfileUser(ctx, bid.ProfileID, bid.UserID)
	switch {
	case err == nil:
		tokens, ok := stakeTokens(prev.Price)
		if !ok {
			tokens = 0
		}
		elapsed := now.Sub(prev.UpdatedAt).Seconds()
		if elapsed < 0 {
			elapsed = 0
		}
		bid.ID = prev.ID
		bid.CreatedAt = prev.CreatedAt
		bid.StakeWeightedSeconds = prev.StakeWeightedSeconds + elapsed*tokens
	case errors.Is(err, domain.ErrNotFound):
		bid.StakeWeightedSeconds = 0
	default:
		span.RecordError(err)
		return domain.Bid{}, err
	}

	bid.Status = domain.BidStatusSubmitted
	bid.UpdatedAt = now

	saved, err := uc.repo.Save(ctx, bid)
	if err != nil {
		span.RecordError(err)
		return domain.Bid{}, err
	}
	return saved, nil
}

// GetTopBid returns the winning bid for a profile: highest accumulated
// stake first, then price, then seniority.
func (uc *BidUsecase) GetTopBid(ctx context.Context, profileID string) (domain.Bid, error) {
	ctx, span := tracer.Start(ctx, "Bid.Usecase.GetTopBid")
	defer span.End()

	bid, err := uc.repo.FindTopBidByProfile(ctx, profileID)
	if err != nil {
		span.RecordError(err)
		return domain.Bid{}, err
	}
	return bid, nil
}

// GetBids returns one page of the filtered bid set in winning order.
func (uc *BidUsecase) GetBids(ctx context.Context, filter domain.BidFilter, page domain.PageInput) (domain.Pageable[domain.Bid], error) {
	ctx, span := tracer.Start(ctx, "Bid.Usecase.GetBids")
	defer span.End()

	bids, err := uc.repo.Find(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return domain.Pageable[domain.Bid]{}, err
	}
	return domain.Paginate(bids, page), nil
}
