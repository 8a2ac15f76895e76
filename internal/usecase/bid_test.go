package usecase

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/mintworks/relaygraph/internal/config"
	"github.com/mintworks/relaygraph/internal/domain"
)

type mockBidRepo struct {
	bids map[string]domain.Bid
}

func newMockBidRepo() *mockBidRepo {
	return &mockBidRepo{bids: map[string]domain.Bid{}}
}

func (m *mockBidRepo) FindRecentByProfileUser(ctx context.Context, profileID, userID string) (domain.Bid, error) {
	for _, b := range m.bids {
		if b.ProfileID == profileID && b.UserID == userID {
			return b, nil
		}
	}
	return domain.Bid{}, domain.NotFoundError{Resource: "bid", ID: profileID + "/" + userID}
}

func (m *mockBidRepo) Save(ctx context.Context, bid domain.Bid) (domain.Bid, error) {
	if bid.ID == "" {
		bid.ID = bid.ProfileID + "/" + bid.UserID
		bid.CreatedAt = bid.UpdatedAt
	}
	m.bids[bid.ID] = bid
	return bid, nil
}

func (m *mockBidRepo) winningOrder(bids []domain.Bid) []domain.Bid {
	sort.Slice(bids, func(i, j int) bool {
		if bids[i].StakeWeightedSeconds != bids[j].StakeWeightedSeconds {
			return bids[i].StakeWeightedSeconds > bids[j].StakeWeightedSeconds
		}
		if bids[i].Price != bids[j].Price {
			return bids[i].Price > bids[j].Price
		}
		return bids[i].CreatedAt.Before(bids[j].CreatedAt)
	})
	return bids
}

func (m *mockBidRepo) FindTopBidByProfile(ctx context.Context, profileID string) (domain.Bid, error) {
	var candidates []domain.Bid
	for _, b := range m.bids {
		if b.ProfileID == profileID {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return domain.Bid{}, domain.NotFoundError{Resource: "bid", ID: profileID}
	}
	return m.winningOrder(candidates)[0], nil
}

func (m *mockBidRepo) Find(ctx context.Context, filter domain.BidFilter) ([]domain.Bid, error) {
	var out []domain.Bid
	for _, b := range m.bids {
		if filter.ProfileID != "" && b.ProfileID != filter.ProfileID {
			continue
		}
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		out = append(out, b)
	}
	return m.winningOrder(out), nil
}

const oneToken = "1000000000000000000"

func TestPlaceBidFirstBidStartsAtZero(t *testing.T) {
	repo := newMockBidRepo()
	uc := NewBidUsecase(repo, config.Blocklist{})

	saved, err := uc.PlaceBid(context.Background(), domain.Bid{
		ProfileID: "alice", UserID: "u1", Price: oneToken,
	})
	if err != nil {
		t.Fatalf("place bid failed: %v", err)
	}
	if saved.StakeWeightedSeconds != 0 {
		t.Errorf("first bid must start with zero stake, got %f", saved.StakeWeightedSeconds)
	}
	if saved.Status != domain.BidStatusSubmitted {
		t.Errorf("unexpected status %s", saved.Status)
	}
}

func TestPlaceBidAccumulatesStake(t *testing.T) {
	repo := newMockBidRepo()
	uc := NewBidUsecase(repo, config.Blocklist{})
	ctx := context.Background()

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return t0 }
	if _, err := uc.PlaceBid(ctx, domain.Bid{ProfileID: "alice", UserID: "u1", Price: "2000000000000000000"}); err != nil {
		t.Fatalf("first bid failed: %v", err)
	}

	// 100 seconds later the lineage has earned 100s x 2 tokens
	uc.now = func() time.Time { return t0.Add(100 * time.Second) }
	second, err := uc.PlaceBid(ctx, domain.Bid{ProfileID: "alice", UserID: "u1", Price: oneToken})
	if err != nil {
		t.Fatalf("re-bid failed: %v", err)
	}
	if second.StakeWeightedSeconds != 200 {
		t.Errorf("expected 200 stake-weighted seconds, got %f", second.StakeWeightedSeconds)
	}
	if second.Price != oneToken {
		t.Errorf("lowered price must be adopted, got %s", second.Price)
	}

	// the lowered price earns at the new rate but keeps the bank
	uc.now = func() time.Time { return t0.Add(150 * time.Second) }
	third, err := uc.PlaceBid(ctx, domain.Bid{ProfileID: "alice", UserID: "u1", Price: oneToken})
	if err != nil {
		t.Fatalf("third bid failed: %v", err)
	}
	if third.StakeWeightedSeconds != 250 {
		t.Errorf("expected 250 stake-weighted seconds, got %f", third.StakeWeightedSeconds)
	}
	if third.StakeWeightedSeconds < second.StakeWeightedSeconds {
		t.Error("accumulated stake must never decrease")
	}

	if len(repo.bids) != 1 {
		t.Errorf("re-bids must update the lineage row, found %d rows", len(repo.bids))
	}
}

func TestPlaceBidSameInstantAddsNothing(t *testing.T) {
	repo := newMockBidRepo()
	uc := NewBidUsecase(repo, config.Blocklist{})
	ctx := context.Background()

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return t0 }

	if _, err := uc.PlaceBid(ctx, domain.Bid{ProfileID: "alice", UserID: "u1", Price: oneToken}); err != nil {
		t.Fatalf("first bid failed: %v", err)
	}
	second, err := uc.PlaceBid(ctx, domain.Bid{ProfileID: "alice", UserID: "u1", Price: oneToken})
	if err != nil {
		t.Fatalf("re-bid failed: %v", err)
	}
	if second.StakeWeightedSeconds != 0 {
		t.Errorf("zero elapsed time must contribute zero stake, got %f", second.StakeWeightedSeconds)
	}
}

func TestPlaceBidBlockedProfile(t *testing.T) {
	uc := NewBidUsecase(newMockBidRepo(), config.Blocklist{ProfileIDs: []string{"reserved"}})
	_, err := uc.PlaceBid(context.Background(), domain.Bid{ProfileID: "reserved", UserID: "u1", Price: oneToken})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestPlaceBidRejectsBadPrice(t *testing.T) {
	uc := NewBidUsecase(newMockBidRepo(), config.Blocklist{})
	for _, price := range []string{"", "abc", "-5"} {
		_, err := uc.PlaceBid(context.Background(), domain.Bid{ProfileID: "alice", UserID: "u1", Price: price})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("price %q: expected invalid input, got %v", price, err)
		}
	}
}

func TestGetTopBidOrdering(t *testing.T) {
	repo := newMockBidRepo()
	uc := NewBidUsecase(repo, config.Blocklist{})
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.bids["b1"] = domain.Bid{ID: "b1", ProfileID: "alice", UserID: "u1", Price: oneToken, StakeWeightedSeconds: 50, CreatedAt: base}
	repo.bids["b2"] = domain.Bid{ID: "b2", ProfileID: "alice", UserID: "u2", Price: "9000000000000000000", StakeWeightedSeconds: 100, CreatedAt: base}
	repo.bids["b3"] = domain.Bid{ID: "b3", ProfileID: "alice", UserID: "u3", Price: "9000000000000000000", StakeWeightedSeconds: 100, CreatedAt: base.Add(-time.Hour)}

	top, err := uc.GetTopBid(ctx, "alice")
	if err != nil {
		t.Fatalf("top bid failed: %v", err)
	}
	// equal stake and price: the older lineage wins
	if top.ID != "b3" {
		t.Errorf("expected b3 to win, got %s", top.ID)
	}

	_, err = uc.GetTopBid(ctx, "nobody")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
