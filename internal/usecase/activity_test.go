package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mintworks/relaygraph/internal/domain"
)

type mockActivityRepo struct {
	activities []domain.Activity
	upserts    int
}

func (m *mockActivityRepo) Upsert(ctx context.Context, n domain.NormalizedActivity) (domain.Activity, error) {
	m.upserts++
	for i, a := range m.activities {
		if a.ActivityTypeID == n.Activity.ActivityTypeID {
			// refresh in place, keeping the original row id
			n.Activity.ID = a.ID
			m.activities[i] = n.Activity
			return m.activities[i], nil
		}
	}
	n.Activity.ID = n.Activity.ActivityTypeID
	m.activities = append(m.activities, n.Activity)
	return n.Activity, nil
}

func (m *mockActivityRepo) Find(ctx context.Context, filter domain.ActivityFilter, now time.Time) ([]domain.Activity, error) {
	status := filter.Status
	if status == "" {
		status = domain.ActivityStatusValid
	}
	var out []domain.Activity
	for _, a := range m.activities {
		if a.Status != status {
			continue
		}
		if filter.ActivityType != "" && a.ActivityType != filter.ActivityType {
			continue
		}
		if filter.WalletAddress != "" && a.WalletAddress != filter.WalletAddress {
			continue
		}
		if filter.NFTContract != "" && a.NFTContract != filter.NFTContract {
			continue
		}
		// mirrors the SQL comparisons: a NULL expiration satisfies
		// neither window, so such rows only surface under Both
		switch filter.ExpirationType {
		case domain.ExpirationTypeExpired:
			if a.Expiration == nil || a.Expiration.After(now) {
				continue
			}
		case domain.ExpirationTypeBoth:
		default:
			if a.Expiration == nil || !a.Expiration.After(now) {
				continue
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockActivityRepo) FindByActivityTypeID(ctx context.Context, activityTypeID string) (domain.Activity, error) {
	for _, a := range m.activities {
		if a.ActivityTypeID == activityTypeID {
			return a, nil
		}
	}
	return domain.Activity{}, domain.NotFoundError{Resource: "activity", ID: activityTypeID}
}

func (m *mockActivityRepo) UpdateStatusByIDs(ctx context.Context, ids []string, status domain.ActivityStatus) (domain.BatchResult, error) {
	var result domain.BatchResult
	for _, id := range ids {
		updated := false
		for i := range m.activities {
			if m.activities[i].ID == id && m.activities[i].Status == domain.ActivityStatusValid {
				m.activities[i].Status = status
				updated = true
				break
			}
		}
		if updated {
			result.UpdatedIDsSuccess = append(result.UpdatedIDsSuccess, id)
		} else {
			result.IDsNotFoundOrFailed = append(result.IDsNotFoundOrFailed, id)
		}
	}
	return result, nil
}

func (m *mockActivityRepo) UpdateReadByIDs(ctx context.Context, ids []string) (domain.BatchResult, error) {
	var result domain.BatchResult
	for _, id := range ids {
		updated := false
		for i := range m.activities {
			if m.activities[i].ID == id && !m.activities[i].Read {
				m.activities[i].Read = true
				now := time.Now()
				m.activities[i].ReadTimestamp = &now
				updated = true
				break
			}
		}
		if updated {
			result.UpdatedIDsSuccess = append(result.UpdatedIDsSuccess, id)
		} else {
			result.IDsNotFoundOrFailed = append(result.IDsNotFoundOrFailed, id)
		}
	}
	return result, nil
}

func (m *mockActivityRepo) FindOrphans(ctx context.Context) ([]domain.ConsistencyError, error) {
	return nil, nil
}

func validListing(id string, expiration *time.Time) domain.Activity {
	return domain.Activity{
		ID:             id,
		ActivityType:   domain.ActivityTypeListing,
		ActivityTypeID: id,
		Status:         domain.ActivityStatusValid,
		Timestamp:      time.Now(),
		WalletAddress:  "0xwallet",
		Expiration:     expiration,
	}
}

func TestGetActivitiesExpirationFilter(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	repo := &mockActivityRepo{activities: []domain.Activity{
		validListing("live", &future),
		validListing("dead", &past),
		validListing("eternal", nil),
	}}
	uc := NewActivityUsecase(repo)
	ctx := context.Background()

	active, err := uc.GetActivities(ctx, domain.ActivityFilter{ExpirationType: domain.ExpirationTypeActive}, domain.PageInput{})
	if err != nil {
		t.Fatalf("active query failed: %v", err)
	}
	if len(active.Items) != 1 || active.Items[0].ID != "live" {
		t.Errorf("expected only the live listing, got %v", active.Items)
	}

	expired, err := uc.GetActivities(ctx, domain.ActivityFilter{ExpirationType: domain.ExpirationTypeExpired}, domain.PageInput{})
	if err != nil {
		t.Fatalf("expired query failed: %v", err)
	}
	if len(expired.Items) != 1 || expired.Items[0].ID != "dead" {
		t.Errorf("expected only the dead listing, got %v", expired.Items)
	}

	both, err := uc.GetActivities(ctx, domain.ActivityFilter{ExpirationType: domain.ExpirationTypeBoth}, domain.PageInput{})
	if err != nil {
		t.Fatalf("both query failed: %v", err)
	}
	if len(both.Items) != 3 {
		t.Errorf("expected all three, got %d items", len(both.Items))
	}
	if both.TotalItems != 3 {
		t.Errorf("totalItems must count the full set, got %d", both.TotalItems)
	}
}

func TestGetActivitiesDefaultsToActiveWindow(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	repo := &mockActivityRepo{activities: []domain.Activity{
		validListing("live", &future),
		validListing("dead", &past),
		validListing("onchain", nil),
	}}
	uc := NewActivityUsecase(repo)
	ctx := context.Background()

	page, err := uc.GetActivities(ctx, domain.ActivityFilter{}, domain.PageInput{})
	if err != nil {
		t.Fatalf("default query failed: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "live" {
		t.Errorf("unset window must behave like Active, got %v", page.Items)
	}

	// rows without an expiration never match a time comparison; they
	// need an explicit Both
	both, err := uc.GetActivities(ctx, domain.ActivityFilter{ExpirationType: domain.ExpirationTypeBoth}, domain.PageInput{})
	if err != nil {
		t.Fatalf("both query failed: %v", err)
	}
	found := false
	for _, a := range both.Items {
		if a.ID == "onchain" {
			found = true
		}
	}
	if !found {
		t.Error("expirationless activity missing from Both window")
	}
}

func TestGetActivitiesChecksumsAddressFilters(t *testing.T) {
	future := time.Now().Add(time.Hour)
	a := validListing("l1", &future)
	a.WalletAddress = domain.ChecksumAddress("0x59495589849423692778a8c5aaca62ca80f875a4")
	a.NFTContract = domain.ChecksumAddress("0x32d74b4c22b4c4b1a634b3d4fa28eb55e0c796bb")
	repo := &mockActivityRepo{activities: []domain.Activity{a}}
	uc := NewActivityUsecase(repo)

	// lowercase filter input must still match the checksummed columns
	page, err := uc.GetActivities(context.Background(), domain.ActivityFilter{
		WalletAddress: "0x59495589849423692778a8c5aaca62ca80f875a4",
		NFTContract:   "0x32d74b4c22b4c4b1a634b3d4fa28eb55e0c796bb",
	}, domain.PageInput{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("lowercase address filter missed the checksummed row, got %d items", len(page.Items))
	}
}

func TestGetActivitiesPagination(t *testing.T) {
	future := time.Now().Add(time.Hour)
	repo := &mockActivityRepo{}
	for i := 0; i < 45; i++ {
		repo.activities = append(repo.activities, validListing(string(rune('a'+i%26))+"-"+time.Now().String(), &future))
	}
	uc := NewActivityUsecase(repo)

	page, err := uc.GetActivities(context.Background(), domain.ActivityFilter{}, domain.PageInput{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(page.Items) != 20 {
		t.Errorf("default page size must be 20, got %d", len(page.Items))
	}
	if page.TotalItems != 45 {
		t.Errorf("expected total 45, got %d", page.TotalItems)
	}
	if page.PageInfo.LastCursor != "19" {
		t.Errorf("unexpected last cursor %s", page.PageInfo.LastCursor)
	}
}

func TestUpdateStatusPartialSuccess(t *testing.T) {
	terminal := validListing("done", nil)
	terminal.Status = domain.ActivityStatusExecuted
	repo := &mockActivityRepo{activities: []domain.Activity{
		validListing("a1", nil),
		terminal,
	}}
	uc := NewActivityUsecase(repo)

	result, err := uc.UpdateStatusByIDs(context.Background(), []string{"a1", "done", "ghost"}, domain.ActivityStatusCancelled)
	if err != nil {
		t.Fatalf("batch update failed: %v", err)
	}
	if len(result.UpdatedIDsSuccess) != 1 || result.UpdatedIDsSuccess[0] != "a1" {
		t.Errorf("unexpected successes %v", result.UpdatedIDsSuccess)
	}
	if len(result.IDsNotFoundOrFailed) != 2 {
		t.Errorf("terminal and missing ids must be reported failed, got %v", result.IDsNotFoundOrFailed)
	}
}

func TestUpdateStatusRejectsValidTarget(t *testing.T) {
	uc := NewActivityUsecase(&mockActivityRepo{})
	_, err := uc.UpdateStatusByIDs(context.Background(), []string{"a1"}, domain.ActivityStatusValid)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestUpdateStatusRejectsEmptyIDs(t *testing.T) {
	uc := NewActivityUsecase(&mockActivityRepo{})
	_, err := uc.UpdateStatusByIDs(context.Background(), nil, domain.ActivityStatusExecuted)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestMarkReadOnlyFlipsOnce(t *testing.T) {
	repo := &mockActivityRepo{activities: []domain.Activity{validListing("a1", nil)}}
	uc := NewActivityUsecase(repo)
	ctx := context.Background()

	first, err := uc.MarkRead(ctx, []string{"a1"})
	if err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	if len(first.UpdatedIDsSuccess) != 1 {
		t.Fatalf("expected success, got %v", first)
	}
	if repo.activities[0].ReadTimestamp == nil {
		t.Error("read timestamp not stamped")
	}

	second, err := uc.MarkRead(ctx, []string{"a1"})
	if err != nil {
		t.Fatalf("second mark read failed: %v", err)
	}
	if len(second.IDsNotFoundOrFailed) != 1 {
		t.Errorf("already-read id must be reported failed, got %v", second)
	}
}
