package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mintworks/relaygraph/internal/config"
	"github.com/mintworks/relaygraph/internal/domain"
	"github.com/mintworks/relaygraph/internal/ingest"
	"github.com/mintworks/relaygraph/internal/usecase"
)

// --- mocks ---

type mockEdgeRepo struct {
	edges []domain.Edge
}

func (m *mockEdgeRepo) Create(ctx context.Context, edge domain.Edge) (domain.Edge, error) {
	edge.ID = "created"
	m.edges = append(m.edges, edge)
	return edge, nil
}

func (m *mockEdgeRepo) Find(ctx context.Context, filter domain.EdgeFilter) ([]domain.Edge, error) {
	return m.edges, nil
}

func (m *mockEdgeRepo) ListOrdered(ctx context.Context, thisEntityID string, edgeType domain.EdgeType) ([]domain.Edge, error) {
	return m.edges, nil
}

func (m *mockEdgeRepo) Exists(ctx context.Context, filter domain.EdgeFilter) (bool, error) {
	return len(m.edges) > 0, nil
}

func (m *mockEdgeRepo) Count(ctx context.Context, filter domain.EdgeFilter) (int64, error) {
	return int64(len(m.edges)), nil
}

func (m *mockEdgeRepo) UpdateWeight(ctx context.Context, edgeID string, weight string) error {
	return nil
}

func (m *mockEdgeRepo) SoftDelete(ctx context.Context, filter domain.EdgeFilter, deletedBy string) (int64, error) {
	return int64(len(m.edges)), nil
}

func (m *mockEdgeRepo) HardDelete(ctx context.Context, filter domain.EdgeFilter) (int64, error) {
	return 0, nil
}

func (m *mockEdgeRepo) Reparent(ctx context.Context, fromThisID, toThisID string, edgeType domain.EdgeType) (int64, error) {
	return 0, nil
}

func (m *mockEdgeRepo) InvalidateListing(ctx context.Context, thisEntityID string, edgeType domain.EdgeType) {
}

type mockActivityRepo struct {
	activities []domain.Activity
}

func (m *mockActivityRepo) Upsert(ctx context.Context, n domain.NormalizedActivity) (domain.Activity, error) {
	m.activities = append(m.activities, n.Activity)
	return n.Activity, nil
}

func (m *mockActivityRepo) Find(ctx context.Context, filter domain.ActivityFilter, now time.Time) ([]domain.Activity, error) {
	return m.activities, nil
}

func (m *mockActivityRepo) FindByActivityTypeID(ctx context.Context, activityTypeID string) (domain.Activity, error) {
	return domain.Activity{}, domain.NotFoundError{Resource: "activity", ID: activityTypeID}
}

func (m *mockActivityRepo) UpdateStatusByIDs(ctx context.Context, ids []string, status domain.ActivityStatus) (domain.BatchResult, error) {
	return domain.BatchResult{UpdatedIDsSuccess: ids}, nil
}

func (m *mockActivityRepo) UpdateReadByIDs(ctx context.Context, ids []string) (domain.BatchResult, error) {
	return domain.BatchResult{UpdatedIDsSuccess: ids}, nil
}

func (m *mockActivityRepo) FindOrphans(ctx context.Context) ([]domain.ConsistencyError, error) {
	return nil, nil
}

type mockBidRepo struct{}

func (m *mockBidRepo) FindRecentByProfileUser(ctx context.Context, profileID, userID string) (domain.Bid, error) {
	return domain.Bid{}, domain.NotFoundError{Resource: "bid", ID: profileID}
}

func (m *mockBidRepo) Save(ctx context.Context, bid domain.Bid) (domain.Bid, error) {
	bid.ID = "saved"
	return bid, nil
}

func (m *mockBidRepo) FindTopBidByProfile(ctx context.Context, profileID string) (domain.Bid, error) {
	return domain.Bid{ID: "top", ProfileID: profileID}, nil
}

func (m *mockBidRepo) Find(ctx context.Context, filter domain.BidFilter) ([]domain.Bid, error) {
	return nil, nil
}

// --- tests ---

func newTestServer(edgeRepo *mockEdgeRepo, activityRepo *mockActivityRepo) *echo.Echo {
	h := NewHandler(
		usecase.NewGraphUsecase(edgeRepo),
		usecase.NewActivityUsecase(activityRepo),
		usecase.NewBidUsecase(&mockBidRepo{}, config.Blocklist{ProfileIDs: []string{"reserved"}}),
		usecase.NewIngestUsecase(ingest.NewNormalizer(), activityRepo),
	)
	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func TestHandleGetActivities(t *testing.T) {
	repo := &mockActivityRepo{activities: []domain.Activity{
		{ID: "a1", ActivityType: domain.ActivityTypeListing, Status: domain.ActivityStatusValid},
	}}
	e := newTestServer(&mockEdgeRepo{}, repo)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activities?activityType=Listing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var page domain.Pageable[domain.Activity]
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if page.TotalItems != 1 || len(page.Items) != 1 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestHandleGetActivitiesBadReadFlag(t *testing.T) {
	e := newTestServer(&mockEdgeRepo{}, &mockActivityRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/activities?read=maybe", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleUpdateStatusRejectsValid(t *testing.T) {
	e := newTestServer(&mockEdgeRepo{}, &mockActivityRepo{})

	body := `{"ids":["a1"],"status":"Valid"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/activities/status", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleCreateEdgeConflict(t *testing.T) {
	repo := &mockEdgeRepo{edges: []domain.Edge{{ID: "existing"}}}
	e := newTestServer(repo, &mockActivityRepo{})

	body := `{"thisEntityType":"Profile","thisEntityId":"p1","thatEntityType":"Profile","thatEntityId":"p2","edgeType":"Follows"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/edges", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleDeleteEdgesRequiresFilter(t *testing.T) {
	e := newTestServer(&mockEdgeRepo{}, &mockActivityRepo{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/edges", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlePlaceBidBlockedProfile(t *testing.T) {
	e := newTestServer(&mockEdgeRepo{}, &mockActivityRepo{})

	body := `{"profileId":"reserved","userId":"u1","price":"1000000000000000000"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bids", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleGetTopBidRequiresProfile(t *testing.T) {
	e := newTestServer(&mockEdgeRepo{}, &mockActivityRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bids/top", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleIngestPerItemErrors(t *testing.T) {
	repo := &mockActivityRepo{}
	e := newTestServer(&mockEdgeRepo{}, repo)

	body := `{"items":[{"activityType":"Listing","chainId":"1","payload":{"hash":"0xonly"}}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/LooksRare", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with per-item errors, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Results []usecase.IngestItemResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Err == "" {
		t.Errorf("malformed payload must surface per item: %+v", resp.Results)
	}
	if len(repo.activities) != 0 {
		t.Errorf("malformed payload must not land in the ledger")
	}
}
