package rest

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mintworks/relaygraph/internal/domain"
	"github.com/mintworks/relaygraph/internal/present/rest/presenter"
	"github.com/mintworks/relaygraph/internal/usecase"
)

type Handler struct {
	graph    *usecase.GraphUsecase
	activity *usecase.ActivityUsecase
	bid      *usecase.BidUsecase
	ingest   *usecase.IngestUsecase
}

func NewHandler(
	graph *usecase.GraphUsecase,
	activity *usecase.ActivityUsecase,
	bid *usecase.BidUsecase,
	ingest *usecase.IngestUsecase,
) *Handler {
	return &Handler{
		graph:    graph,
		activity: activity,
		bid:      bid,
		ingest:   ingest,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/activities", h.handleGetActivities)
	e.POST("/api/v1/activities/status", h.handleUpdateActivityStatus)
	e.POST("/api/v1/activities/read", h.handleMarkActivitiesRead)
	e.GET("/api/v1/activities/consistency", h.handleActivityConsistency)
	e.POST("/api/v1/ingest/:protocol", h.handleIngest)
	e.GET("/api/v1/edges", h.handleGetEdges)
	e.POST("/api/v1/edges", h.handleCreateEdge)
	e.DELETE("/api/v1/edges", h.handleDeleteEdges)
	e.GET("/api/v1/edges/ordered", h.handleGetOrderedEdges)
	e.POST("/api/v1/edges/reorder", h.handleReorderEdge)
	e.POST("/api/v1/edges/rebalance", h.handleRebalanceEdges)
	e.POST("/api/v1/bids", h.handlePlaceBid)
	e.GET("/api/v1/bids", h.handleGetBids)
	e.GET("/api/v1/bids/top", h.handleGetTopBid)
	e.POST("/api/v1/collections/merge", h.handleMergeCollections)
}

// mapError translates domain errors into HTTP responses; anything
// unrecognized is a 500.
func mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedProtocol),
		errors.Is(err, domain.ErrMalformedOrder):
		return presenter.BadRequest(c, err)
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return presenter.Conflict(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}

func pageInput(c echo.Context) domain.PageInput {
	first, _ := strconv.Atoi(c.QueryParam("first"))
	last, _ := strconv.Atoi(c.QueryParam("last"))
	return domain.PageInput{
		First:        first,
		Last:         last,
		AfterCursor:  c.QueryParam("afterCursor"),
		BeforeCursor: c.QueryParam("beforeCursor"),
	}
}

func (h *Handler) handleGetActivities(c echo.Context) error {
	ctx := c.Request().Context()

	filter := domain.ActivityFilter{
		ActivityType:   domain.ActivityType(c.QueryParam("activityType")),
		Status:         domain.ActivityStatus(c.QueryParam("status")),
		ExpirationType: domain.ExpirationType(c.QueryParam("expirationType")),
		WalletAddress:  c.QueryParam("walletAddress"),
		NFTContract:    c.QueryParam("nftContract"),
		NFTID:          c.QueryParam("nftId"),
		ChainID:        c.QueryParam("chainId"),
	}
	if raw := c.QueryParam("read"); raw != "" {
		read, err := strconv.ParseBool(raw)
		if err != nil {
			return presenter.BadRequestMessage(c, "invalid read flag")
		}
		filter.Read = &read
	}

	page, err := h.activity.GetActivities(ctx, filter, pageInput(c))
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, page)
}

type updateStatusRequest struct {
	IDs    []string              `json:"ids"`
	Status domain.ActivityStatus `json:"status"`
}

func (h *Handler) handleUpdateActivityStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.activity.UpdateStatusByIDs(ctx, req.IDs, req.Status)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, result)
}

type markReadRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) handleMarkActivitiesRead(c echo.Context) error {
	ctx := c.Request().Context()

	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	result, err := h.activity.MarkRead(ctx, req.IDs)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, result)
}

func (h *Handler) handleActivityConsistency(c echo.Context) error {
	ctx := c.Request().Context()

	orphans, err := h.activity.CheckConsistency(ctx)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, echo.Map{"orphans": orphans})
}

type ingestRequest struct {
	Items []usecase.IngestItem `json:"items"`
}

func (h *Handler) handleIngest(c echo.Context) error {
	ctx := c.Request().Context()

	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	protocol := domain.ProtocolType(c.Param("protocol"))
	results, err := h.ingest.Ingest(ctx, protocol, req.Items)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, echo.Map{"results": results})
}

func edgeFilter(c echo.Context) domain.EdgeFilter {
	return domain.EdgeFilter{
		ID:             c.QueryParam("id"),
		CollectionID:   c.QueryParam("collectionId"),
		ThisEntityType: domain.EntityType(c.QueryParam("thisEntityType")),
		ThisEntityID:   c.QueryParam("thisEntityId"),
		ThatEntityType: domain.EntityType(c.QueryParam("thatEntityType")),
		ThatEntityID:   c.QueryParam("thatEntityId"),
		EdgeType:       domain.EdgeType(c.QueryParam("edgeType")),
	}
}

func (h *Handler) handleGetEdges(c echo.Context) error {
	ctx := c.Request().Context()

	edges, err := h.graph.GetEdges(ctx, edgeFilter(c))
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, echo.Map{"edges": edges})
}

func (h *Handler) handleCreateEdge(c echo.Context) error {
	ctx := c.Request().Context()

	var edge domain.Edge
	if err := c.Bind(&edge); err != nil {
		return presenter.BadRequest(c, err)
	}

	created, err := h.graph.CreateEdge(ctx, edge)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, created)
}

func (h *Handler) handleDeleteEdges(c echo.Context) error {
	ctx := c.Request().Context()

	filter := edgeFilter(c)
	if filter == (domain.EdgeFilter{}) {
		return presenter.BadRequestMessage(c, "at least one filter is required")
	}

	count, err := h.graph.DeleteEdges(ctx, filter, c.QueryParam("deletedBy"))
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, echo.Map{"deleted": count})
}

func (h *Handler) handleGetOrderedEdges(c echo.Context) error {
	ctx := c.Request().Context()

	edges, err := h.graph.GetOrderedEdges(ctx,
		c.QueryParam("thisEntityId"),
		domain.EdgeType(c.QueryParam("edgeType")),
	)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, echo.Map{"edges": edges})
}

type reorderRequest struct {
	ThisEntityID string          `json:"thisEntityId"`
	EdgeType     domain.EdgeType `json:"edgeType"`
	EdgeID       string          `json:"edgeId"`
	NewIndex     int             `json:"newIndex"`
}

func (h *Handler) handleReorderEdge(c echo.Context) error {
	ctx := c.Request().Context()

	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.graph.Reorder(ctx, req.ThisEntityID, req.EdgeType, req.EdgeID, req.NewIndex); err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

type rebalanceRequest struct {
	ThisEntityID string          `json:"thisEntityId"`
	EdgeType     domain.EdgeType `json:"edgeType"`
}

func (h *Handler) handleRebalanceEdges(c echo.Context) error {
	ctx := c.Request().Context()

	var req rebalanceRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	n, err := h.graph.Rebalance(ctx, req.ThisEntityID, req.EdgeType)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, echo.Map{"rebalanced": n})
}

func (h *Handler) handlePlaceBid(c echo.Context) error {
	ctx := c.Request().Context()

	var bid domain.Bid
	if err := c.Bind(&bid); err != nil {
		return presenter.BadRequest(c, err)
	}

	saved, err := h.bid.PlaceBid(ctx, bid)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, saved)
}

func (h *Handler) handleGetBids(c echo.Context) error {
	ctx := c.Request().Context()

	filter := domain.BidFilter{
		ProfileID: c.QueryParam("profileId"),
		UserID:    c.QueryParam("userId"),
		WalletID:  c.QueryParam("walletId"),
		Status:    domain.BidStatus(c.QueryParam("status")),
		ChainID:   c.QueryParam("chainId"),
	}

	page, err := h.bid.GetBids(ctx, filter, pageInput(c))
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, page)
}

func (h *Handler) handleGetTopBid(c echo.Context) error {
	ctx := c.Request().Context()

	profileID := c.QueryParam("profileId")
	if profileID == "" {
		return presenter.BadRequestMessage(c, "profileId is required")
	}

	bid, err := h.bid.GetTopBid(ctx, profileID)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, bid)
}

type mergeCollectionsRequest struct {
	CanonicalID  string   `json:"canonicalId"`
	DuplicateIDs []string `json:"duplicateIds"`
}

func (h *Handler) handleMergeCollections(c echo.Context) error {
	ctx := c.Request().Context()

	var req mergeCollectionsRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	moved, err := h.graph.MergeCollections(ctx, req.CanonicalID, req.DuplicateIDs)
	if err != nil {
		return mapError(c, err)
	}
	return presenter.OK(c, echo.Map{"moved": moved})
}
