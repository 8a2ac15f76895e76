package usecase

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/mintworks/relaygraph/internal/domain"
)

var tracer = otel.Tracer("usecase")

// EdgeRepository defines storage operations for the relationship graph.
type EdgeRepository interface {
	Create(ctx context.Context, edge domain.Edge) (domain.Edge, error)
	Find(ctx context.Context, filter domain.EdgeFilter) ([]domain.Edge, error)
	ListOrdered(ctx context.Context, thisEntityID string, edgeType domain.EdgeType) ([]domain.Edge, error)
	Exists(ctx context.Context, filter domain.EdgeFilter) (bool, error)
	Count(ctx context.Context, filter domain.EdgeFilter) (int64, error)
	UpdateWeight(ctx context.Context, edgeID string, weight string) error
	SoftDelete(ctx context.Context, filter domain.EdgeFilter, deletedBy string) (int64, error)
	HardDelete(ctx context.Context, filter domain.EdgeFilter) (int64, error)
	Reparent(ctx context.Context, fromThisID, toThisID string, edgeType domain.EdgeType) (int64, error)
	InvalidateListing(ctx context.Context, thisEntityID string, edgeType domain.EdgeType)
}

type GraphUsecase struct {
	repo EdgeRepository
}

func NewGraphUsecase(repo EdgeRepository) *GraphUsecase {
	return &GraphUsecase{repo: repo}
}

// CreateEdge inserts one edge after checking no live duplicate exists
// for the same endpoints and type.
func (uc *GraphUsecase) CreateEdge(ctx context.Context, edge domain.Edge) (domain.Edge, error) {
	ctx, span := tracer.Start(ctx, "Graph.Usecase.CreateEdge")
	defer span.End()

	if edge.ThisEntityID == "" || edge.ThatEntityID == "" || edge.EdgeType == "" {
		err := domain.InvalidInputError{Reason: "edge endpoints and type are required"}
		span.RecordError(err)
		return domain.Edge{}, err
	}

	exists, err := uc.repo.Exists(ctx, domain.EdgeFilter{
		ThisEntityType: edge.ThisEntityType,
		ThisEntityID:   edge.ThisEntityID,
		ThatEntityType: edge.ThatEntityType,
		ThatEntityID:   edge.ThatEntityID,
		EdgeType:       edge.EdgeType,
		IncludeHidden:  true,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Edge{}, err
	}
	if exists {
		err := domain.ConflictError{Resource: "edge", Detail: "duplicate relation"}
		span.RecordError(err)
		return domain.Edge{}, err
	}

	created, err := uc.repo.Create(ctx, edge)
	if err != nil {
		span.RecordError(err)
		return domain.Edge{}, err
	}
	return created, nil
}

func (uc *GraphUsecase) GetEdges(ctx context.Context, filter domain.EdgeFilter) ([]domain.Edge, error) {
	ctx, span := tracer.Start(ctx, "Graph.Usecase.GetEdges")
	defer span.End()

	return uc.repo.Find(ctx, filter)
}

func (uc *GraphUsecase) GetOrderedEdges(ctx context.Context, thisEntityID string, edgeType domain.EdgeType) ([]domain.Edge, error) {
	ctx, span := tracer.Start(ctx, "Graph.Usecase.GetOrderedEdges")
	defer span.End()

	if !edgeType.Orderable() {
		err := domain.InvalidInputError{Reason: "edge type " + string(edgeType) + " is not ordered"}
		span.RecordError(err)
		return nil, err
	}
	return uc.repo.ListOrdered(ctx, thisEntityID, edgeType)
}

// DeleteEdges soft-deletes matching edges, recording who asked.
func (uc *GraphUsecase) DeleteEdges(ctx context.Context, filter domain.EdgeFilter, deletedBy string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Graph.Usecase.DeleteEdges")
	defer span.End()

	count, err := uc.repo.SoftDelete(ctx, filter, deletedBy)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	if count == 0 {
		err := domain.NotFoundError{Resource: "edge", ID: filter.ID}
		span.RecordError(err)
		return 0, err
	}
	return count, nil
}

// Reorder moves one edge to newIndex within its owner's ordered
// listing. Only the moved row is written: the new weight is derived
// from the neighbors at the target position.
func (uc *GraphUsecase) Reorder(ctx context.Context, thisEntityID string, edgeType domain.EdgeType, edgeID string, newIndex int) error {
	ctx, span := tracer.Start(ctx, "Graph.Usecase.Reorder")
	defer span.End()

	if !edgeType.Orderable() {
		err := domain.InvalidInputError{Reason: "edge type " + string(edgeType) + " is not ordered"}
		span.RecordError(err)
		return err
	}

	edges, err := uc.repo.ListOrdered(ctx, thisEntityID, edgeType)
	if err != nil {
		span.RecordError(err)
		return err
	}

	current := -1
	for i, e := range edges {
		if e.ID == edgeID {
			current = i
			break
		}
	}
	if current == -1 {
		err := domain.NotFoundError{Resource: "edge", ID: edgeID}
		span.RecordError(err)
		return err
	}

	// remaining is the listing without the moved edge; the target
	// neighbors are read from it
	remaining := make([]domain.Edge, 0, len(edges)-1)
	remaining = append(remaining, edges[:current]...)
	remaining = append(remaining, edges[current+1:]...)

	if len(remaining) == 0 {
		return nil
	}

	var weight string
	switch {
	case newIndex <= 0:
		// the moved edge takes the first key; the previous head is
		// nudged into the gap below its successor so the key stays
		// unique
		head := remaining[0]
		if head.Weight == domain.FirstWeight {
			below := domain.NextWeight(domain.FirstWeight)
			if len(remaining) > 1 {
				below = remaining[1].Weight
			}
			nudged := domain.MidWeight(domain.FirstWeight, below)
			if err := uc.repo.UpdateWeight(ctx, head.ID, nudged); err != nil {
				span.RecordError(err)
				return err
			}
		}
		weight = domain.FirstWeight
	case newIndex >= len(remaining):
		weight = domain.NextWeight(remaining[len(remaining)-1].Weight)
	default:
		weight = domain.MidWeight(remaining[newIndex-1].Weight, remaining[newIndex].Weight)
	}

	if err := uc.repo.UpdateWeight(ctx, edgeID, weight); err != nil {
		span.RecordError(err)
		return err
	}
	uc.repo.InvalidateListing(ctx, thisEntityID, edgeType)
	return nil
}

// Rebalance rewrites a partition's weights to a dense sequence.
// Maintenance operation for listings whose keys have grown long after
// many midpoint insertions. Relative order is preserved.
func (uc *GraphUsecase) Rebalance(ctx context.Context, thisEntityID string, edgeType domain.EdgeType) (int, error) {
	ctx, span := tracer.Start(ctx, "Graph.Usecase.Rebalance")
	defer span.End()

	if !edgeType.Orderable() {
		err := domain.InvalidInputError{Reason: "edge type " + string(edgeType) + " is not ordered"}
		span.RecordError(err)
		return 0, err
	}

	edges, err := uc.repo.ListOrdered(ctx, thisEntityID, edgeType)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	weights := domain.RebalanceWeights(len(edges))
	for i, e := range edges {
		if e.Weight == weights[i] {
			continue
		}
		if err := uc.repo.UpdateWeight(ctx, e.ID, weights[i]); err != nil {
			span.RecordError(errors.Wrap(err, "rebalancing weights"))
			return i, err
		}
	}
	uc.repo.InvalidateListing(ctx, thisEntityID, edgeType)
	return len(edges), nil
}

// MergeCollections re-points every edge of the duplicate collection
// entities at the canonical one, then purges the duplicates' leftover
// rows so no edge references a dead collection.
func (uc *GraphUsecase) MergeCollections(ctx context.Context, canonicalID string, duplicateIDs []string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Graph.Usecase.MergeCollections")
	defer span.End()

	if canonicalID == "" || len(duplicateIDs) == 0 {
		err := domain.InvalidInputError{Reason: "canonical id and at least one duplicate are required"}
		span.RecordError(err)
		return 0, err
	}

	var moved int64
	for _, dup := range duplicateIDs {
		if dup == canonicalID {
			continue
		}
		n, err := uc.repo.Reparent(ctx, dup, canonicalID, domain.EdgeTypeIncludes)
		if err != nil {
			span.RecordError(err)
			return moved, err
		}
		moved += n

		// edges pointing AT the duplicate are stale once it is gone
		if _, err := uc.repo.HardDelete(ctx, domain.EdgeFilter{
			ThatEntityType: domain.EntityTypeCollection,
			ThatEntityID:   dup,
		}); err != nil {
			span.RecordError(err)
			return moved, err
		}
	}
	return moved, nil
}
