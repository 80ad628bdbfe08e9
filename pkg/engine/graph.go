package engine

import (
	"context"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
	"github.com/google/uuid"
)

// TransitionGraph answers "what follows stage X" and maintains the
// directed edges between stages. Each origin has at most one outgoing
// edge; a stage with none is terminal.
type TransitionGraph struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewTransitionGraph(p persistence.Persistence, logger *slog.Logger) *TransitionGraph {
	return &TransitionGraph{
		persistence: p,
		logger:      logger.With("module", "graph"),
	}
}

// NextStage resolves the destination of the origin's outgoing edge.
// found is false for a terminal stage.
func (g *TransitionGraph) NextStage(ctx context.Context, originStageID string) (destinationStageID string, found bool, err error) {
	transition, err := g.persistence.Transitions().GetByOrigin(ctx, originStageID)
	if err != nil {
		if persistence.IsNotFound(err) {
			return "", false, nil
		}

		return "", false, err
	}

	return transition.DestinationStageID, true, nil
}

// Link creates the outgoing edge of originStageID. Both stages must
// exist and belong to the same template; an origin that already has an
// edge is refused with ErrTransitionExists.
func (g *TransitionGraph) Link(ctx context.Context, originStageID, destinationStageID string) (*models.Transition, error) {
	var transition *models.Transition

	err := g.persistence.Transact(ctx, func(repos persistence.Repositories) error {
		origin, err := repos.Stages().GetByID(ctx, originStageID)
		if err != nil {
			return err
		}

		destination, err := repos.Stages().GetByID(ctx, destinationStageID)
		if err != nil {
			return err
		}

		if origin.TemplateID != destination.TemplateID {
			return persistence.NewStoreError("Link", "transition", originStageID, persistence.ErrIntegrityViolation)
		}

		transition = &models.Transition{
			ID:                 uuid.NewString(),
			OriginStageID:      origin.ID,
			DestinationStageID: destination.ID,
		}

		return repos.Transitions().Create(ctx, transition)
	})
	if err != nil {
		return nil, err
	}

	g.logger.InfoContext(ctx, "stages linked",
		"origin_stage_id", originStageID, "destination_stage_id", destinationStageID)

	return transition, nil
}

// Unlink removes a transition by id.
func (g *TransitionGraph) Unlink(ctx context.Context, transitionID string) error {
	return g.persistence.Transitions().Delete(ctx, transitionID)
}

// GraphView is the adjacency picture of one template for administrative
// inspection.
type GraphView struct {
	TemplateID string            `json:"template_id"`
	Stages     []*models.Stage   `json:"stages"`
	Edges      map[string]string `json:"edges"`
	Terminals  []string          `json:"terminals"`
}

// TemplateGraph loads every stage and edge of a template and marks the
// terminal stages.
func (g *TransitionGraph) TemplateGraph(ctx context.Context, templateID string) (*GraphView, error) {
	template, err := g.persistence.Templates().GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	stages, err := g.persistence.Stages().ListByTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}

	transitions, err := g.persistence.Transitions().ListByTemplate(ctx, template.ID)
	if err != nil {
		return nil, err
	}

	edges := make(map[string]string, len(transitions))
	for _, transition := range transitions {
		edges[transition.OriginStageID] = transition.DestinationStageID
	}

	var terminals []string

	for _, stage := range stages {
		if _, ok := edges[stage.ID]; !ok {
			terminals = append(terminals, stage.ID)
		}
	}

	return &GraphView{
		TemplateID: template.ID,
		Stages:     stages,
		Edges:      edges,
		Terminals:  terminals,
	}, nil
}

// Validate reports the stages sitting on a cycle. A cycle means a
// process can loop through completions forever; completion itself never
// runs this check, it exists for administrators repairing a template.
func (v *GraphView) Validate() []string {
	const (
		unvisited = iota
		visiting
		done
	)

	state := make(map[string]int, len(v.Stages))
	onCycle := make(map[string]bool)

	for _, stage := range v.Stages {
		if state[stage.ID] != unvisited {
			continue
		}

		// Follow the single outgoing edge of each stage until the walk
		// terminates or bites its own tail.
		var path []string

		current := stage.ID
		for state[current] == unvisited {
			state[current] = visiting
			path = append(path, current)

			next, ok := v.Edges[current]
			if !ok {
				break
			}

			current = next
		}

		if state[current] == visiting && v.Edges[path[len(path)-1]] == current {
			cycling := false

			for _, id := range path {
				if id == current {
					cycling = true
				}

				if cycling {
					onCycle[id] = true
				}
			}
		}

		for _, id := range path {
			state[id] = done
		}
	}

	cycle := make([]string, 0, len(onCycle))

	for _, stage := range v.Stages {
		if onCycle[stage.ID] {
			cycle = append(cycle, stage.ID)
		}
	}

	return cycle
}
