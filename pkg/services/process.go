package services

import (
	"context"
	"log/slog"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/bdedica/tramite/pkg/persistence"
)

// ProcessService exposes the read-only administrative views over running
// and concluded processes. Starting and advancing live in the engine.
type ProcessService struct {
	persistence persistence.Persistence
	logger      *slog.Logger
}

func NewProcessService(p persistence.Persistence, logger *slog.Logger) *ProcessService {
	return &ProcessService{
		persistence: p,
		logger:      logger.With("module", "process_service"),
	}
}

func (s *ProcessService) Get(ctx context.Context, id string) (*models.Process, error) {
	return s.persistence.Processes().GetByID(ctx, id)
}

func (s *ProcessService) List(ctx context.Context) ([]*models.Process, error) {
	return s.persistence.Processes().List(ctx)
}

// HistoryEntry is one step of a process timeline: the execution plus the
// stage it ran at.
type HistoryEntry struct {
	Execution *models.StageExecution `json:"execution"`
	StageName string                 `json:"stage_name"`
}

// ProcessHistory is the full timeline of one process, oldest execution
// first.
type ProcessHistory struct {
	Process *models.Process `json:"process"`
	Entries []HistoryEntry  `json:"entries"`
}

func (s *ProcessService) History(ctx context.Context, id string) (*ProcessHistory, error) {
	process, err := s.persistence.Processes().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	executions, err := s.persistence.Executions().ListByProcess(ctx, process.ID)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, 0, len(executions))

	for _, execution := range executions {
		stage, err := s.persistence.Stages().GetByID(ctx, execution.StageID)
		if err != nil {
			return nil, err
		}

		entries = append(entries, HistoryEntry{Execution: execution, StageName: stage.Name})
	}

	return &ProcessHistory{Process: process, Entries: entries}, nil
}
