// Package memory provides an in-memory persistence implementation with
// the same transactional contract as the PostgreSQL layer. It backs unit
// tests; nothing survives the process.
package memory

import (
	"context"
	"sync"

	"github.com/bdedica/tramite/pkg/persistence"
)

// Store implements persistence.Persistence over plain maps guarded by
// one mutex. Transact snapshots the dataset before running fn and
// restores the snapshot when fn fails, giving the same all-or-nothing
// semantics the engine relies on against PostgreSQL.
type Store struct {
	mu   sync.RWMutex
	data *dataset
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) Transact(_ context.Context, fn func(persistence.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()

	err := fn(&repositories{store: s, inTx: true})
	if err != nil {
		s.data = snapshot

		return err
	}

	return nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}

func (s *Store) Templates() persistence.TemplateRepository {
	return &templateRepository{store: s}
}

func (s *Store) Stages() persistence.StageRepository {
	return &stageRepository{store: s}
}

func (s *Store) Transitions() persistence.TransitionRepository {
	return &transitionRepository{store: s}
}

func (s *Store) FieldModels() persistence.FieldModelRepository {
	return &fieldModelRepository{store: s}
}

func (s *Store) Processes() persistence.ProcessRepository {
	return &processRepository{store: s}
}

func (s *Store) Executions() persistence.ExecutionRepository {
	return &executionRepository{store: s}
}

func (s *Store) FieldValues() persistence.FieldValueRepository {
	return &fieldValueRepository{store: s}
}

func (s *Store) Users() persistence.UserRepository {
	return &userRepository{store: s}
}

// repositories is the transaction-scoped view: the enclosing Transact
// already holds the write lock, so the repositories skip locking.
type repositories struct {
	store *Store
	inTx  bool
}

func (r *repositories) Templates() persistence.TemplateRepository {
	return &templateRepository{store: r.store, inTx: r.inTx}
}

func (r *repositories) Stages() persistence.StageRepository {
	return &stageRepository{store: r.store, inTx: r.inTx}
}

func (r *repositories) Transitions() persistence.TransitionRepository {
	return &transitionRepository{store: r.store, inTx: r.inTx}
}

func (r *repositories) FieldModels() persistence.FieldModelRepository {
	return &fieldModelRepository{store: r.store, inTx: r.inTx}
}

func (r *repositories) Processes() persistence.ProcessRepository {
	return &processRepository{store: r.store, inTx: r.inTx}
}

func (r *repositories) Executions() persistence.ExecutionRepository {
	return &executionRepository{store: r.store, inTx: r.inTx}
}

func (r *repositories) FieldValues() persistence.FieldValueRepository {
	return &fieldValueRepository{store: r.store, inTx: r.inTx}
}

func (r *repositories) Users() persistence.UserRepository {
	return &userRepository{store: r.store, inTx: r.inTx}
}

// readLock acquires the read lock unless the caller is inside Transact.
func (s *Store) readLock(inTx bool) func() {
	if inTx {
		return func() {}
	}

	s.mu.RLock()

	return s.mu.RUnlock
}

// writeLock acquires the write lock unless the caller is inside Transact.
func (s *Store) writeLock(inTx bool) func() {
	if inTx {
		return func() {}
	}

	s.mu.Lock()

	return s.mu.Unlock
}
