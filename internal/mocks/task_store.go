package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/store"
)

// TaskStore is an in-memory store.TaskStore.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	CreateErr error
	UpdateErr error
}

// NewTaskStore creates an empty in-memory task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

var _ store.TaskStore = (*TaskStore)(nil)

// Seed inserts tasks directly.
func (s *TaskStore) Seed(tasks ...*domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		copied := copyTask(t)
		s.tasks[t.ID] = copied
	}
}

func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = copyTask(task)
	return nil
}

func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(t), nil
}

func (s *TaskStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*domain.Task{}
	for _, t := range s.tasks {
		if t.AccessibleBy(userID) {
			out = append(out, copyTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	updated := copyTask(task)
	updated.Collaborators = existing.Collaborators
	s.tasks[task.ID] = updated
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore { return s }

func copyTask(t *domain.Task) *domain.Task {
	copied := *t
	copied.Collaborators = append([]uuid.UUID(nil), t.Collaborators...)
	if t.DueDate != nil {
		due := *t.DueDate
		copied.DueDate = &due
	}
	return &copied
}
