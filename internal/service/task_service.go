package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskhub/taskhub-api/internal/domain"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/store"
)

// TaskParams carries the caller-settable task fields. Updates replace
// all of them; there is no partial patch.
type TaskParams struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// TaskService implements task CRUD with per-user access control: a
// task is visible only to its owner and collaborators, and an
// inaccessible task is indistinguishable from a missing one.
type TaskService struct {
	taskStore store.TaskStore
	runTx     store.TxRunner
	logger    *slog.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(taskStore store.TaskStore, runTx store.TxRunner, log *slog.Logger) *TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &TaskService{
		taskStore: taskStore,
		runTx:     runTx,
		logger:    log.With(slog.String("component", "task_service")),
	}
}

// CreateTask creates a task owned by the caller. The task row and its
// collaborator set are written in one transaction.
func (s *TaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, params TaskParams, collaborators []uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(
		params.Title,
		params.Description,
		params.Status,
		params.Priority,
		params.DueDate,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	task.Collaborators = dedupeIDs(collaborators, ownerID)

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("owner_id", ownerID.String()))
	return task, nil
}

// GetTask retrieves a task the caller can access. A task that exists
// but is not accessible reads as not found.
func (s *TaskService) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.AccessibleBy(userID) {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns every task the caller owns or collaborates on.
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	return s.taskStore.ListForUser(ctx, userID)
}

// UpdateTask replaces the mutable fields of a task the caller can
// access.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, params TaskParams) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Title = params.Title
	task.Description = params.Description
	task.Status = params.Status
	task.Priority = params.Priority
	task.DueDate = params.DueDate
	task.UpdatedAt = time.Now().UTC()

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, err
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return task, nil
}

// DeleteTask removes a task the caller can access.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.GetTask(ctx, userID, taskID); err != nil {
		return err
	}

	if err := s.taskStore.Delete(ctx, taskID); err != nil {
		return err
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// dedupeIDs drops duplicate collaborator ids and the owner's own id.
func dedupeIDs(ids []uuid.UUID, owner uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := []uuid.UUID{}
	for _, id := range ids {
		if id == uuid.Nil || id == owner {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
