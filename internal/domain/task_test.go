package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhub/taskhub-api/internal/domain"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	tests := []struct {
		name     string
		title    string
		status   domain.TaskStatus
		priority domain.TaskPriority
		wantErr  error
	}{
		{
			name:     "valid task",
			title:    "write report",
			status:   domain.TaskPending,
			priority: domain.PriorityMedium,
		},
		{
			name:     "empty title",
			title:    "",
			status:   domain.TaskPending,
			priority: domain.PriorityLow,
			wantErr:  domain.ErrEmptyTaskTitle,
		},
		{
			name:     "bad status",
			title:    "write report",
			status:   domain.TaskStatus("done"),
			priority: domain.PriorityLow,
			wantErr:  domain.ErrInvalidTaskStatus,
		},
		{
			name:     "bad priority",
			title:    "write report",
			status:   domain.TaskCompleted,
			priority: domain.TaskPriority("urgent"),
			wantErr:  domain.ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			task, err := domain.NewTask(tt.title, "desc", tt.status, tt.priority, nil, ownerID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ownerID, task.OwnerID)
		})
	}
}

func TestTaskAccessibleBy(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	collaborator := uuid.New()
	stranger := uuid.New()

	task, err := domain.NewTask("shared", "", domain.TaskInProgress, domain.PriorityHigh, nil, owner)
	require.NoError(t, err)
	task.Collaborators = []uuid.UUID{collaborator}

	assert.True(t, task.AccessibleBy(owner))
	assert.True(t, task.AccessibleBy(collaborator))
	assert.False(t, task.AccessibleBy(stranger))
}
