package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travellocal/models"

	"github.com/hibiken/asynq"
)

const (
	TypeUnlockReconcile = "unlock:reconcile"

	reconcileMaxRetry = 10
	reconcileDelay    = 30 * time.Second
)

// NewReconcileTask builds the task that retries marking a schedule unlocked.
func NewReconcileTask(payload models.ReconcilePayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeUnlockReconcile, b)
	opts := []asynq.Option{
		asynq.ProcessIn(reconcileDelay),
		asynq.MaxRetry(reconcileMaxRetry),
		// One pending reconcile per user and tour.
		asynq.TaskID(fmt.Sprintf("%s:%s:%d", TypeUnlockReconcile, payload.UserID, payload.TourProgramID)),
	}
	return task, opts, nil
}

// Enqueuer submits reconcile tasks to the asynq queue.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer wraps an asynq client.
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueReconcile schedules a reconcile. A task already queued for the same
// pair is not an error.
func (e *Enqueuer) EnqueueReconcile(ctx context.Context, payload models.ReconcilePayload) error {
	task, opts, err := NewReconcileTask(payload)
	if err != nil {
		return fmt.Errorf("failed to build reconcile task: %w", err)
	}
	if _, err := e.client.EnqueueContext(ctx, task, opts...); err != nil && err != asynq.ErrTaskIDConflict {
		return fmt.Errorf("failed to enqueue reconcile task: %w", err)
	}
	return nil
}
