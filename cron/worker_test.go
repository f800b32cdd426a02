package cron

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"travellocal/models"
	"travellocal/services/backend"
	"travellocal/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubReconciler struct {
	err      error
	payloads []models.ReconcilePayload
}

func (s *stubReconciler) Reconcile(ctx context.Context, payload models.ReconcilePayload) error {
	s.payloads = append(s.payloads, payload)
	return s.err
}

func TestHandleReconcileTask(t *testing.T) {
	payload := models.ReconcilePayload{UserID: "u1", TourProgramID: 4, AccessToken: "tok"}
	task, _, err := tasks.NewReconcileTask(payload)
	require.NoError(t, err)

	stub := &stubReconciler{}
	require.NoError(t, HandleReconcileTask(stub, zap.NewNop())(context.Background(), task))
	assert.Equal(t, []models.ReconcilePayload{payload}, stub.payloads)
}

func TestHandleReconcileTaskRetriesTransientErrors(t *testing.T) {
	task, _, err := tasks.NewReconcileTask(models.ReconcilePayload{UserID: "u1", TourProgramID: 4})
	require.NoError(t, err)

	stub := &stubReconciler{err: errors.New("backend down")}
	err = HandleReconcileTask(stub, zap.NewNop())(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleReconcileTaskSkipsRetry(t *testing.T) {
	stub := &stubReconciler{err: backend.ErrUnauthorized}
	task, _, err := tasks.NewReconcileTask(models.ReconcilePayload{UserID: "u1", TourProgramID: 4})
	require.NoError(t, err)

	err = HandleReconcileTask(stub, zap.NewNop())(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	bad := asynq.NewTask(tasks.TypeUnlockReconcile, json.RawMessage(`{`))
	err = HandleReconcileTask(stub, zap.NewNop())(context.Background(), bad)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
