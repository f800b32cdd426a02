package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"travellocal/config"
	"travellocal/models"
	"travellocal/services/backend"
	"travellocal/services/tasks"
	"travellocal/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Reconciler retries the mark-unlocked step of a schedule unlock.
type Reconciler interface {
	Reconcile(ctx context.Context, payload models.ReconcilePayload) error
}

// RedisOpt is the asynq connection for the reconcile queue.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReconcileDB,
	}
}

// InitReconcileWorker runs the async worker in background. The returned
// server is shut down by the caller.
func InitReconcileWorker(ctx context.Context, reconciler Reconciler) *asynq.Server {
	logger := utils.GetLogger()

	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			RetryDelayFunc: asynq.DefaultRetryDelayFunc,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeUnlockReconcile, HandleReconcileTask(reconciler, logger))

	go monitorRedisConnection(ctx, logger)

	// Start async worker with retry logic
	go func() {
		logger.Info("Starting reconcile worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("Reconcile worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Reconcile worker gave up; unlocks will not be reconciled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

// HandleReconcileTask decodes the payload and runs the reconcile. Payload and
// auth failures are not retried.
func HandleReconcileTask(reconciler Reconciler, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReconcilePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reconcile payload", zap.Error(err))
			return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}

		logger.Info("Reconciling schedule unlock",
			zap.String("userId", p.UserID),
			zap.Int("tourProgramId", p.TourProgramID))

		err := reconciler.Reconcile(ctx, p)
		if errors.Is(err, backend.ErrUnauthorized) {
			logger.Warn("Reconcile token rejected, giving up", zap.String("userId", p.UserID))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		if err != nil {
			logger.Warn("Reconcile attempt failed", zap.Error(err))
		}
		return err
	}
}

// monitorRedisConnection pings the queue's Redis periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context, logger *zap.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReconcileDB,
	})
	defer client.Close()

	ticker := time.NewTicker(utils.HealthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("Reconcile queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
