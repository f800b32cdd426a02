// Package unlock gates a tour's detailed schedule behind a point spend or a
// card payment. Every attempt goes through the unlock ledger so a user is
// never charged twice for the same tour.
package unlock

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	unlockRepo "travellocal/database/repository/unlock"
	"travellocal/models"
	"travellocal/services/backend"
	"travellocal/services/tour"

	"go.uber.org/zap"
)

// DefaultPointCost is the flat point price of a schedule.
const DefaultPointCost = 100

const spendReason = "schedule_unlock"

// Options are the prices of an unlock.
type Options struct {
	PointCost int64
	CashPrice int64
	Currency  string
}

type unlockService struct {
	backend  Backend
	ledger   unlockRepo.UnlockRepository
	device   DeviceStore
	queue    Enqueuer
	payments PaymentGateway
	opts     Options
	logger   *zap.Logger
}

// NewService wires the unlock flow. payments may be nil when card payments
// are not configured.
func NewService(b Backend, ledger unlockRepo.UnlockRepository, device DeviceStore, queue Enqueuer, payments PaymentGateway, opts Options, logger *zap.Logger) Service {
	if opts.PointCost <= 0 {
		opts.PointCost = DefaultPointCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &unlockService{
		backend:  b,
		ledger:   ledger,
		device:   device,
		queue:    queue,
		payments: payments,
		opts:     opts,
		logger:   logger,
	}
}

// Status reports whether the schedule is unlocked for the user. When the
// backend cannot answer, the device flag decides.
func (s *unlockService) Status(ctx context.Context, userID, token string, tourProgramID int) (bool, error) {
	local := s.deviceFlag(ctx, userID, tourProgramID)

	remote, err := s.backend.GetUnlockStatus(ctx, token, tourProgramID)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return false, err
		}
		s.logger.Warn("Unlock status unavailable, using device flag",
			zap.String("userId", userID),
			zap.Int("tourProgramId", tourProgramID),
			zap.Bool("deviceFlag", local),
			zap.Error(err))
		return local, nil
	}
	return remote || local || s.ledgerCharged(ctx, userID, tourProgramID), nil
}

// Schedule returns the tour schedule, masked unless unlocked.
func (s *unlockService) Schedule(ctx context.Context, userID, token string, tourProgramID int) (*models.ScheduleView, error) {
	program, err := s.backend.GetTourProgram(ctx, token, tourProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tour %d: %w", tourProgramID, err)
	}

	unlocked := program.PointPaid
	if !unlocked {
		if unlocked, err = s.Status(ctx, userID, token, tourProgramID); err != nil {
			return nil, err
		}
	}
	view := tour.View(*program, unlocked)
	return &view, nil
}

// Quote returns the balance and what would remain after paying with points.
func (s *unlockService) Quote(ctx context.Context, userID, token string, tourProgramID int) (*models.UnlockQuote, error) {
	balance, err := s.backend.GetPointBalance(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch point balance: %w", err)
	}
	unlocked, err := s.Status(ctx, userID, token, tourProgramID)
	if err != nil {
		return nil, err
	}
	remaining := balance - s.opts.PointCost
	return &models.UnlockQuote{
		TourProgramID: tourProgramID,
		Balance:       balance,
		Cost:          s.opts.PointCost,
		Remaining:     remaining,
		Affordable:    remaining >= 0,
		Unlocked:      unlocked,
	}, nil
}

// UnlockWithPoints spends points and marks the schedule unlocked. Retrying
// after the spend never charges again.
func (s *unlockService) UnlockWithPoints(ctx context.Context, userID, token string, tourProgramID int) (*models.UnlockResult, error) {
	rec, err := s.ledger.Acquire(ctx, userID, tourProgramID, models.UnlockByPoints)
	if err != nil {
		return nil, err
	}
	if rec.State != models.UnlockPending {
		return s.resume(ctx, userID, token, rec)
	}

	if remote, err := s.backend.GetUnlockStatus(ctx, token, tourProgramID); err == nil && remote {
		// Unlocked elsewhere before this ledger entry existed.
		if _, err := s.ledger.Transition(ctx, userID, tourProgramID, models.UnlockPending, models.UnlockUnlocked, ""); err != nil {
			s.logger.Error("Failed to update unlock ledger", zap.Error(err))
		}
		s.setDeviceFlag(ctx, userID, tourProgramID)
		rec.State = models.UnlockUnlocked
		return result(rec, true), nil
	}

	balance, err := s.backend.GetPointBalance(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch point balance: %w", err)
	}
	if balance < s.opts.PointCost {
		return nil, ErrInsufficientPoints
	}

	won, err := s.ledger.BeginCharge(ctx, userID, tourProgramID, s.opts.PointCost)
	if err != nil {
		return nil, err
	}
	if !won {
		return s.resumeFromLedger(ctx, userID, token, tourProgramID)
	}

	spend := models.SpendPointsRequest{Amount: s.opts.PointCost, Reason: spendReason, TourProgramID: tourProgramID}
	if err := s.backend.SpendPoints(ctx, token, spend); err != nil {
		rolledBack, rerr := s.ledger.Transition(ctx, userID, tourProgramID, models.UnlockCharging, models.UnlockPending, err.Error())
		switch {
		case rerr != nil:
			s.logger.Error("Failed to roll back unlock ledger", zap.Error(rerr))
		case !rolledBack:
			s.logger.Error("Unlock ledger left charging during rollback",
				zap.String("userId", userID),
				zap.Int("tourProgramId", tourProgramID))
		}
		return nil, fmt.Errorf("failed to spend points: %w", err)
	}

	s.logger.Info("Points spent for schedule unlock",
		zap.String("userId", userID),
		zap.Int("tourProgramId", tourProgramID),
		zap.Int64("points", s.opts.PointCost))
	s.confirmCharge(ctx, userID, tourProgramID)
	rec.State = models.UnlockPointsSpent
	rec.PointsCharged = s.opts.PointCost
	return s.markUnlocked(ctx, userID, token, rec), nil
}

// CreatePayment starts a card payment for the cash price.
func (s *unlockService) CreatePayment(ctx context.Context, userID, token string, tourProgramID int) (*models.PaymentIntentResponse, error) {
	if s.payments == nil {
		return nil, ErrPaymentUnavailable
	}
	unlocked, err := s.Status(ctx, userID, token, tourProgramID)
	if err != nil {
		return nil, err
	}
	if unlocked {
		return nil, ErrAlreadyUnlocked
	}
	if _, err := s.ledger.Acquire(ctx, userID, tourProgramID, models.UnlockByPayment); err != nil {
		return nil, err
	}

	intent, err := s.payments.CreateIntent(ctx, s.opts.CashPrice, s.opts.Currency, paymentMetadata(userID, tourProgramID))
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	if err := s.ledger.SetPaymentIntent(ctx, userID, tourProgramID, intent.PaymentIntentID); err != nil {
		s.logger.Error("Failed to store payment intent", zap.String("intentId", intent.PaymentIntentID), zap.Error(err))
	}
	return intent, nil
}

// ConfirmPayment unlocks the schedule once the payment intent succeeded.
func (s *unlockService) ConfirmPayment(ctx context.Context, userID, token string, tourProgramID int, intentID string) (*models.UnlockResult, error) {
	if s.payments == nil {
		return nil, ErrPaymentUnavailable
	}
	rec, err := s.ledger.Acquire(ctx, userID, tourProgramID, models.UnlockByPayment)
	if err != nil {
		return nil, err
	}
	if rec.State != models.UnlockPending {
		return s.resume(ctx, userID, token, rec)
	}

	succeeded, metadata, err := s.payments.IntentStatus(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
	}
	want := paymentMetadata(userID, tourProgramID)
	if metadata["userId"] != want["userId"] || metadata["tourProgramId"] != want["tourProgramId"] {
		return nil, ErrPaymentMismatch
	}
	if !succeeded {
		return nil, ErrPaymentPending
	}

	if err := s.ledger.SetPaymentIntent(ctx, userID, tourProgramID, intentID); err != nil {
		s.logger.Error("Failed to store payment intent", zap.String("intentId", intentID), zap.Error(err))
	}
	won, err := s.ledger.BeginCharge(ctx, userID, tourProgramID, 0)
	if err != nil {
		return nil, err
	}
	if !won {
		return s.resumeFromLedger(ctx, userID, token, tourProgramID)
	}
	s.confirmCharge(ctx, userID, tourProgramID)
	rec.State = models.UnlockPointsSpent
	rec.PaymentIntentID = intentID
	return s.markUnlocked(ctx, userID, token, rec), nil
}

// Reconcile retries the mark-unlocked step for a charged ledger entry.
func (s *unlockService) Reconcile(ctx context.Context, payload models.ReconcilePayload) error {
	rec, err := s.ledger.Get(ctx, payload.UserID, payload.TourProgramID)
	if errors.Is(err, unlockRepo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rec.State != models.UnlockPointsSpent {
		return nil
	}

	err = s.backend.MarkUnlocked(ctx, payload.AccessToken, payload.TourProgramID)
	if errors.Is(err, backend.ErrUnauthorized) {
		// The queued token may have expired; the device store only holds
		// tokens that were verified when the user last called in.
		if stored, serr := s.device.GetAccessToken(ctx, payload.UserID); serr == nil && stored != "" && stored != payload.AccessToken {
			err = s.backend.MarkUnlocked(ctx, stored, payload.TourProgramID)
		}
	}
	if err != nil {
		if rerr := s.ledger.RecordAttempt(ctx, payload.UserID, payload.TourProgramID, err.Error()); rerr != nil {
			s.logger.Error("Failed to record reconcile attempt", zap.Error(rerr))
		}
		return fmt.Errorf("failed to mark tour %d unlocked: %w", payload.TourProgramID, err)
	}
	if _, err := s.ledger.Transition(ctx, payload.UserID, payload.TourProgramID, models.UnlockPointsSpent, models.UnlockUnlocked, ""); err != nil {
		return err
	}
	s.logger.Info("Schedule unlock reconciled",
		zap.String("userId", payload.UserID),
		zap.Int("tourProgramId", payload.TourProgramID))
	return nil
}

// resume continues an entry that is already past pending.
func (s *unlockService) resume(ctx context.Context, userID, token string, rec *models.UnlockRecord) (*models.UnlockResult, error) {
	switch rec.State {
	case models.UnlockUnlocked:
		s.setDeviceFlag(ctx, userID, rec.TourProgramID)
		return result(rec, true), nil
	case models.UnlockPointsSpent:
		return s.markUnlocked(ctx, userID, token, rec), nil
	default:
		// Pending after a rollback, or charging while another request spends.
		return nil, ErrInProgress
	}
}

// confirmCharge moves a charging entry to points_spent once the charge went through.
func (s *unlockService) confirmCharge(ctx context.Context, userID string, tourProgramID int) {
	ok, err := s.ledger.Transition(ctx, userID, tourProgramID, models.UnlockCharging, models.UnlockPointsSpent, "")
	if err != nil {
		s.logger.Error("Failed to confirm unlock charge", zap.Error(err))
		return
	}
	if !ok {
		s.logger.Error("Unlock ledger was not charging after charge",
			zap.String("userId", userID),
			zap.Int("tourProgramId", tourProgramID))
	}
}

func (s *unlockService) resumeFromLedger(ctx context.Context, userID, token string, tourProgramID int) (*models.UnlockResult, error) {
	rec, err := s.ledger.Get(ctx, userID, tourProgramID)
	if err != nil {
		return nil, err
	}
	return s.resume(ctx, userID, token, rec)
}

// markUnlocked writes the device flag and tells the backend. A backend
// failure leaves the entry charged and schedules a reconcile.
func (s *unlockService) markUnlocked(ctx context.Context, userID, token string, rec *models.UnlockRecord) *models.UnlockResult {
	s.setDeviceFlag(ctx, userID, rec.TourProgramID)

	if err := s.backend.MarkUnlocked(ctx, token, rec.TourProgramID); err != nil {
		s.logger.Warn("Mark unlocked failed after charge, scheduling reconcile",
			zap.String("userId", userID),
			zap.Int("tourProgramId", rec.TourProgramID),
			zap.Error(err))
		if rerr := s.ledger.RecordAttempt(ctx, userID, rec.TourProgramID, err.Error()); rerr != nil {
			s.logger.Error("Failed to record unlock attempt", zap.Error(rerr))
		}
		payload := models.ReconcilePayload{UserID: userID, TourProgramID: rec.TourProgramID, AccessToken: token}
		if qerr := s.queue.EnqueueReconcile(ctx, payload); qerr != nil {
			s.logger.Error("Failed to enqueue unlock reconcile", zap.Error(qerr))
		}
		rec.State = models.UnlockPointsSpent
		return result(rec, false)
	}

	if _, err := s.ledger.Transition(ctx, userID, rec.TourProgramID, models.UnlockPointsSpent, models.UnlockUnlocked, ""); err != nil {
		s.logger.Error("Failed to update unlock ledger", zap.Error(err))
	}
	rec.State = models.UnlockUnlocked
	return result(rec, true)
}

func (s *unlockService) deviceFlag(ctx context.Context, userID string, tourProgramID int) bool {
	flag, err := s.device.IsScheduleUnlocked(ctx, userID, tourProgramID)
	if err != nil {
		s.logger.Warn("Failed to read device unlock flag", zap.Error(err))
		return false
	}
	return flag
}

func (s *unlockService) setDeviceFlag(ctx context.Context, userID string, tourProgramID int) {
	if err := s.device.SetScheduleUnlocked(ctx, userID, tourProgramID); err != nil {
		s.logger.Error("Failed to write device unlock flag", zap.Error(err))
	}
}

func (s *unlockService) ledgerCharged(ctx context.Context, userID string, tourProgramID int) bool {
	rec, err := s.ledger.Get(ctx, userID, tourProgramID)
	if err != nil {
		return false
	}
	return rec.State == models.UnlockPointsSpent || rec.State == models.UnlockUnlocked
}

func result(rec *models.UnlockRecord, synced bool) *models.UnlockResult {
	return &models.UnlockResult{
		TourProgramID: rec.TourProgramID,
		State:         rec.State,
		Unlocked:      rec.State == models.UnlockPointsSpent || rec.State == models.UnlockUnlocked,
		PointsCharged: rec.PointsCharged,
		Synced:        synced,
	}
}

func paymentMetadata(userID string, tourProgramID int) map[string]string {
	return map[string]string{
		"userId":        userID,
		"tourProgramId": strconv.Itoa(tourProgramID),
	}
}
