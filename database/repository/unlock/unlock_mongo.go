package unlockRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travellocal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const collectionName = "schedule_unlocks"

// MongoUnlockRepo implements UnlockRepository using MongoDB.
type MongoUnlockRepo struct {
	coll *mongo.Collection
}

// NewMongoUnlockRepo creates the ledger on the given database.
func NewMongoUnlockRepo(db *mongo.Database, logger *zap.Logger) UnlockRepository {
	repo := &MongoUnlockRepo{coll: db.Collection(collectionName)}
	if err := repo.ensureIndexes(); err != nil {
		logger.Error("failed to create unlock ledger indexes", zap.Error(err))
	}
	return repo
}

// withTimeout bounds a ledger call.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func pairFilter(userID string, tourProgramID int) bson.M {
	return bson.M{"userId": userID, "tourProgramId": tourProgramID}
}

func (r *MongoUnlockRepo) Acquire(ctx context.Context, userID string, tourProgramID int, method models.UnlockMethod) (*models.UnlockRecord, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{"$setOnInsert": models.UnlockRecord{
		ID:            uuid.New().String(),
		UserID:        userID,
		TourProgramID: tourProgramID,
		Method:        method,
		State:         models.UnlockPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec models.UnlockRecord
	err := r.coll.FindOneAndUpdate(ctx, pairFilter(userID, tourProgramID), update, opts).Decode(&rec)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an upsert race; the other writer's record is the one to use.
		err = r.coll.FindOne(ctx, pairFilter(userID, tourProgramID)).Decode(&rec)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to acquire unlock record for tour %d: %w", tourProgramID, err)
	}
	return &rec, nil
}

func (r *MongoUnlockRepo) Get(ctx context.Context, userID string, tourProgramID int) (*models.UnlockRecord, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var rec models.UnlockRecord
	err := r.coll.FindOne(ctx, pairFilter(userID, tourProgramID)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unlock record for tour %d: %w", tourProgramID, err)
	}
	return &rec, nil
}

func (r *MongoUnlockRepo) Transition(ctx context.Context, userID string, tourProgramID int, from, to models.UnlockState, lastErr string) (bool, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := pairFilter(userID, tourProgramID)
	filter["state"] = from
	update := bson.M{"$set": bson.M{"state": to, "lastError": lastErr, "updatedAt": time.Now()}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to move unlock record %s -> %s: %w", from, to, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoUnlockRepo) BeginCharge(ctx context.Context, userID string, tourProgramID int, points int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := pairFilter(userID, tourProgramID)
	filter["state"] = models.UnlockPending
	update := bson.M{"$set": bson.M{
		"state":         models.UnlockCharging,
		"pointsCharged": points,
		"lastError":     "",
		"updatedAt":     time.Now(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to begin unlock charge: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *MongoUnlockRepo) SetPaymentIntent(ctx context.Context, userID string, tourProgramID int, intentID string) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"paymentIntentId": intentID,
		"method":          models.UnlockByPayment,
		"updatedAt":       time.Now(),
	}}
	if _, err := r.coll.UpdateOne(ctx, pairFilter(userID, tourProgramID), update); err != nil {
		return fmt.Errorf("failed to store payment intent: %w", err)
	}
	return nil
}

func (r *MongoUnlockRepo) RecordAttempt(ctx context.Context, userID string, tourProgramID int, lastErr string) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"attempts": 1},
		"$set": bson.M{"lastError": lastErr, "updatedAt": time.Now()},
	}
	if _, err := r.coll.UpdateOne(ctx, pairFilter(userID, tourProgramID), update); err != nil {
		return fmt.Errorf("failed to record unlock attempt: %w", err)
	}
	return nil
}
