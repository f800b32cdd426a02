// Package devicestore keeps the per-user state the app used to hold in its
// device-local key-value store.
package devicestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"travellocal/models"
	"travellocal/utils"

	"github.com/go-redis/redis/v8"
)

// Field names inside a user's device hash.
const (
	FieldAccessToken      = "accessToken"
	FieldSelectedLanguage = "selectedLanguage"
	FieldReuseText        = "reuseText"
	unlockFieldPrefix     = "schedule_unlocked_"
	historySuffix         = ":translationHistory"
)

// Store is the device-local key-value store.
type Store interface {
	SetAccessToken(ctx context.Context, userID, token string) error
	GetAccessToken(ctx context.Context, userID string) (string, error)
	SetSelectedLanguage(ctx context.Context, userID, lang string) error
	GetSelectedLanguage(ctx context.Context, userID string) (string, error)
	SetReuseText(ctx context.Context, userID, text string) error
	GetReuseText(ctx context.Context, userID string) (string, error)
	PushTranslation(ctx context.Context, userID string, entry models.TranslationEntry) error
	TranslationHistory(ctx context.Context, userID string) ([]models.TranslationEntry, error)
	SetScheduleUnlocked(ctx context.Context, userID string, tourProgramID int) error
	IsScheduleUnlocked(ctx context.Context, userID string, tourProgramID int) (bool, error)
}

// RedisStore implements Store with one hash and one list per user.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed device store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func hashKey(userID string) string {
	return utils.DeviceKeyPrefix + userID
}

// UnlockField is the hash field flagging an unlocked tour schedule.
func UnlockField(tourProgramID int) string {
	return unlockFieldPrefix + strconv.Itoa(tourProgramID)
}

func (s *RedisStore) set(ctx context.Context, userID, field, value string) error {
	if err := s.client.HSet(ctx, hashKey(userID), field, value).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", field, err)
	}
	return nil
}

func (s *RedisStore) get(ctx context.Context, userID, field string) (string, error) {
	val, err := s.client.HGet(ctx, hashKey(userID), field).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", field, err)
	}
	return val, nil
}

func (s *RedisStore) SetAccessToken(ctx context.Context, userID, token string) error {
	return s.set(ctx, userID, FieldAccessToken, token)
}

func (s *RedisStore) GetAccessToken(ctx context.Context, userID string) (string, error) {
	return s.get(ctx, userID, FieldAccessToken)
}

func (s *RedisStore) SetSelectedLanguage(ctx context.Context, userID, lang string) error {
	return s.set(ctx, userID, FieldSelectedLanguage, lang)
}

func (s *RedisStore) GetSelectedLanguage(ctx context.Context, userID string) (string, error) {
	return s.get(ctx, userID, FieldSelectedLanguage)
}

func (s *RedisStore) SetReuseText(ctx context.Context, userID, text string) error {
	return s.set(ctx, userID, FieldReuseText, text)
}

func (s *RedisStore) GetReuseText(ctx context.Context, userID string) (string, error) {
	return s.get(ctx, userID, FieldReuseText)
}

// PushTranslation prepends an entry and trims the history to
// models.MaxTranslationHistory.
func (s *RedisStore) PushTranslation(ctx context.Context, userID string, entry models.TranslationEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal translation entry: %w", err)
	}
	key := hashKey(userID) + historySuffix
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, b)
		pipe.LTrim(ctx, key, 0, models.MaxTranslationHistory-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store translation history: %w", err)
	}
	return nil
}

// TranslationHistory returns the history, newest first. Corrupt entries are skipped.
func (s *RedisStore) TranslationHistory(ctx context.Context, userID string) ([]models.TranslationEntry, error) {
	vals, err := s.client.LRange(ctx, hashKey(userID)+historySuffix, 0, models.MaxTranslationHistory-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read translation history: %w", err)
	}
	history := make([]models.TranslationEntry, 0, len(vals))
	for _, v := range vals {
		var entry models.TranslationEntry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			continue
		}
		history = append(history, entry)
	}
	return history, nil
}

func (s *RedisStore) SetScheduleUnlocked(ctx context.Context, userID string, tourProgramID int) error {
	return s.set(ctx, userID, UnlockField(tourProgramID), "true")
}

func (s *RedisStore) IsScheduleUnlocked(ctx context.Context, userID string, tourProgramID int) (bool, error) {
	val, err := s.get(ctx, userID, UnlockField(tourProgramID))
	if err != nil {
		return false, err
	}
	return val == "true", nil
}
