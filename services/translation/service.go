// Package translation translates short texts through a chain of free
// translation APIs, then a phrase dictionary, then gives the text back
// unchanged.
package translation

import (
	"context"
	"net/http"
	"strings"
	"time"

	"travellocal/models"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	defaultTimeout = 5 * time.Second
	autoDetect     = "auto"

	ProviderDictionary = "dictionary"
	ProviderNone       = "none"
)

// Store keeps the user's translation history and reuse text.
type Store interface {
	PushTranslation(ctx context.Context, userID string, entry models.TranslationEntry) error
	TranslationHistory(ctx context.Context, userID string) ([]models.TranslationEntry, error)
	SetReuseText(ctx context.Context, userID, text string) error
	GetReuseText(ctx context.Context, userID string) (string, error)
}

// Endpoints configures the remote providers.
type Endpoints struct {
	LibreTranslateURL string
	LingvaURL         string
	YandexURL         string
	YandexAPIKey      string
}

// Service runs the fallback chain.
type Service struct {
	providers []Provider
	timeout   time.Duration
	store     Store
	logger    *zap.Logger
	now       func() time.Time
}

// NewProviders builds the chain LibreTranslate, Lingva, Yandex, skipping
// providers without an endpoint.
func NewProviders(e Endpoints, client *http.Client) []Provider {
	if client == nil {
		client = &http.Client{}
	}
	var providers []Provider
	if e.LibreTranslateURL != "" {
		providers = append(providers, &LibreTranslate{Endpoint: e.LibreTranslateURL, Client: client})
	}
	if e.LingvaURL != "" {
		providers = append(providers, &Lingva{BaseURL: e.LingvaURL, Client: client})
	}
	if e.YandexURL != "" {
		providers = append(providers, &Yandex{Endpoint: e.YandexURL, APIKey: e.YandexAPIKey, Client: client})
	}
	return providers
}

// NewService creates a translation service. timeout bounds each provider call.
func NewService(providers []Provider, timeout time.Duration, store Store, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		providers: providers,
		timeout:   timeout,
		store:     store,
		logger:    logger,
		now:       time.Now,
	}
}

// Translate never fails because of a provider: when every provider and the
// dictionary miss, the original text is returned.
func (s *Service) Translate(ctx context.Context, userID string, req models.TranslateRequest) models.TranslationEntry {
	source := normalizeLang(req.Source)
	target := normalizeLang(req.Target)
	entry := models.TranslationEntry{
		Source:    source,
		Target:    target,
		Original:  req.Text,
		CreatedAt: s.now(),
	}

	text := strings.TrimSpace(req.Text)
	if text == "" || source == target {
		entry.Translated = req.Text
		entry.Provider = ProviderNone
		return entry
	}

	entry.Translated, entry.Provider = s.translate(ctx, text, source, target)
	if entry.Provider != ProviderNone {
		s.remember(ctx, userID, entry)
	}
	return entry
}

func (s *Service) translate(ctx context.Context, text, source, target string) (string, string) {
	for _, p := range s.providers {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		out, err := p.Translate(callCtx, text, source, target)
		cancel()
		if err == nil && strings.TrimSpace(out) != "" {
			return out, p.Name()
		}
		s.logger.Debug("Translation provider failed",
			zap.String("provider", p.Name()),
			zap.Error(err))
	}
	if out, ok := lookupPhrase(text, target); ok {
		return out, ProviderDictionary
	}
	s.logger.Info("All translation providers failed, returning original text",
		zap.String("target", target))
	return text, ProviderNone
}

func (s *Service) remember(ctx context.Context, userID string, entry models.TranslationEntry) {
	if s.store == nil || userID == "" {
		return
	}
	if err := s.store.PushTranslation(ctx, userID, entry); err != nil {
		s.logger.Warn("Failed to store translation history", zap.Error(err))
	}
	if err := s.store.SetReuseText(ctx, userID, entry.Translated); err != nil {
		s.logger.Warn("Failed to store reuse text", zap.Error(err))
	}
}

// History returns the user's translations, newest first, and the last
// translated text.
func (s *Service) History(ctx context.Context, userID string) ([]models.TranslationEntry, string, error) {
	history, err := s.store.TranslationHistory(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	reuse, err := s.store.GetReuseText(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if len(history) > models.MaxTranslationHistory {
		history = history[:models.MaxTranslationHistory]
	}
	return history, reuse, nil
}

// normalizeLang reduces a language tag to its base code. Empty or
// unparseable tags mean auto-detect.
func normalizeLang(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, autoDetect) {
		return autoDetect
	}
	tag, err := language.Parse(code)
	if err != nil {
		return autoDetect
	}
	base, _ := tag.Base()
	return base.String()
}
