package models

import "time"

// MaxTranslationHistory caps the stored translation history.
const MaxTranslationHistory = 100

// TranslateRequest is the body of a translation call.
type TranslateRequest struct {
	Text   string `json:"text" binding:"required"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// TranslationEntry is one translation kept in the user's history.
type TranslationEntry struct {
	Source     string    `json:"source"`
	Target     string    `json:"target"`
	Original   string    `json:"original"`
	Translated string    `json:"translated"`
	Provider   string    `json:"provider"`
	CreatedAt  time.Time `json:"createdAt"`
}
