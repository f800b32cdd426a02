package handlers

import "travellocal/middleware"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Tokens keeps the caller's latest verified access token.
	Tokens middleware.TokenStore

	// Verifier confirms tokens with the backend when JWT_SECRET is not set.
	Verifier middleware.TokenVerifier

	Calendar    *CalendarHandler
	Tour        *TourHandler
	Translation *TranslationHandler
	Tourism     *TourismHandler
	Device      *DeviceHandler
	Chat        *ChatHandler
}
