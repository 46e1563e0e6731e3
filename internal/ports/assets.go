package ports

import "github.com/MateoFB/TarotPoetico-Tablero/internal/domain"

// AssetResolver maps a card, art style and face to a displayable URL.
type AssetResolver interface {
	// CardURL returns the image URL for one face of a card in a style.
	CardURL(card domain.Card, style domain.Style, face domain.Face) string

	// PlaceholderURL is the cosmetic stand-in a client renders when the real
	// asset fails to load, labeled with the card's display name. Load
	// failures never reach core state.
	PlaceholderURL(card domain.Card) string

	// Styles lists the registered style keys in registry order.
	Styles() []domain.Style

	// HasStyle reports whether a style key is registered.
	HasStyle(s domain.Style) bool
}
