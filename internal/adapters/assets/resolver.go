// Package assets resolves card art URLs from an embedded style registry.
package assets

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/domain"
)

//go:embed data/styles.json
var styleFS embed.FS

// styleEntry mirrors one entry of data/styles.json.
type styleEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	BasePath string `json:"basePath"`
	Ext      string `json:"ext"`
	Back     string `json:"back"`
}

// Registry implements ports.AssetResolver from the embedded registry. Adding
// a style is a data change: a new entry in styles.json, no code.
type Registry struct {
	styles map[domain.Style]styleEntry
	order  []domain.Style
}

// NewRegistry parses the embedded registry.
func NewRegistry() (*Registry, error) {
	raw, err := styleFS.ReadFile("data/styles.json")
	if err != nil {
		return nil, fmt.Errorf("read embedded style registry: %w", err)
	}
	var entries []styleEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse style registry: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("style registry is empty")
	}

	r := &Registry{styles: make(map[domain.Style]styleEntry, len(entries))}
	for _, e := range entries {
		if e.ID == "" || e.BasePath == "" {
			return nil, fmt.Errorf("style entry %+v missing id or basePath", e)
		}
		id := domain.Style(e.ID)
		if _, dup := r.styles[id]; dup {
			return nil, fmt.Errorf("duplicate style %q", e.ID)
		}
		r.styles[id] = e
		r.order = append(r.order, id)
	}
	return r, nil
}

// CardURL renders the image URL for one face of a card. An unregistered
// style falls back to the placeholder; it never errors, since a missing
// image is a cosmetic problem only.
func (r *Registry) CardURL(card domain.Card, style domain.Style, face domain.Face) string {
	st, ok := r.styles[style]
	if !ok {
		return r.PlaceholderURL(card)
	}
	if face == domain.FaceBack {
		return st.BasePath + "/" + st.Back
	}
	return st.BasePath + "/" + card.AssetKey + st.Ext
}

// PlaceholderURL is the generated stand-in, labeled with the card's display
// name so a missing scan is still identifiable on the table.
func (r *Registry) PlaceholderURL(card domain.Card) string {
	return "/assets/placeholder.svg?label=" + url.QueryEscape(card.DisplayName)
}

// Styles lists registered style keys in registry order.
func (r *Registry) Styles() []domain.Style {
	out := make([]domain.Style, len(r.order))
	copy(out, r.order)
	return out
}

// HasStyle reports whether the style is registered.
func (r *Registry) HasStyle(s domain.Style) bool {
	_, ok := r.styles[s]
	return ok
}
