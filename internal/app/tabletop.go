package app

import (
	"fmt"
	"strings"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/domain"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/ports"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/protocol"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/qrcode"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/session"
)

// CreateTableRequest is the application-level input (no HTTP types). Empty
// fields fall back to the configured defaults.
type CreateTableRequest struct {
	Style  string
	Filter string
}

// CreateTableResponse describes the freshly dealt table.
type CreateTableResponse struct {
	ID      string
	Style   domain.Style
	Filter  domain.Filter
	JoinURL string
}

// TableService orchestrates table sessions, the asset resolver and the share
// surface.
type TableService struct {
	manager      *session.Manager
	resolver     ports.AssetResolver
	baseURL      string
	defaultStyle domain.Style
}

func NewTableService(manager *session.Manager, resolver ports.AssetResolver, baseURL string, defaultStyle domain.Style) *TableService {
	return &TableService{
		manager:      manager,
		resolver:     resolver,
		baseURL:      strings.TrimRight(baseURL, "/"),
		defaultStyle: defaultStyle,
	}
}

// CreateTable validates the request and deals a new table.
func (s *TableService) CreateTable(req CreateTableRequest) (CreateTableResponse, error) {
	style, err := s.resolveStyle(req.Style)
	if err != nil {
		return CreateTableResponse{}, err
	}
	filter, err := domain.ParseFilter(req.Filter)
	if err != nil {
		return CreateTableResponse{}, err
	}

	sess := s.manager.Create(style, filter)
	return CreateTableResponse{
		ID:      sess.ID,
		Style:   style,
		Filter:  filter,
		JoinURL: s.JoinURL(sess.ID),
	}, nil
}

// Snapshot returns the shared table state.
func (s *TableService) Snapshot(id string) (protocol.TableState, error) {
	sess, ok := s.manager.Get(id)
	if !ok {
		return protocol.TableState{}, domain.ErrTableNotFound
	}
	st, err := sess.Snapshot()
	if err != nil {
		return protocol.TableState{}, fmt.Errorf("snapshot table %s: %w", id, err)
	}
	return st, nil
}

// Reshuffle collects every placed card back into the deck and reshuffles.
func (s *TableService) Reshuffle(id string) error {
	sess, ok := s.manager.Get(id)
	if !ok {
		return domain.ErrTableNotFound
	}
	return sess.Collect()
}

// SetFilter repartitions the table's pile and reserve.
func (s *TableService) SetFilter(id, raw string) error {
	sess, ok := s.manager.Get(id)
	if !ok {
		return domain.ErrTableNotFound
	}
	filter, err := domain.ParseFilter(raw)
	if err != nil {
		return err
	}
	return sess.SetFilter(filter)
}

// SetStyle re-skins the table's deck in place.
func (s *TableService) SetStyle(id, raw string) error {
	sess, ok := s.manager.Get(id)
	if !ok {
		return domain.ErrTableNotFound
	}
	style, err := s.resolveStyle(raw)
	if err != nil {
		return err
	}
	return sess.SetStyle(style)
}

// Reset re-deals the table from scratch: the universal recovery action.
func (s *TableService) Reset(id string, req CreateTableRequest) error {
	sess, ok := s.manager.Get(id)
	if !ok {
		return domain.ErrTableNotFound
	}
	style, err := s.resolveStyle(req.Style)
	if err != nil {
		return err
	}
	filter, err := domain.ParseFilter(req.Filter)
	if err != nil {
		return err
	}
	return sess.Reset(style, filter)
}

// Styles lists the deck styles the resolver knows.
func (s *TableService) Styles() []domain.Style {
	return s.resolver.Styles()
}

// JoinURL is the shareable link to a table.
func (s *TableService) JoinURL(id string) string {
	return fmt.Sprintf("%s/v1/tables/%s", s.baseURL, id)
}

// JoinQR renders the join link as a QR PNG.
func (s *TableService) JoinQR(id string) ([]byte, error) {
	if _, ok := s.manager.Get(id); !ok {
		return nil, domain.ErrTableNotFound
	}
	png, err := qrcode.Generate(s.JoinURL(id))
	if err != nil {
		return nil, fmt.Errorf("render join QR: %w", err)
	}
	return png, nil
}

func (s *TableService) resolveStyle(raw string) (domain.Style, error) {
	if raw == "" {
		return s.defaultStyle, nil
	}
	style := domain.Style(raw)
	if !s.resolver.HasStyle(style) {
		return "", domain.ErrUnknownStyle
	}
	return style, nil
}
