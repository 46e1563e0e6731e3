package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MateoFB/TarotPoetico-Tablero/internal/adapters/assets"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/app"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/domain"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/protocol"
	"github.com/MateoFB/TarotPoetico-Tablero/internal/session"
)

type zeroRNG struct{}

func (zeroRNG) Intn(int) int { return 0 }

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	resolver, err := assets.NewRegistry()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(discard{}, nil))
	manager := session.NewManager(resolver, func() domain.RNG { return zeroRNG{} }, time.Millisecond, time.Millisecond, logger)
	t.Cleanup(manager.Shutdown)
	svc := app.NewTableService(manager, resolver, "http://localhost:8080", "marseille")

	e := echo.New()
	NewHandler(svc).Register(e)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createTable(t *testing.T, e *echo.Echo, body string) TableCreatedResponse {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/v1/tables", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp TableCreatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealthz(t *testing.T) {
	e := newServer(t)
	rec := doJSON(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestListStyles(t *testing.T) {
	e := newServer(t)
	rec := doJSON(e, http.MethodGet, "/v1/styles", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StylesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Styles, "marseille")
	assert.Contains(t, resp.Styles, "rider")
}

func TestCreateTable(t *testing.T) {
	e := newServer(t)

	resp := createTable(t, e, `{"style":"rider","filter":"major"}`)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "rider", resp.Style)
	assert.Equal(t, "major", resp.Filter)
	assert.Equal(t, "http://localhost:8080/v1/tables/"+resp.ID, resp.JoinURL)
}

func TestCreateTable_BadInput(t *testing.T) {
	e := newServer(t)

	rec := doJSON(e, http.MethodPost, "/v1/tables", `{"style":"hologram"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/tables", `{"filter":"court-cards"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/tables", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetTable(t *testing.T) {
	e := newServer(t)
	created := createTable(t, e, `{"filter":"major"}`)

	rec := doJSON(e, http.MethodGet, "/v1/tables/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var st protocol.TableState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "marseille", st.Style)
	assert.Equal(t, 22, st.PileCount)
	assert.Equal(t, 56, st.ReserveCount)
	assert.Empty(t, st.Cards)

	rec = doJSON(e, http.MethodGet, "/v1/tables/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetJoinQR(t *testing.T) {
	e := newServer(t)
	created := createTable(t, e, `{}`)

	rec := doJSON(e, http.MethodGet, "/v1/tables/"+created.ID+"/qr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = doJSON(e, http.MethodGet, "/v1/tables/missing/qr", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReshuffle(t *testing.T) {
	e := newServer(t)
	created := createTable(t, e, `{}`)

	rec := doJSON(e, http.MethodPost, "/v1/tables/"+created.ID+"/reshuffle", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/tables/missing/reshuffle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateFilterAndStyle(t *testing.T) {
	e := newServer(t)
	created := createTable(t, e, `{}`)

	rec := doJSON(e, http.MethodPut, "/v1/tables/"+created.ID+"/filter", `{"filter":"minor"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodPut, "/v1/tables/"+created.ID+"/style", `{"style":"rider"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/tables/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st protocol.TableState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "rider", st.Style)
	assert.Equal(t, "minor", st.Filter)
	assert.Equal(t, 56, st.PileCount)

	rec = doJSON(e, http.MethodPut, "/v1/tables/"+created.ID+"/filter", `{"filter":"court-cards"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPut, "/v1/tables/"+created.ID+"/style", `{"style":"hologram"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReset(t *testing.T) {
	e := newServer(t)
	created := createTable(t, e, `{"filter":"major"}`)

	rec := doJSON(e, http.MethodPost, "/v1/tables/"+created.ID+"/reset", `{"filter":"all"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/tables/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var st protocol.TableState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 78, st.PileCount)

	rec = doJSON(e, http.MethodPost, "/v1/tables/missing/reset", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
