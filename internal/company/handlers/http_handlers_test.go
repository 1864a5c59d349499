package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gartstein/olt/internal/company/auth"
	"github.com/gartstein/olt/internal/company/models"
	"github.com/gartstein/olt/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testSecret = "test-secret"

type fakeInfo struct {
	name string
	info *models.CompanyInfo
}

func (f *fakeInfo) CompanyName(_ context.Context) string {
	return f.name
}

func (f *fakeInfo) CompanyInfo(_ context.Context) *models.CompanyInfo {
	return f.info
}

// fakeStore is an in-memory SettingsStore.
type fakeStore struct {
	mu    sync.Mutex
	state models.AppState
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: models.DefaultAppState()}
}

func (f *fakeStore) State() models.AppState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeStore) SetLocale(locale models.Locale) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Locale = locale
}

func (f *fakeStore) SetCompany(patch models.CompanySettingsPatch) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Company = f.state.Company.Merge(patch)
}

func newTestHandler(t *testing.T, info *fakeInfo, store *fakeStore) http.Handler {
	h := NewSettingsHandler(info, store, zaptest.NewLogger(t))
	mux, err := h.NewGatewayMux()
	require.NoError(t, err, "NewGatewayMux should succeed")
	return auth.HTTPMiddleware(mux, testSecret)
}

func bearer(t *testing.T) string {
	token, err := auth.GenerateToken("operator", testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, handler http.Handler, method, path, body, authorization string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSettingsHandler_GetCompanyName(t *testing.T) {
	handler := newTestHandler(t, &fakeInfo{name: models.DefaultCompanyName}, newFakeStore())

	rec := do(t, handler, http.MethodGet, "/v1/company/name", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"OLT RADIUS"}`, rec.Body.String())
}

func TestSettingsHandler_GetCompanyInfo(t *testing.T) {
	info := &fakeInfo{info: models.FallbackCompanyInfo("https://olt.test")}
	handler := newTestHandler(t, info, newFakeStore())

	rec := do(t, handler, http.MethodGet, "/v1/company/info", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"OLT RADIUS","baseUrl":"https://olt.test"}`, rec.Body.String())
}

func TestSettingsHandler_GetSettings(t *testing.T) {
	handler := newTestHandler(t, &fakeInfo{}, newFakeStore())

	rec := do(t, handler, http.MethodGet, "/v1/settings", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var state models.AppState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, models.DefaultAppState(), state)
}

func TestSettingsHandler_SetLocale(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		auth       bool
		wantStatus int
		wantLocale models.Locale
	}{
		{
			name:       "valid locale",
			body:       `{"locale":"en"}`,
			auth:       true,
			wantStatus: http.StatusOK,
			wantLocale: models.LocaleEN,
		},
		{
			name:       "unsupported locale",
			body:       `{"locale":"fr"}`,
			auth:       true,
			wantStatus: http.StatusBadRequest,
			wantLocale: models.LocaleID,
		},
		{
			name:       "malformed body",
			body:       `{"locale":`,
			auth:       true,
			wantStatus: http.StatusBadRequest,
			wantLocale: models.LocaleID,
		},
		{
			name:       "missing token",
			body:       `{"locale":"en"}`,
			wantStatus: http.StatusUnauthorized,
			wantLocale: models.LocaleID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			handler := newTestHandler(t, &fakeInfo{}, store)
			authorization := ""
			if tt.auth {
				authorization = bearer(t)
			}

			rec := do(t, handler, http.MethodPut, "/v1/settings/locale", tt.body, authorization)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantLocale, store.State().Locale)
		})
	}
}

func TestSettingsHandler_SetCompany(t *testing.T) {
	t.Run("merges given fields", func(t *testing.T) {
		store := newFakeStore()
		handler := newTestHandler(t, &fakeInfo{}, store)
		before := store.State().Company

		rec := do(t, handler, http.MethodPatch, "/v1/settings/company", `{"email":"x@y.com"}`, bearer(t))

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		expected := before
		expected.Email = "x@y.com"
		assert.Equal(t, expected, store.State().Company)

		var state models.AppState
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
		assert.Equal(t, "x@y.com", state.Company.Email)
	})

	t.Run("empty object is a no-op", func(t *testing.T) {
		store := newFakeStore()
		handler := newTestHandler(t, &fakeInfo{}, store)
		before := store.State()

		rec := do(t, handler, http.MethodPatch, "/v1/settings/company", `{}`, bearer(t))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, before, store.State())
	})

	t.Run("base URL may be cleared", func(t *testing.T) {
		store := newFakeStore()
		store.SetCompany(models.CompanySettingsPatch{BaseURL: utils.Ptr("https://olt.test")})
		handler := newTestHandler(t, &fakeInfo{}, store)

		rec := do(t, handler, http.MethodPatch, "/v1/settings/company", `{"baseUrl":""}`, bearer(t))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "", store.State().Company.BaseURL)
	})

	invalid := []struct {
		name string
		body string
	}{
		{"invalid email", `{"email":"not-an-email"}`},
		{"empty name", `{"name":""}`},
		{"invalid base URL", `{"baseUrl":"::nope"}`},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			handler := newTestHandler(t, &fakeInfo{}, store)

			rec := do(t, handler, http.MethodPatch, "/v1/settings/company", tt.body, bearer(t))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, models.DefaultAppState(), store.State())
		})
	}

	t.Run("missing token", func(t *testing.T) {
		store := newFakeStore()
		handler := newTestHandler(t, &fakeInfo{}, store)

		rec := do(t, handler, http.MethodPatch, "/v1/settings/company", `{"email":"x@y.com"}`, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSettingsHandler_DirectCallWithoutRoutes(t *testing.T) {
	store := newFakeStore()
	h := NewSettingsHandler(&fakeInfo{}, store, zaptest.NewLogger(t))
	req := httptest.NewRequest(http.MethodPut, "/v1/settings/locale", strings.NewReader(`{"locale":`))
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		h.SetLocale(rec, req, nil)
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.LocaleID, store.State().Locale)
}
