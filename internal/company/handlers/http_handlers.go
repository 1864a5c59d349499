package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gartstein/olt/internal/company/auth"
	e "github.com/gartstein/olt/internal/company/errors"
	"github.com/gartstein/olt/internal/company/models"
	"github.com/go-playground/validator/v10"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
)

// CompanyInfoProvider is the read side backed by the company store.
type CompanyInfoProvider interface {
	CompanyName(ctx context.Context) string
	CompanyInfo(ctx context.Context) *models.CompanyInfo
}

// SettingsStore is the persisted application settings container.
type SettingsStore interface {
	State() models.AppState
	SetLocale(locale models.Locale)
	SetCompany(patch models.CompanySettingsPatch)
}

// SettingsHandler serves company info and settings over HTTP.
type SettingsHandler struct {
	info      CompanyInfoProvider
	store     SettingsStore
	validate  *validator.Validate
	marshaler runtime.Marshaler
	mux       *runtime.ServeMux
	logger    *zap.Logger
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(info CompanyInfoProvider, store SettingsStore, logger *zap.Logger) *SettingsHandler {
	h := &SettingsHandler{
		info:     info,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		marshaler: &runtime.JSONPb{
			MarshalOptions:   protojson.MarshalOptions{EmitUnpopulated: true},
			UnmarshalOptions: protojson.UnmarshalOptions{DiscardUnknown: true},
		},
		logger: logger.Named("http_handler"),
	}
	h.mux = runtime.NewServeMux(runtime.WithMarshalerOption(runtime.MIMEWildcard, h.marshaler))
	return h
}

// NewGatewayMux registers every route on the handler's mux and returns it.
// It must be called once per handler.
func (h *SettingsHandler) NewGatewayMux() (*runtime.ServeMux, error) {
	mux := h.mux

	routes := []struct {
		method  string
		pattern string
		handler runtime.HandlerFunc
	}{
		{http.MethodGet, "/v1/company/name", h.GetCompanyName},
		{http.MethodGet, "/v1/company/info", h.GetCompanyInfo},
		{http.MethodGet, "/v1/settings", h.GetSettings},
		{http.MethodPut, "/v1/settings/locale", h.SetLocale},
		{http.MethodPatch, "/v1/settings/company", h.SetCompany},
	}
	for _, route := range routes {
		if err := mux.HandlePath(route.method, route.pattern, route.handler); err != nil {
			return nil, fmt.Errorf("failed to register %s %s: %w", route.method, route.pattern, err)
		}
	}
	return mux, nil
}

// GetCompanyName returns the company display name. It never fails.
func (h *SettingsHandler) GetCompanyName(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	h.writeJSON(w, http.StatusOK, companyNameResponse{Name: h.info.CompanyName(r.Context())})
}

// GetCompanyInfo returns the stored company record or its fallback.
func (h *SettingsHandler) GetCompanyInfo(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	h.writeJSON(w, http.StatusOK, h.info.CompanyInfo(r.Context()))
}

// GetSettings returns the current application settings.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, _ *http.Request, _ map[string]string) {
	h.writeJSON(w, http.StatusOK, h.store.State())
}

// SetLocale replaces the UI locale.
func (h *SettingsHandler) SetLocale(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req setLocaleRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.store.SetLocale(models.Locale(req.Locale))
	h.logger.Info("Locale updated",
		zap.String("locale", req.Locale),
		zap.String("subject", subject(r.Context())),
	)
	h.writeJSON(w, http.StatusOK, h.store.State())
}

// SetCompany merges the given fields into the company settings.
func (h *SettingsHandler) SetCompany(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	var req companyPatchRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.store.SetCompany(req.toPatch())
	h.logger.Info("Company settings updated", zap.String("subject", subject(r.Context())))
	h.writeJSON(w, http.StatusOK, h.store.State())
}

func (h *SettingsHandler) decode(r *http.Request, v interface{}) error {
	if err := h.marshaler.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", e.ErrInvalidInput, err)
	}
	if err := h.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", e.ErrInvalidInput, err)
	}
	return nil
}

func (h *SettingsHandler) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	body, err := h.marshaler.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", h.marshaler.ContentType(v))
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		h.logger.Warn("Failed to write response", zap.Error(err))
	}
}

func (h *SettingsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	runtime.HTTPError(r.Context(), h.mux, h.marshaler, w, r, h.mapServiceError(err))
}

func subject(ctx context.Context) string {
	sub, ok := auth.SubjectFromContext(ctx)
	if !ok {
		return "anonymous"
	}
	return sub
}
