// This is a development token issuer: it mints the bearer tokens required by
// the settings mutation routes of the company service.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gartstein/olt/internal/company/auth"
	"go.uber.org/zap"
)

const (
	defaultPort    = "8081"       // Default port for the token issuer
	defaultSecret  = "jwt_secret" // Secret for signing JWT
	defaultSubject = "operator"
	tokenTTL       = 24 * time.Hour
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token string `json:"token"`
}

func tokenHandler(secret string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := r.URL.Query().Get("sub")
		if subject == "" {
			subject = defaultSubject
		}

		token, err := auth.GenerateToken(subject, secret, tokenTTL)
		if err != nil {
			logger.Error("Failed to generate token", zap.Error(err))
			http.Error(w, "Failed to generate token", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(TokenResponse{Token: token}); err != nil {
			logger.Error("Failed to encode token", zap.Error(err))
		}
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	secret := envOr("OLT_JWT_SECRET", defaultSecret)
	port := envOr("OLT_AUTH_PORT", defaultPort)

	mux := http.NewServeMux()
	mux.HandleFunc("/token", tokenHandler(secret, logger))

	logger.Info("Token issuer running", zap.String("port", port))
	server := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("Token issuer stopped", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
