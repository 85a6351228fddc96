package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/skillgraph/internal/domain"
)

type contextKey string

const (
	leagueContextKey contextKey = "league"
	leagueSlotKey    contextKey = "league_slot"
)

type leagueSlot struct {
	league *domain.League
}

func LeagueFromContext(ctx context.Context) *domain.League {
	l, _ := ctx.Value(leagueContextKey).(*domain.League)
	return l
}

// WithLeague returns a copy of ctx carrying l.
func WithLeague(ctx context.Context, l *domain.League) context.Context {
	if slot, ok := ctx.Value(leagueSlotKey).(*leagueSlot); ok {
		slot.league = l
	}
	return context.WithValue(ctx, leagueContextKey, l)
}

func APIKeyAuth(leagueStore domain.LeagueStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			league, err := leagueStore.GetByAPIKeyHash(r.Context(), HashAPIKey(parts[1]))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithLeague(r.Context(), league)))
		})
	}
}

// HashAPIKey is the form API keys are stored and looked up in.
func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
