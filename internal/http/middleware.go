package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

type contextKey string

const (
	ctxKeyCustomer  contextKey = "customer"
	ctxKeySessionID contextKey = "session_id"
	ctxKeyRequestID contextKey = "request_id"

	sessionCookie = "cardapio_session"
)

// MockAuthMiddleware simulates the identity collaborator (replace with real
// auth). Every request is treated as a signed-in shopper with a fixed
// profile, which is what lets the AUTH step auto-advance.
func MockAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		customer := domain.Customer{
			Name:    "João Silva",
			Contact: "+55 11 91234-5678",
		}

		ctx := context.WithValue(r.Context(), ctxKeyCustomer, customer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionMiddleware resolves the shopper session from a cookie, minting one
// on first contact.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		} else {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				MaxAge:   int((90 * 24 * time.Hour).Seconds()),
			})
		}

		ctx := context.WithValue(r.Context(), ctxKeySessionID, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func customerFromContext(ctx context.Context) domain.Customer {
	if customer, ok := ctx.Value(ctxKeyCustomer).(domain.Customer); ok {
		return customer
	}
	return domain.Customer{}
}

func sessionIDFromContext(ctx context.Context) string {
	if sessionID, ok := ctx.Value(ctxKeySessionID).(string); ok {
		return sessionID
	}
	return ""
}
