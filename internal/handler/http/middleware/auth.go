package middleware

import (
	"context"
	"net/http"

	"github.com/Yamilyscapa/skyhr-sub000/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	userIDKey         contextKey = "auth_user_id"
	organizationIDKey contextKey = "auth_organization_id"
)

// AuthRequired validates the access token and stashes the caller's
// identity claims on the request context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, "Missing access token")
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != "access" {
				response.Unauthorized(w, "Invalid access token")
				return
			}
			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				response.Unauthorized(w, "Invalid access token")
				return
			}
			organizationID, ok := claims["organization_id"].(string)
			if !ok || organizationID == "" {
				response.Unauthorized(w, "Invalid access token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, organizationIDKey, organizationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// UserID returns the authenticated worker's ID from the request context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// OrganizationID returns the caller's organization from the request
// context.
func OrganizationID(ctx context.Context) string {
	id, _ := ctx.Value(organizationIDKey).(string)
	return id
}
