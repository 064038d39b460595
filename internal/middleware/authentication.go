package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wanderquest-labs/backend/internal/model"
	"github.com/wanderquest-labs/backend/pkg/authenticator"
	"github.com/wanderquest-labs/backend/pkg/errorx"
	"github.com/wanderquest-labs/backend/pkg/router"
	"github.com/wanderquest-labs/backend/pkg/xcontext"
)

// Authentication verifies the access token from the Authorization header or
// the auth cookie and attaches the user id to the context.
func Authentication() router.MiddlewareFunc {
	return func(ctx context.Context, r *http.Request) (context.Context, error) {
		token := getAccessToken(ctx, r)
		if token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to login before")
		}

		engine := authenticator.NewTokenEngine[model.AccessToken](xcontext.Configs(ctx).Auth)
		info, err := engine.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, info.ID), nil
	}
}

func getAccessToken(ctx context.Context, r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	auth, token, found := strings.Cut(authorization, " ")
	if found {
		if auth == "Bearer" {
			return token
		}

		return ""
	}

	cookie, err := r.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
