package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/motorclubhq/clubhub-backend/api/responses"
	"github.com/motorclubhq/clubhub-backend/pkg/enums"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
)

// RequireClubAccess binds club-scoped routes to the caller's own club. A
// token carrying a club claim must match the clubID path parameter; tokens
// without a club claim are platform operators and need the admin role.
func RequireClubAccess(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claimClub := ClubIDFromContext(ctx)
			if claimClub == "" {
				if RoleFromContext(ctx) != string(enums.MemberRoleAdmin) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "club context required"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if claimClub != chi.URLParam(r, "clubID") {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "club access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
