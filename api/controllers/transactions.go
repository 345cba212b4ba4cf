package controllers

import (
	"net/http"
	"strings"

	"github.com/motorclubhq/clubhub-backend/api/responses"
	"github.com/motorclubhq/clubhub-backend/api/validators"
	"github.com/motorclubhq/clubhub-backend/internal/transactions"
	pkgerrors "github.com/motorclubhq/clubhub-backend/pkg/errors"
	"github.com/motorclubhq/clubhub-backend/pkg/logger"
	"github.com/motorclubhq/clubhub-backend/pkg/pagination"
)

// ListTransactions returns a cursor-paginated page of the club's payment
// ledger, newest first.
func ListTransactions(repo *transactions.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		clubID, err := clubIDParam(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.QueryIntDefault(r, "limit", pagination.DefaultLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		cursor := strings.TrimSpace(r.URL.Query().Get("cursor"))
		if _, err := pagination.ParseCursor(cursor); err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "cursor is not valid"))
			return
		}

		rows, next, err := repo.ListByClub(ctx, clubID, pagination.Params{Limit: limit, Cursor: cursor})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"transactions": rows,
			"next_cursor":  next,
		})
	}
}
