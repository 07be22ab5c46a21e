package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/model"
	"tradejournal/src/repository"
	"tradejournal/src/stats"
)

// tradeStore is the repository surface the trade handlers need.
type tradeStore interface {
	List(ctx context.Context, userID string) ([]model.Trade, error)
	ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]model.Trade, error)
	Get(ctx context.Context, userID, id string) (*model.Trade, error)
	Create(ctx context.Context, trade *model.Trade) error
	Update(ctx context.Context, userID, id string, patch model.TradeUpdate) (*model.Trade, error)
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (stats.AggregateStats, error)
}

const dateLayout = "2006-01-02"

// ListTradesHandler returns the authenticated user's trades, newest
// first. Optional `from` and `to` query params (YYYY-MM-DD, inclusive)
// restrict the trade-date range; both must be supplied together.
func ListTradesHandler(repo tradeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		fromParam := r.URL.Query().Get("from")
		toParam := r.URL.Query().Get("to")

		var trades []model.Trade
		var err error

		switch {
		case fromParam == "" && toParam == "":
			trades, err = repo.List(r.Context(), user.ID)
		case fromParam != "" && toParam != "":
			var from, to time.Time
			if from, err = time.Parse(dateLayout, fromParam); err != nil {
				http.Error(w, "invalid from date", http.StatusBadRequest)
				return
			}
			if to, err = time.Parse(dateLayout, toParam); err != nil {
				http.Error(w, "invalid to date", http.StatusBadRequest)
				return
			}
			trades, err = repo.ListByDateRange(r.Context(), user.ID, from, to)
		default:
			http.Error(w, "from and to must be supplied together", http.StatusBadRequest)
			return
		}

		if err != nil {
			logger.WithError(err).Error("failed to list trades")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, trades)
	}
}

// CreateTradeHandler persists a new trade for the authenticated user
// and returns the full stored record, including the generated ID and
// trade number.
func CreateTradeHandler(repo tradeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var payload model.CreateTradePayload
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid create trade payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		trade := payload.ToTrade(user.ID)

		if err := repo.Create(r.Context(), trade); err != nil {
			writeRepoError(w, err, "create trade")
			return
		}

		writeJSON(w, http.StatusCreated, trade)
	}
}

// GetTradeHandler fetches a single trade by ID.
func GetTradeHandler(repo tradeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		trade, err := repo.Get(r.Context(), user.ID, chi.URLParam(r, "id"))
		if err != nil {
			writeRepoError(w, err, "get trade")
			return
		}

		writeJSON(w, http.StatusOK, trade)
	}
}

// UpdateTradeHandler merges the supplied fields into an existing trade
// and returns the updated record.
func UpdateTradeHandler(repo tradeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var patch model.TradeUpdate
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&patch); err != nil {
			logger.WithError(err).Warn("invalid update trade payload")
			http.Error(w, "Invalid payload", http.StatusBadRequest)
			return
		}

		trade, err := repo.Update(r.Context(), user.ID, chi.URLParam(r, "id"), patch)
		if err != nil {
			writeRepoError(w, err, "update trade")
			return
		}

		writeJSON(w, http.StatusOK, trade)
	}
}

// DeleteTradeHandler removes a trade. Deleting is idempotent from the
// client's perspective: a missing row still yields 204.
func DeleteTradeHandler(repo tradeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		err := repo.Delete(r.Context(), user.ID, chi.URLParam(r, "id"))
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			writeRepoError(w, err, "delete trade")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// StatsHandler returns the aggregate statistics over the user's whole
// journal. Decimal values are rounded to two places for display here;
// the underlying computation keeps full precision.
func StatsHandler(repo tradeStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.GetUserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		s, err := repo.Stats(r.Context(), user.ID)
		if err != nil {
			writeRepoError(w, err, "compute stats")
			return
		}

		s.WinRate = s.WinRate.Round(2)
		s.TotalProfit = s.TotalProfit.Round(2)
		s.TotalLoss = s.TotalLoss.Round(2)
		s.NetPnL = s.NetPnL.Round(2)
		s.AvgRMultiple = s.AvgRMultiple.Round(2)

		writeJSON(w, http.StatusOK, s)
	}
}

func writeRepoError(w http.ResponseWriter, err error, op string) {
	var vErr *repository.ValidationError
	switch {
	case errors.As(err, &vErr):
		http.Error(w, vErr.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	default:
		logger.WithError(err).Errorf("failed to %s", op)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}
