package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradejournal/src/database"
	"tradejournal/src/derive"
	"tradejournal/src/model"
	"tradejournal/src/stats"
)

// TradeRepository handles read/write operations for journalled trades.
// Every query is scoped by the owning user's ID.
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new repository instance using the main
// read/write database.
func NewTradeRepository() *TradeRepository {
	logger.WithField("component", "TradeRepository").
		Info("Creating new TradeRepository with MainDB")

	return &TradeRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *TradeRepository) WithDB(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// List returns every trade for the user, newest trade date first.
func (r *TradeRepository) List(
	ctx context.Context,
	userID string,
) ([]model.Trade, error) {

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "List",
		"user_id": userID,
	}).Debug("Fetching trades for user")

	var trades []model.Trade

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("trade_date DESC, trade_number DESC").
		Find(&trades).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "List",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch trades")

		return nil, &StoreError{Op: "list trades", Err: err}
	}

	return trades, nil
}

// ListByDateRange returns the user's trades with trade_date between
// start and end, bounds inclusive, newest trade date first.
func (r *TradeRepository) ListByDateRange(
	ctx context.Context,
	userID string,
	start, end time.Time,
) ([]model.Trade, error) {

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "ListByDateRange",
		"user_id": userID,
		"start":   start.Format("2006-01-02"),
		"end":     end.Format("2006-01-02"),
	}).Debug("Fetching trades for user in date range")

	var trades []model.Trade

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND trade_date >= ? AND trade_date <= ?", userID, start, end).
		Order("trade_date DESC, trade_number DESC").
		Find(&trades).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "ListByDateRange",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch trades in date range")

		return nil, &StoreError{Op: "list trades by date range", Err: err}
	}

	return trades, nil
}

// Get fetches a single trade by ID, scoped to the user.
// Returns ErrNotFound when no row matches.
func (r *TradeRepository) Get(
	ctx context.Context,
	userID string,
	id string,
) (*model.Trade, error) {

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "Get",
		"user_id": userID,
		"id":      id,
	}).Debug("Fetching trade by ID")

	var trade model.Trade

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&trade).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "Get",
			"user_id": userID,
			"id":      id,
		}).WithError(err).Error("Failed to fetch trade by ID")

		return nil, &StoreError{Op: "get trade", Err: err}
	}

	return &trade, nil
}

// Create validates and persists a new trade. The given trade is
// updated with the generated ID, per-user trade number and creation
// timestamp. Derived fields are recomputed before the insert.
func (r *TradeRepository) Create(
	ctx context.Context,
	trade *model.Trade,
) error {

	if err := validateTrade(trade); err != nil {
		return err
	}

	if trade.Direction == "" {
		trade.Direction = model.DirectionLong
	}
	derive.Apply(trade)

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "Create",
		"user_id": trade.UserID,
		"coin":    trade.Coin,
	}).Debug("Creating new trade")

	// The trade number is a per-user monotonic sequence, assigned in
	// the same transaction as the insert.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxNumber int
		if err := tx.Model(&model.Trade{}).
			Where("user_id = ?", trade.UserID).
			Select("COALESCE(MAX(trade_number), 0)").
			Scan(&maxNumber).Error; err != nil {
			return err
		}

		trade.TradeNumber = maxNumber + 1

		return tx.Create(trade).Error
	})

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "Create",
			"user_id": trade.UserID,
		}).WithError(err).Error("Failed to create trade")

		return &StoreError{Op: "create trade", Err: err}
	}

	logger.WithFields(map[string]interface{}{
		"repo":         "TradeRepository",
		"op":           "Create",
		"trade_id":     trade.ID,
		"trade_number": trade.TradeNumber,
	}).Info("Trade created successfully")

	return nil
}

// Update merges the supplied fields into the stored record, recomputes
// derived fields and saves. Returns ErrNotFound when the trade does
// not exist for this user.
func (r *TradeRepository) Update(
	ctx context.Context,
	userID string,
	id string,
	patch model.TradeUpdate,
) (*model.Trade, error) {

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "Update",
		"user_id": userID,
		"id":      id,
	}).Debug("Updating trade")

	trade, err := r.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch.ApplyTo(trade)

	if err := validateTrade(trade); err != nil {
		return nil, err
	}

	derive.Apply(trade)

	if err := r.db.WithContext(ctx).Save(trade).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "Update",
			"user_id": userID,
			"id":      id,
		}).WithError(err).Error("Failed to update trade")

		return nil, &StoreError{Op: "update trade", Err: err}
	}

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "Update",
		"user_id": userID,
		"id":      id,
	}).Info("Trade updated successfully")

	return trade, nil
}

// Delete removes the trade. Returns ErrNotFound when no row was
// deleted; callers may treat that as success.
func (r *TradeRepository) Delete(
	ctx context.Context,
	userID string,
	id string,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "Delete",
		"user_id": userID,
		"id":      id,
	}).Debug("Deleting trade")

	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Trade{})

	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "TradeRepository",
			"op":      "Delete",
			"user_id": userID,
			"id":      id,
		}).WithError(res.Error).Error("Failed to delete trade")

		return &StoreError{Op: "delete trade", Err: res.Error}
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	logger.WithFields(map[string]interface{}{
		"repo":    "TradeRepository",
		"op":      "Delete",
		"user_id": userID,
		"id":      id,
	}).Info("Trade deleted successfully")

	return nil
}

// Stats fetches all of the user's trades and folds them into
// aggregate statistics. Recomputed in full on every call.
func (r *TradeRepository) Stats(
	ctx context.Context,
	userID string,
) (stats.AggregateStats, error) {

	trades, err := r.List(ctx, userID)
	if err != nil {
		return stats.AggregateStats{}, err
	}

	return stats.Compute(trades), nil
}

// validateTrade enforces the required-field rules checked before any
// store call: non-empty coin, positive average entry, present date.
func validateTrade(t *model.Trade) error {
	if strings.TrimSpace(t.Coin) == "" {
		return &ValidationError{Field: "coin", Reason: "must not be empty"}
	}
	if !t.AvgEntry.IsPositive() {
		return &ValidationError{Field: "avg_entry", Reason: "must be a positive number"}
	}
	if t.TradeDate.IsZero() {
		return &ValidationError{Field: "trade_date", Reason: "is required"}
	}
	return nil
}
