package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tradejournal/src/model"
)

var tradeColumns = []string{
	"id", "user_id", "trade_number", "trade_date", "coin", "direction",
	"avg_entry", "stop_loss", "risk", "realised_win", "realised_loss",
	"r_multiple", "notes", "created_at",
}

// tradeRow appends one row: the fixed leading columns, then avg_entry,
// stop_loss, risk, realised_win, realised_loss, r_multiple, notes and
// created_at in tradeColumns order.
func tradeRow(rows *sqlmock.Rows, id string, number int, date time.Time, coin string, values ...driver.Value) {
	row := []driver.Value{id, "u1", number, date, coin, "long"}
	row = append(row, values...)
	rows.AddRow(row...)
}

func TestTradeRepositoryList(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(tradeColumns)
	tradeRow(rows, "t2", 2, date, "ETH", "2000", nil, "50", "100", nil, "2", nil, date)
	tradeRow(rows, "t1", 1, date.AddDate(0, 0, -1), "BTC", "65000", nil, nil, nil, nil, nil, nil, date)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE user_id = $1 ORDER BY trade_date DESC, trade_number DESC`)).
		WithArgs("u1").
		WillReturnRows(rows)

	trades, err := repo.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error listing trades: %v", err)
	}

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}

	if trades[0].Coin != "ETH" || trades[1].Coin != "BTC" {
		t.Fatalf("trades not returned in expected order: %+v", trades)
	}

	if trades[0].RMultiple == nil || !trades[0].RMultiple.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected r-multiple 2, got %v", trades[0].RMultiple)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTradeRepositoryListByDateRange(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(tradeColumns)
	tradeRow(rows, "t1", 1, start.AddDate(0, 0, 9), "BTC", "65000", nil, nil, nil, nil, nil, nil, start)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE user_id = $1 AND trade_date >= $2 AND trade_date <= $3 ORDER BY trade_date DESC, trade_number DESC`)).
		WithArgs("u1", start, end).
		WillReturnRows(rows)

	trades, err := repo.ListByDateRange(context.Background(), "u1", start, end)
	if err != nil {
		t.Fatalf("unexpected error listing trades by range: %v", err)
	}

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade in range, got %d", len(trades))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTradeRepositoryGet(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(tradeColumns)
		tradeRow(rows, "t1", 1, date, "BTC", "65000", nil, nil, nil, nil, nil, nil, date)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE id = $1 AND user_id = $2 ORDER BY "trades"."id" LIMIT $3`)).
			WithArgs("t1", "u1", 1).
			WillReturnRows(rows)

		trade, err := repo.Get(context.Background(), "u1", "t1")
		if err != nil {
			t.Fatalf("unexpected error fetching trade: %v", err)
		}
		if trade.ID != "t1" || trade.Coin != "BTC" {
			t.Fatalf("unexpected trade returned: %+v", trade)
		}
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE id = $1 AND user_id = $2 ORDER BY "trades"."id" LIMIT $3`)).
			WithArgs("missing", "u1", 1).
			WillReturnRows(sqlmock.NewRows(tradeColumns))

		_, err := repo.Get(context.Background(), "u1", "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTradeRepositoryCreate(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	risk := decimal.RequireFromString("50")
	win := decimal.RequireFromString("100")
	stop := decimal.RequireFromString("60000")

	trade := &model.Trade{
		UserID:      "u1",
		TradeDate:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Coin:        "BTC",
		AvgEntry:    decimal.RequireFromString("65000"),
		StopLoss:    &stop,
		Risk:        &risk,
		RealisedWin: &win,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(trade_number), 0) FROM "trades" WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "trades"`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), trade); err != nil {
		t.Fatalf("unexpected error creating trade: %v", err)
	}

	if trade.ID == "" {
		t.Fatalf("expected a generated trade ID")
	}
	if trade.TradeNumber != 5 {
		t.Fatalf("expected trade number 5, got %d", trade.TradeNumber)
	}
	if trade.Direction != model.DirectionLong {
		t.Fatalf("expected derived direction long, got %s", trade.Direction)
	}
	if trade.RMultiple == nil || !trade.RMultiple.Equal(decimal.RequireFromString("2")) {
		t.Fatalf("expected derived r-multiple 2, got %v", trade.RMultiple)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTradeRepositoryCreateValidation(t *testing.T) {
	mockDB, _ := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		trade model.Trade
		field string
	}{
		{
			name:  "empty coin",
			trade: model.Trade{UserID: "u1", TradeDate: date, Coin: "  ", AvgEntry: decimal.RequireFromString("1")},
			field: "coin",
		},
		{
			name:  "non-positive entry",
			trade: model.Trade{UserID: "u1", TradeDate: date, Coin: "BTC", AvgEntry: decimal.Zero},
			field: "avg_entry",
		},
		{
			name:  "missing trade date",
			trade: model.Trade{UserID: "u1", Coin: "BTC", AvgEntry: decimal.RequireFromString("1")},
			field: "trade_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(context.Background(), &tt.trade)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.field {
				t.Fatalf("expected validation on %s, got %s", tt.field, vErr.Field)
			}
		})
	}
}

func TestTradeRepositoryUpdate(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(tradeColumns)
	tradeRow(rows, "t1", 1, date, "BTC", "65000", nil, nil, nil, nil, nil, nil, date)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE id = $1 AND user_id = $2 ORDER BY "trades"."id" LIMIT $3`)).
		WithArgs("t1", "u1", 1).
		WillReturnRows(rows)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "trades" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	notes := "followed the plan"
	updated, err := repo.Update(context.Background(), "u1", "t1", model.TradeUpdate{Notes: &notes})
	if err != nil {
		t.Fatalf("unexpected error updating trade: %v", err)
	}

	if updated.Notes == nil || *updated.Notes != notes {
		t.Fatalf("expected notes to be updated, got %v", updated.Notes)
	}
	if updated.Coin != "BTC" {
		t.Fatalf("expected untouched fields to be retained, got coin %q", updated.Coin)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTradeRepositoryUpdateNotFound(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE id = $1 AND user_id = $2 ORDER BY "trades"."id" LIMIT $3`)).
		WithArgs("missing", "u1", 1).
		WillReturnRows(sqlmock.NewRows(tradeColumns))

	notes := "x"
	_, err := repo.Update(context.Background(), "u1", "missing", model.TradeUpdate{Notes: &notes})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTradeRepositoryDelete(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	t.Run("deletes existing row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "trades" WHERE id = $1 AND user_id = $2`)).
			WithArgs("t1", "u1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		if err := repo.Delete(context.Background(), "u1", "t1"); err != nil {
			t.Fatalf("unexpected error deleting trade: %v", err)
		}
	})

	t.Run("reports missing row", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "trades" WHERE id = $1 AND user_id = $2`)).
			WithArgs("missing", "u1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.Delete(context.Background(), "u1", "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestTradeRepositoryStats(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &TradeRepository{db: mockDB}

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(tradeColumns)
	tradeRow(rows, "t1", 1, date, "BTC", "65000", nil, "50", "100", nil, "2", nil, date)
	tradeRow(rows, "t2", 2, date, "ETH", "2000", nil, "20", nil, "40", "-2", nil, date)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "trades" WHERE user_id = $1 ORDER BY trade_date DESC, trade_number DESC`)).
		WithArgs("u1").
		WillReturnRows(rows)

	s, err := repo.Stats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error computing stats: %v", err)
	}

	if s.TotalTrades != 2 || s.Winners != 1 || s.Losers != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if !s.NetPnL.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("net pnl mismatch. got=%s", s.NetPnL.String())
	}
	if !s.AvgRMultiple.Equal(decimal.Zero) {
		t.Fatalf("avg r-multiple mismatch. got=%s", s.AvgRMultiple.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}
