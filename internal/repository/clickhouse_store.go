package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"LimesMS/internal/domain/models"
	domrepo "LimesMS/internal/domain/repository"
	pkgch "LimesMS/pkg/clickhouse"
	applogger "LimesMS/pkg/logger"
)

// ClickHouseSchema returns the idempotent DDL for the price and history tables.
func ClickHouseSchema(pricesTable, historyTable string) []string {
	return []string{
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol LowCardinality(String),
            kind   LowCardinality(String),
            ts     DateTime64(3, 'UTC'),
            close  Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, kind, ts)`, pricesTable),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            computed_at   DateTime64(3, 'UTC'),
            symbol        LowCardinality(String),
            profile       LowCardinality(String),
            last          Float64,
            z_score       Float64,
            slope_per_day Nullable(Float64),
            forecast      Nullable(Float64),
            risk_score    Float64,
            escalated     UInt8,
            advice        LowCardinality(String)
        ) ENGINE = MergeTree
        PARTITION BY toYYYYMM(computed_at)
        ORDER BY (symbol, computed_at)
        TTL toDateTime(computed_at) + INTERVAL 90 DAY`, historyTable),
	}
}

// CHSeriesStore implements SeriesStore over a ClickHouse prices table written
// by an ingestion job instead of JSON files.
type CHSeriesStore struct {
	db    *sql.DB
	table string
	limit int
	l     *applogger.Logger
}

// NewCHSeriesStore reads at most limit most recent rows per series.
func NewCHSeriesStore(ch *pkgch.Client, table string, limit int, l *applogger.Logger) *CHSeriesStore {
	if l == nil {
		l = applogger.Nop()
	}
	if limit <= 0 {
		limit = 2000
	}
	return &CHSeriesStore{db: ch.DB(), table: table, limit: limit, l: l}
}

func (s *CHSeriesStore) Load(ctx context.Context, symbol string, kind domrepo.SeriesKind) (*models.Series, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT ts, close FROM (
            SELECT ts, close FROM %s
            WHERE symbol = ? AND kind = ?
            ORDER BY ts DESC
            LIMIT ?
        ) ORDER BY ts ASC`, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol, string(kind), s.limit)
	if err != nil {
		s.l.Error("clickhouse series query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.String("kind", string(kind)),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query %s %s series: %w", symbol, kind, err)
	}
	defer rows.Close()

	points := make([]models.PricePoint, 0, 256)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Time, &p.Close); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%s %s: %w", symbol, kind, domrepo.ErrSeriesNotFound)
	}

	s.l.Debug("clickhouse series ok",
		applogger.String("symbol", symbol),
		applogger.String("kind", string(kind)),
		applogger.Int("rows", len(points)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return &models.Series{Symbol: symbol, Kind: string(kind), Points: points}, nil
}

// CHSignalHistory appends computed signals to a ClickHouse table.
type CHSignalHistory struct {
	db    *sql.DB
	table string
}

func NewCHSignalHistory(ch *pkgch.Client, table string) *CHSignalHistory {
	return &CHSignalHistory{db: ch.DB(), table: table}
}

func (h *CHSignalHistory) Append(ctx context.Context, rec models.SignalRecord) error {
	q := fmt.Sprintf(`INSERT INTO %s
        (computed_at, symbol, profile, last, z_score, slope_per_day, forecast, risk_score, escalated, advice)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, h.table)
	var esc uint8
	if rec.Escalated {
		esc = 1
	}
	_, err := h.db.ExecContext(ctx, q,
		rec.ComputedAt.UTC(),
		rec.Symbol,
		rec.Profile,
		rec.Last,
		rec.ZScore,
		rec.SlopePerDay,
		rec.Forecast,
		rec.RiskScore,
		esc,
		string(rec.Advice),
	)
	if err != nil {
		return fmt.Errorf("insert signal history: %w", err)
	}
	return nil
}

func (h *CHSignalHistory) Recent(ctx context.Context, symbol string, limit int) ([]models.SignalRecord, error) {
	q := fmt.Sprintf(`
        SELECT computed_at, symbol, profile, last, z_score, slope_per_day, forecast, risk_score, escalated, advice
        FROM %s WHERE symbol = ? ORDER BY computed_at DESC LIMIT ?`, h.table)
	rows, err := h.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query signal history: %w", err)
	}
	defer rows.Close()

	out := make([]models.SignalRecord, 0, limit)
	for rows.Next() {
		var (
			r      models.SignalRecord
			slope  sql.NullFloat64
			fc     sql.NullFloat64
			esc    uint8
			advice string
		)
		if err := rows.Scan(&r.ComputedAt, &r.Symbol, &r.Profile, &r.Last, &r.ZScore, &slope, &fc, &r.RiskScore, &esc, &advice); err != nil {
			return nil, fmt.Errorf("scan signal history: %w", err)
		}
		if slope.Valid {
			v := slope.Float64
			r.SlopePerDay = &v
		}
		if fc.Valid {
			v := fc.Float64
			r.Forecast = &v
		}
		r.Escalated = esc == 1
		r.Advice = models.Advice(advice)
		out = append(out, r)
	}
	return out, rows.Err()
}

var (
	_ domrepo.SeriesStore   = (*CHSeriesStore)(nil)
	_ domrepo.SignalHistory = (*CHSignalHistory)(nil)
)
