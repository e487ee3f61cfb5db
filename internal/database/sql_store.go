package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"walrus-backend/internal/models"
)

// Dialect selects placeholder syntax and DDL for a SQL backend
type Dialect int

const (
	DialectClickHouse Dialect = iota
	DialectPostgres
)

func (d Dialect) String() string {
	if d == DialectPostgres {
		return "postgres"
	}
	return "clickhouse"
}

func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// timestampPlaceholder binds a created_at value. clickhouse-go formats a bound
// time.Time with second precision, so ClickHouse takes epoch milliseconds instead.
func (d Dialect) timestampPlaceholder(n int) string {
	if d == DialectClickHouse {
		return "fromUnixTimestamp64Milli(?, 'UTC')"
	}
	return d.placeholder(n)
}

// timestampArg is the argument matching timestampPlaceholder
func (d Dialect) timestampArg(t time.Time) any {
	if d == DialectClickHouse {
		return t.UnixMilli()
	}
	return t
}

// SQLStore is a TelemetryStore over database/sql
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

var _ TelemetryStore = (*SQLStore)(nil)

// NewSQLStore wraps an open connection pool. It does not create the schema.
func NewSQLStore(db *sql.DB, dialect Dialect, logger *zap.Logger) *SQLStore {
	return &SQLStore{
		db:      db,
		dialect: dialect,
		logger:  logger,
		now:     time.Now,
		newID:   newReadingID,
	}
}

// InitSchema creates the necessary tables if they don't exist
func (s *SQLStore) InitSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.Tables() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	s.logger.Info("Database schema initialized", zap.Stringer("dialect", s.dialect))
	return nil
}

// Append stores a reading, assigning its id and created_at
func (s *SQLStore) Append(ctx context.Context, reading *models.Reading) (*models.Reading, error) {
	stored := reading.Clone()
	stored.ID = s.newID()
	// Both backends keep millisecond precision at least
	stored.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	placeholders := make([]string, len(readingColumns))
	for i, col := range readingColumns {
		if col == "created_at" {
			placeholders[i] = s.dialect.timestampPlaceholder(i + 1)
		} else {
			placeholders[i] = s.dialect.placeholder(i + 1)
		}
	}

	query := fmt.Sprintf(`INSERT INTO sensor_readings (%s) VALUES (%s)`,
		strings.Join(readingColumns, ", "), strings.Join(placeholders, ", "))

	_, err := s.db.ExecContext(ctx, query,
		stored.ID,
		s.dialect.timestampArg(stored.CreatedAt),
		stored.DeviceID,
		nullable(stored.BasinTemp),
		nullable(stored.CondenserTemp),
		nullableInt(stored.TDSPPM),
		nullable(stored.WaterLevelCM),
		nullable(stored.BatteryVoltage),
		nullable(stored.SolarCurrent),
		nullable(stored.SystemState),
		nullable(stored.PumpActive),
		nullable(stored.FanActive),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to insert reading: %w", models.ErrStorageUnavailable, err)
	}

	return stored, nil
}

// Query returns readings ordered by (created_at, id) in the requested direction
func (s *SQLStore) Query(ctx context.Context, filter QueryFilter) ([]*models.Reading, error) {
	var (
		conds []string
		args  []any
	)
	if filter.DeviceID != "" {
		args = append(args, filter.DeviceID)
		conds = append(conds, "device_id = "+s.dialect.placeholder(len(args)))
	}
	if filter.Since != nil {
		args = append(args, s.dialect.timestampArg(filter.Since.UTC()))
		conds = append(conds, "created_at >= "+s.dialect.timestampPlaceholder(len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(readingColumns, ", "))
	b.WriteString(" FROM sensor_readings")
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	dir := "ASC"
	if filter.Order == Descending {
		dir = "DESC"
	}
	fmt.Fprintf(&b, " ORDER BY created_at %s, id %s", dir, dir)
	if filter.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query readings: %w", models.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	readings := make([]*models.Reading, 0)
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan reading: %w", models.ErrStorageUnavailable, err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read rows: %w", models.ErrStorageUnavailable, err)
	}

	return readings, nil
}

// Ping checks connectivity to the backend
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", models.ErrStorageUnavailable, err)
	}
	return nil
}

// Close closes the connection pool
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s connection: %w", s.dialect, err)
	}
	s.logger.Info("Database connection closed", zap.Stringer("dialect", s.dialect))
	return nil
}

func scanReading(rows *sql.Rows) (*models.Reading, error) {
	var (
		r                                     models.Reading
		basin, condenser, water, battery, sol sql.NullFloat64
		tds                                   sql.NullInt64
		state                                 sql.NullString
		pump, fan                             sql.NullBool
	)

	if err := rows.Scan(
		&r.ID,
		&r.CreatedAt,
		&r.DeviceID,
		&basin,
		&condenser,
		&tds,
		&water,
		&battery,
		&sol,
		&state,
		&pump,
		&fan,
	); err != nil {
		return nil, err
	}

	r.CreatedAt = r.CreatedAt.UTC()
	r.BasinTemp = floatPtr(basin)
	r.CondenserTemp = floatPtr(condenser)
	r.WaterLevelCM = floatPtr(water)
	r.BatteryVoltage = floatPtr(battery)
	r.SolarCurrent = floatPtr(sol)
	if tds.Valid {
		r.TDSPPM = models.Int(int(tds.Int64))
	}
	if state.Valid {
		r.SystemState = models.String(state.String)
	}
	if pump.Valid {
		r.PumpActive = models.Bool(pump.Bool)
	}
	if fan.Valid {
		r.FanActive = models.Bool(fan.Bool)
	}

	return &r, nil
}

// nullable turns a nil pointer into a SQL NULL and dereferences anything else
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return models.Float64(v.Float64)
}
