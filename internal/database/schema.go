package database

// SQL schemas for the reading log

const (
	// ClickHouseReadingsTableSQL creates the sensor_readings table on ClickHouse
	ClickHouseReadingsTableSQL = `
		CREATE TABLE IF NOT EXISTS sensor_readings (
			id String,
			created_at DateTime64(3, 'UTC'),
			device_id String,
			basin_temp Nullable(Float64),
			condenser_temp Nullable(Float64),
			tds_ppm Nullable(Int64),
			water_level_cm Nullable(Float64),
			battery_voltage Nullable(Float64),
			solar_current Nullable(Float64),
			system_state Nullable(String),
			pump_active Nullable(Bool),
			fan_active Nullable(Bool)
		) ENGINE = MergeTree()
		ORDER BY (device_id, created_at, id)
		PARTITION BY toYYYYMM(created_at)
	`

	// PostgresReadingsTableSQL creates the sensor_readings table on Postgres
	PostgresReadingsTableSQL = `
		CREATE TABLE IF NOT EXISTS sensor_readings (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			device_id TEXT NOT NULL,
			basin_temp DOUBLE PRECISION,
			condenser_temp DOUBLE PRECISION,
			tds_ppm BIGINT,
			water_level_cm DOUBLE PRECISION,
			battery_voltage DOUBLE PRECISION,
			solar_current DOUBLE PRECISION,
			system_state TEXT,
			pump_active BOOLEAN,
			fan_active BOOLEAN
		)
	`

	PostgresReadingsIndexSQL = `
		CREATE INDEX IF NOT EXISTS idx_sensor_readings_device_created
		ON sensor_readings (device_id, created_at, id)
	`
)

// readingColumns is the column order used for inserts and scans
var readingColumns = []string{
	"id",
	"created_at",
	"device_id",
	"basin_temp",
	"condenser_temp",
	"tds_ppm",
	"water_level_cm",
	"battery_voltage",
	"solar_current",
	"system_state",
	"pump_active",
	"fan_active",
}

// Tables returns the table creation statements for a dialect
func (d Dialect) Tables() []string {
	if d == DialectPostgres {
		return []string{PostgresReadingsTableSQL, PostgresReadingsIndexSQL}
	}
	return []string{ClickHouseReadingsTableSQL}
}
