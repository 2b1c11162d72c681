package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}

		if err := createGeoAreasTable(tx); err != nil {
			return err
		}
		if err := createGeoBoundariesTable(tx); err != nil {
			return err
		}
		if err := createMetricDefinitionsTable(tx); err != nil {
			return err
		}
		if err := createMetricObservationsTable(tx); err != nil {
			return err
		}

		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized",
			"version", currentSchemaVersion,
		)

		return nil
	})
}

// checkSchema verifies an existing database carries the expected schema version.
func (db *DB) checkSchema() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}
	if version != currentSchemaVersion {
		return fmt.Errorf("database schema version %d, expected %d", version, currentSchemaVersion)
	}
	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

func createGeoAreasTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS geo_areas (
			geo_id        TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			summary_level TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_geo_areas_name ON geo_areas(name COLLATE NOCASE)`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_geo_areas_level ON geo_areas(summary_level)`)
	return err
}

func createGeoBoundariesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS geo_boundaries (
			geo_id  TEXT PRIMARY KEY REFERENCES geo_areas(geo_id),
			min_lon REAL NOT NULL,
			min_lat REAL NOT NULL,
			max_lon REAL NOT NULL,
			max_lat REAL NOT NULL,
			rings   BLOB NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_geo_boundaries_bbox
		ON geo_boundaries(min_lon, max_lon, min_lat, max_lat)`)
	return err
}

func createMetricDefinitionsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metric_definitions (
			variable_id TEXT PRIMARY KEY,
			table_id    TEXT NOT NULL,
			line        INTEGER NOT NULL,
			label       TEXT NOT NULL,
			title       TEXT NOT NULL,
			universe    TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_metric_definitions_table ON metric_definitions(table_id)`)
	return err
}

func createMetricObservationsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metric_observations (
			variable_id         TEXT NOT NULL,
			geo_id              TEXT NOT NULL,
			estimate            REAL NOT NULL,
			summary_level       TEXT NOT NULL,
			state_fips          TEXT NOT NULL DEFAULT '',
			county_fips         TEXT NOT NULL DEFAULT '',
			national_percentile REAL,
			state_percentile    REAL,
			county_percentile   REAL,
			PRIMARY KEY (variable_id, geo_id)
		)
	`)
	if err != nil {
		return err
	}
	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_metric_observations_geo ON metric_observations(geo_id)`)
	return err
}
