package store

// schemaVersionV1 stored runs without timing information.
const schemaVersionV1 = 1

// schemaVersionV2 adds elapsed_ms to runs.
const schemaVersionV2 = 2

// schemaV1 is kept for migration tests.
var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	dataset     TEXT NOT NULL,
	ruleset     TEXT NOT NULL,
	cases       INTEGER NOT NULL,
	incomplete  INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rules (
	run_id    INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	text      TEXT NOT NULL,
	covered   TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// schemaV2 is the fresh-install DDL.
var schemaV2 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	dataset     TEXT NOT NULL,
	ruleset     TEXT NOT NULL,
	cases       INTEGER NOT NULL,
	incomplete  INTEGER NOT NULL DEFAULT 0,
	elapsed_ms  INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS rules (
	run_id    INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	text      TEXT NOT NULL,
	covered   TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

var migrationV1ToV2 = `
ALTER TABLE runs ADD COLUMN elapsed_ms INTEGER NOT NULL DEFAULT 0;
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
UPDATE schema_version SET version = 2;
`
