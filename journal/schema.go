package journal

// Schema creates the journal tables.
const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	created     DATETIME NOT NULL,
	as_of       TEXT NOT NULL,
	hash        TEXT NOT NULL,
	trade_count INTEGER NOT NULL,
	total_value REAL NOT NULL,
	total_cost  REAL NOT NULL,
	drift       REAL NOT NULL,
	reconciled  INTEGER NOT NULL,
	warnings    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS points (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	day    TEXT NOT NULL,
	value  REAL NOT NULL,
	PRIMARY KEY (run_id, day)
);

CREATE TABLE IF NOT EXISTS warnings (
	run_id  TEXT NOT NULL REFERENCES runs(run_id),
	kind    TEXT NOT NULL,
	ticker  TEXT NOT NULL,
	day     TEXT NOT NULL,
	message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created);
`
