package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create image cache",
		SQL: `
			CREATE TABLE image_cache (
				event_id   TEXT PRIMARY KEY,
				mime_type  TEXT NOT NULL,
				data       BLOB NOT NULL,
				created_at TEXT NOT NULL DEFAULT (datetime('now'))
			);
		`,
	},
}
