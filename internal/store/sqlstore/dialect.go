package sqlstore

import (
	sq "github.com/Masterminds/squirrel"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Dialect struct {
	Name         string
	DriverName   string
	Placeholder  sq.PlaceholderFormat
	Schema       string
	MaxOpenConns int // 0 means no limit
}

var Postgres = Dialect{
	Name:        "postgres",
	DriverName:  "pgx",
	Placeholder: sq.Dollar,
	Schema: `
CREATE TABLE IF NOT EXISTS todo_items (
    id           BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    title        TEXT        NOT NULL CHECK (btrim(title) <> ''),
    description  TEXT        NOT NULL DEFAULT '',
    is_completed BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`,
}

// SQLite serialises access through one connection; AUTOINCREMENT keeps
// deleted ids from being handed out again.
var SQLite = Dialect{
	Name:        "sqlite",
	DriverName:  "sqlite",
	Placeholder: sq.Question,
	Schema: `
CREATE TABLE IF NOT EXISTS todo_items (
    id           INTEGER  PRIMARY KEY AUTOINCREMENT,
    title        TEXT     NOT NULL CHECK (trim(title) <> ''),
    description  TEXT     NOT NULL DEFAULT '',
    is_completed BOOLEAN  NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL
);
`,
	MaxOpenConns: 1,
}

func DialectByName(name string) (Dialect, bool) {
	switch name {
	case Postgres.Name:
		return Postgres, true
	case SQLite.Name:
		return SQLite, true
	default:
		return Dialect{}, false
	}
}
