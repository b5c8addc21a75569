package store

// Amounts are TEXT so decimals survive a round trip exactly.
// seq preserves insertion order, which the simulator uses to break ties.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS incomes (
    seq                  INTEGER PRIMARY KEY AUTOINCREMENT,
    id                   TEXT NOT NULL UNIQUE,
    source               TEXT NOT NULL,
    amount               TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    seq                  INTEGER PRIMARY KEY AUTOINCREMENT,
    id                   TEXT NOT NULL UNIQUE,
    category             TEXT NOT NULL,
    amount               TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS debts (
    seq                  INTEGER PRIMARY KEY AUTOINCREMENT,
    id                   TEXT NOT NULL UNIQUE,
    name                 TEXT NOT NULL,
    principal            TEXT NOT NULL,
    annual_rate          TEXT NOT NULL,
    installments         INTEGER NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
    key                  TEXT PRIMARY KEY,
    value                INTEGER NOT NULL
);

INSERT OR IGNORE INTO meta (key, value) VALUES ('revision', 0);
`
