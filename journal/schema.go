// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	fill_price REAL NOT NULL,
	time DATETIME NOT NULL,
	cash_delta REAL NOT NULL,
	realized_pl REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS rejections (
	time DATETIME NOT NULL,
	instrument TEXT NOT NULL,
	side TEXT NOT NULL,
	quantity REAL NOT NULL,
	reason TEXT NOT NULL,
	detail TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	cash REAL NOT NULL,
	equity REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS cycles (
	time DATETIME NOT NULL,
	status TEXT NOT NULL,
	trades INTEGER NOT NULL,
	rejections INTEGER NOT NULL,
	detail TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_time ON trades(time);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
CREATE INDEX IF NOT EXISTS idx_cycles_time ON cycles(time);
`
