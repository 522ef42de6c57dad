package postgres

import "strings"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS currencies (
	id         TEXT PRIMARY KEY,
	name       TEXT,
	symbol     TEXT,
	decimals   INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS collections (
	id         TEXT PRIMARY KEY,
	name       TEXT,
	symbol     TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS nfts (
	id         TEXT PRIMARY KEY,
	collection TEXT NOT NULL REFERENCES collections (id),
	token_id   NUMERIC NOT NULL,
	token_uri  TEXT,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS listings (
	id                 TEXT PRIMARY KEY,
	timestamp          BIGINT NOT NULL,
	creator            TEXT NOT NULL,
	target             TEXT NOT NULL REFERENCES nfts (id),
	listed             BOOLEAN NOT NULL,
	payment_token      TEXT NOT NULL REFERENCES currencies (id),
	fee                NUMERIC NOT NULL,
	price_multiplier   NUMERIC NOT NULL,
	extra              TEXT NOT NULL,
	reserve_price      NUMERIC NOT NULL,
	creator_fee        NUMERIC NOT NULL,
	amount             NUMERIC NOT NULL,
	fractions          TEXT,
	fractions_count    NUMERIC,
	status             TEXT NOT NULL,
	seller             TEXT NOT NULL,
	seller_net_amount  NUMERIC NOT NULL,
	seller_fee_amount  NUMERIC NOT NULL,
	creator_fee_amount NUMERIC NOT NULL,
	buyers_count       INTEGER NOT NULL,
	buyers             TEXT NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_listings (
	id              TEXT PRIMARY KEY,
	buyer           TEXT NOT NULL,
	listed          BOOLEAN NOT NULL,
	listing         TEXT NOT NULL REFERENCES listings (id),
	ownership       NUMERIC NOT NULL,
	amount          NUMERIC NOT NULL,
	fractions_count NUMERIC,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS user_listings_listing_idx ON user_listings (listing);
CREATE INDEX IF NOT EXISTS user_listings_buyer_idx ON user_listings (buyer);

CREATE TABLE IF NOT EXISTS counters (
	id         TEXT PRIMARY KEY,
	value      BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func schemaStatements() []string {
	parts := strings.Split(schemaSQL, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if stmt := strings.TrimSpace(part); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
