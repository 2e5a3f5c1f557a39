package postgres

// Schema is the reference DDL for the entity tables. Applied out of band;
// kept here so the store and the database cannot drift silently.
const Schema = `
CREATE TABLE IF NOT EXISTS pages (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	url TEXT NOT NULL UNIQUE,
	cluster TEXT NOT NULL DEFAULT '',
	level INT NOT NULL DEFAULT 0,
	parent_link TEXT NOT NULL DEFAULT '',
	sibling_links TEXT NOT NULL DEFAULT '',
	cross_cluster_link TEXT NOT NULL DEFAULT '',
	content_focus TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS keywords (
	id BIGSERIAL PRIMARY KEY,
	keyword_text TEXT NOT NULL,
	country TEXT NOT NULL,
	cluster TEXT NOT NULL DEFAULT '',
	page_id BIGINT REFERENCES pages(id),
	UNIQUE (keyword_text, country)
);

CREATE TABLE IF NOT EXISTS keyword_metrics (
	id BIGSERIAL PRIMARY KEY,
	keyword_id BIGINT NOT NULL REFERENCES keywords(id),
	search_volume INT NOT NULL DEFAULT 0,
	difficulty DOUBLE PRECISION NOT NULL DEFAULT 0,
	cpc DOUBLE PRECISION NOT NULL DEFAULT 0,
	competition DOUBLE PRECISION NOT NULL DEFAULT 0,
	fetched_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS competitors (
	id BIGSERIAL PRIMARY KEY,
	domain TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS serp_rankings (
	id BIGSERIAL PRIMARY KEY,
	keyword_id BIGINT NOT NULL REFERENCES keywords(id),
	position INT NOT NULL,
	url TEXT NOT NULL,
	domain TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	is_hoxton BOOLEAN NOT NULL DEFAULT FALSE,
	fetched_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS competitor_rankings (
	id BIGSERIAL PRIMARY KEY,
	keyword_id BIGINT NOT NULL REFERENCES keywords(id),
	competitor_id BIGINT NOT NULL REFERENCES competitors(id),
	position INT NOT NULL,
	url TEXT NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL
);
`
