package storage

// Schema names the PostgreSQL schema holding the imported history.
const Schema = "history_to_drive"

// postgresSchema creates the History to Drive schema. Every statement is
// idempotent so the whole list runs on each start.
var postgresSchema = []string{
	`create schema if not exists history_to_drive`,

	`create table if not exists history_to_drive.history
	(
		history_id         serial        not null
			constraint history_pk primary key,
		timestamp          timestamp     not null,
		title              varchar(1000) not null,
		host               varchar(600)  not null,
		url                varchar(3000) not null,
		user_agent         varchar(3000) not null,
		origin_description varchar(100)  not null,
		origin_timestamp   timestamp     not null default now()
	)`,

	`comment on table history_to_drive.history is 'Browser history from History To Drive'`,
	`comment on column history_to_drive.history.timestamp is 'UTC datetime when the page was visited'`,
	`comment on column history_to_drive.history.title is 'The document title of the page'`,
	`comment on column history_to_drive.history.host is 'The window.location.host of the page'`,
	`comment on column history_to_drive.history.url is 'The window.location.href of the page'`,
	`comment on column history_to_drive.history.origin_description is 'Source file or author for the record'`,
	`comment on column history_to_drive.history.origin_timestamp is 'UTC datetime when the record was inserted from the origin'`,

	`create index if not exists history_to_drive_history_ix_origin_ts
		on history_to_drive.history (origin_description, timestamp)`,
	`create index if not exists history_to_drive_history_ix_host_ts
		on history_to_drive.history (host, timestamp)`,
	`create index if not exists history_to_drive_history_ix_ts
		on history_to_drive.history (timestamp)`,

	`create table if not exists history_to_drive.tag
	(
		tag_id serial       not null
			constraint tags_pk
				primary key,
		tag    varchar(100) not null
	)`,

	`comment on table history_to_drive.tag is 'Tags linked to browser history'`,
	`create unique index if not exists history_to_drive_tags_tag_uindex
		on history_to_drive.tag (tag)`,

	`create table if not exists history_to_drive.history_tag
	(
		history_id int not null
			constraint history_tag_history_id_fkey
				references history_to_drive.history,
		tag_id     int not null
			constraint history_tag_tag_id_fkey
				references history_to_drive.tag
	)`,

	`comment on table history_to_drive.history_tag is 'Table to join tags to history'`,
	`create unique index if not exists history_to_drive_history_tag_uindex
		on history_to_drive.history_tag (history_id, tag_id)`,
}

// sqliteSchema mirrors postgresSchema for SQLite, which has no schemas or
// comments. Table, column, and index names are the same.
var sqliteSchema = []string{
	// ── Tables ──────────────────────────────────────────────
	`CREATE TABLE IF NOT EXISTS history (
		history_id         INTEGER       NOT NULL CONSTRAINT history_pk PRIMARY KEY AUTOINCREMENT,
		timestamp          TIMESTAMP     NOT NULL,
		title              VARCHAR(1000) NOT NULL,
		host               VARCHAR(600)  NOT NULL,
		url                VARCHAR(3000) NOT NULL,
		user_agent         VARCHAR(3000) NOT NULL,
		origin_description VARCHAR(100)  NOT NULL,
		origin_timestamp   TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tag (
		tag_id INTEGER      NOT NULL CONSTRAINT tags_pk PRIMARY KEY AUTOINCREMENT,
		tag    VARCHAR(100) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS history_tag (
		history_id INTEGER NOT NULL CONSTRAINT history_tag_history_id_fkey REFERENCES history(history_id),
		tag_id     INTEGER NOT NULL CONSTRAINT history_tag_tag_id_fkey REFERENCES tag(tag_id)
	)`,

	// ── Indexes ────────────────────────────────────────────
	`CREATE INDEX IF NOT EXISTS history_to_drive_history_ix_origin_ts ON history(origin_description, timestamp)`,
	`CREATE INDEX IF NOT EXISTS history_to_drive_history_ix_host_ts   ON history(host, timestamp)`,
	`CREATE INDEX IF NOT EXISTS history_to_drive_history_ix_ts        ON history(timestamp)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS history_to_drive_tags_tag_uindex    ON tag(tag)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS history_to_drive_history_tag_uindex ON history_tag(history_id, tag_id)`,
}
