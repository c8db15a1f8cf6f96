package store

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-farrier-sync/internal/schema"
)

const (
	keyColumn   = "record_key"
	valueColumn = "record_value"

	// record_key has no declared type, so integer and text keys keep their
	// storage class and sort numbers before strings.
	createStoreTable = `CREATE TABLE IF NOT EXISTS %s (
			record_key   PRIMARY KEY NOT NULL,
			record_value TEXT NOT NULL
		);`

	createStoreIndex = `CREATE %sINDEX IF NOT EXISTS %s ON %s (json_extract(record_value, '%s'));`

	dropStoreTable = `DROP TABLE IF EXISTS %s;`

	tableExists = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?;`

	selectCatalog = `SELECT name, key_path, auto_increment, indexes FROM _store_catalog;`

	upsertCatalog = `
		INSERT INTO _store_catalog (name, key_path, auto_increment, indexes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			key_path       = excluded.key_path,
			auto_increment = excluded.auto_increment,
			indexes        = excluded.indexes;`

	// _store_sequence keeps the highest key ever issued by an auto-increment
	// store. It only grows, so clearing a store never reissues a key.
	selectSequence = `SELECT seq FROM _store_sequence WHERE name = ?;`

	bumpSequence = `
		INSERT INTO _store_sequence (name, seq)
		VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET seq = max(seq, excluded.seq);`

	setUserVersion = `PRAGMA user_version = %d;`

	getUserVersion = `PRAGMA user_version;`

	upsertSuffix = `ON CONFLICT(record_key) DO UPDATE SET record_value = excluded.record_value`
)

const (
	matchCachedResponse = `
		SELECT status, header, body, stored_at
		FROM http_cache
		WHERE cache_name = ? AND request_url = ?;`

	matchAnyCachedResponse = `
		SELECT status, header, body, stored_at
		FROM http_cache
		WHERE request_url = ?
		ORDER BY stored_at DESC
		LIMIT 1;`

	putCachedResponse = `
		INSERT INTO http_cache (cache_name, request_url, status, header, body, stored_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_name, request_url) DO UPDATE SET
			status    = excluded.status,
			header    = excluded.header,
			body      = excluded.body,
			stored_at = excluded.stored_at;`

	listCacheNames = `SELECT DISTINCT cache_name FROM http_cache ORDER BY cache_name;`

	deleteCache = `DELETE FROM http_cache WHERE cache_name = ?;`
)

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func jsonPath(keyPath string) string {
	return "$." + strings.ReplaceAll(keyPath, "'", "''")
}

func indexName(desc schema.Descriptor, idx schema.Index) string {
	return quoteIdent("idx_" + string(desc.Name) + "_" + idx.Name)
}

func buildCreateStore(desc schema.Descriptor) []string {
	table := quoteIdent(desc.Table())
	stmts := []string{fmt.Sprintf(createStoreTable, table)}
	for _, idx := range desc.Indexes {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		stmts = append(stmts, fmt.Sprintf(createStoreIndex, unique, indexName(desc, idx), table, jsonPath(idx.KeyPath)))
	}
	return stmts
}

func buildDropStore(desc schema.Descriptor) string {
	return fmt.Sprintf(dropStoreTable, quoteIdent(desc.Table()))
}

func buildGetQuery(desc schema.Descriptor, key any) (string, []any, error) {
	return sq.Select(valueColumn).
		From(quoteIdent(desc.Table())).
		Where(sq.Eq{keyColumn: key}).
		ToSql()
}

func buildGetAllQuery(desc schema.Descriptor) (string, []any, error) {
	return sq.Select(valueColumn).
		From(quoteIdent(desc.Table())).
		OrderBy(keyColumn).
		ToSql()
}

func buildKeysQuery(desc schema.Descriptor) (string, []any, error) {
	return sq.Select(keyColumn).
		From(quoteIdent(desc.Table())).
		OrderBy(keyColumn).
		ToSql()
}

func buildGetAllByIndexQuery(desc schema.Descriptor, idx schema.Index, value any) (string, []any, error) {
	expr := fmt.Sprintf("json_extract(%s, '%s') = ?", valueColumn, jsonPath(idx.KeyPath))
	return sq.Select(valueColumn).
		From(quoteIdent(desc.Table())).
		Where(expr, value).
		OrderBy(keyColumn).
		ToSql()
}

func buildInsertQuery(desc schema.Descriptor, key any, value string, upsert bool) (string, []any, error) {
	q := sq.Insert(quoteIdent(desc.Table())).
		Columns(keyColumn, valueColumn).
		Values(key, value)
	if upsert {
		q = q.Suffix(upsertSuffix)
	}
	return q.ToSql()
}

func buildDeleteQuery(desc schema.Descriptor, key any) (string, []any, error) {
	return sq.Delete(quoteIdent(desc.Table())).
		Where(sq.Eq{keyColumn: key}).
		ToSql()
}

func buildClearQuery(desc schema.Descriptor) (string, []any, error) {
	return sq.Delete(quoteIdent(desc.Table())).ToSql()
}

func buildCountQuery(desc schema.Descriptor) (string, []any, error) {
	return sq.Select("COUNT(*)").
		From(quoteIdent(desc.Table())).
		ToSql()
}

// buildLastKeyQuery selects the highest integer key, the cursor a descending
// walk would open on first.
func buildLastKeyQuery(desc schema.Descriptor) (string, []any, error) {
	return sq.Select(keyColumn).
		From(quoteIdent(desc.Table())).
		Where("typeof(" + keyColumn + ") = 'integer'").
		OrderBy(keyColumn + " DESC").
		Limit(1).
		ToSql()
}
