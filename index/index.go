// Package index exports a built catalog into a relational SQLite
// database for downstream query tooling. The export is plumbing at the
// serialization boundary: the core pipeline never depends on it.
package index

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/luadex/luadex"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id   TEXT PRIMARY KEY,
    name TEXT,
    kind TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS item_components (
    item_id   TEXT NOT NULL REFERENCES items(id),
    component TEXT NOT NULL,
    PRIMARY KEY (item_id, component)
);

CREATE TABLE IF NOT EXISTS item_tags (
    item_id TEXT NOT NULL REFERENCES items(id),
    tag     TEXT NOT NULL,
    PRIMARY KEY (item_id, tag)
);

CREATE TABLE IF NOT EXISTS item_categories (
    item_id  TEXT NOT NULL REFERENCES items(id),
    category TEXT NOT NULL,
    PRIMARY KEY (item_id, category)
);

CREATE TABLE IF NOT EXISTS item_stats (
    item_id TEXT NOT NULL REFERENCES items(id),
    key     TEXT NOT NULL,
    expr    TEXT NOT NULL,
    value   REAL,
    PRIMARY KEY (item_id, key)
);

CREATE TABLE IF NOT EXISTS craft_recipes (
    name          TEXT PRIMARY KEY,
    product       TEXT,
    tab           TEXT,
    tech          TEXT,
    builder_skill TEXT,
    station_tag   TEXT
);

CREATE TABLE IF NOT EXISTS craft_ingredients (
    recipe  TEXT NOT NULL REFERENCES craft_recipes(name),
    item    TEXT NOT NULL,
    amount  TEXT,
    value   REAL,
    PRIMARY KEY (recipe, item)
);

CREATE TABLE IF NOT EXISTS cooking_recipes (
    name     TEXT PRIMARY KEY,
    priority REAL NOT NULL,
    weight   REAL NOT NULL,
    foodtype TEXT,
    rule     TEXT
);

CREATE TABLE IF NOT EXISTS cooking_ingredient_tags (
    ingredient TEXT NOT NULL,
    tag        TEXT NOT NULL,
    weight     REAL NOT NULL,
    PRIMARY KEY (ingredient, tag)
);

CREATE INDEX IF NOT EXISTS idx_items_kind ON items(kind);
CREATE INDEX IF NOT EXISTS idx_item_tags_tag ON item_tags(tag);
`

// DB wraps the catalog index database.
type DB struct {
	*sql.DB
}

// Open opens (or creates) a SQLite index at path; ":memory:" is
// accepted for tests.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging index database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &DB{DB: db}, nil
}

// Export writes the catalog into the database in one transaction,
// replacing any previous contents.
func (db *DB) Export(ctx context.Context, cat *luadex.Catalog) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{
		"cooking_ingredient_tags", "cooking_recipes", "craft_ingredients",
		"craft_recipes", "item_stats", "item_categories", "item_tags",
		"item_components", "items", "meta",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES ('schema_version', ?), ('generated', ?), ('tool', ?)",
		fmt.Sprint(cat.SchemaVersion), cat.Meta.Generated, cat.Meta.Tool); err != nil {
		return fmt.Errorf("writing meta: %w", err)
	}

	itemStmt, err := tx.PrepareContext(ctx, "INSERT INTO items (id, name, kind) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer itemStmt.Close()

	for _, id := range cat.ItemIDs() {
		item := cat.Items[id]
		if _, err := itemStmt.ExecContext(ctx, item.ID, item.Name, item.Kind); err != nil {
			return fmt.Errorf("writing item %s: %w", id, err)
		}
		for _, c := range item.Components {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO item_components (item_id, component) VALUES (?, ?)", id, c); err != nil {
				return fmt.Errorf("writing components for %s: %w", id, err)
			}
		}
		for _, tag := range item.Tags {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO item_tags (item_id, tag) VALUES (?, ?)", id, tag); err != nil {
				return fmt.Errorf("writing tags for %s: %w", id, err)
			}
		}
		for _, category := range item.Categories {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO item_categories (item_id, category) VALUES (?, ?)", id, category); err != nil {
				return fmt.Errorf("writing categories for %s: %w", id, err)
			}
		}
		for key, st := range item.Stats {
			var value any
			if f, ok := st.Value.(float64); ok {
				value = f
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO item_stats (item_id, key, expr, value) VALUES (?, ?, ?, ?)",
				id, key, st.Expr, value); err != nil {
				return fmt.Errorf("writing stats for %s: %w", id, err)
			}
		}
	}

	for name, rec := range cat.Craft.Recipes {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO craft_recipes (name, product, tab, tech, builder_skill, station_tag) VALUES (?, ?, ?, ?, ?, ?)",
			name, rec.Product, rec.Tab, rec.Tech, rec.BuilderSkill, rec.StationTag); err != nil {
			return fmt.Errorf("writing craft recipe %s: %w", name, err)
		}
		for _, ing := range rec.Ingredients {
			var value any
			if ing.AmountValue != nil {
				value = *ing.AmountValue
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT OR REPLACE INTO craft_ingredients (recipe, item, amount, value) VALUES (?, ?, ?, ?)",
				name, ing.Item, ing.AmountRaw, value); err != nil {
				return fmt.Errorf("writing craft ingredients for %s: %w", name, err)
			}
		}
	}

	for name, rec := range cat.Cooking {
		rule := ""
		if rec.Rule != nil {
			rule = rec.Rule.Expr
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO cooking_recipes (name, priority, weight, foodtype, rule) VALUES (?, ?, ?, ?, ?)",
			name, rec.Priority, rec.Weight, rec.Foodtype, rule); err != nil {
			return fmt.Errorf("writing cooking recipe %s: %w", name, err)
		}
	}

	for id, ing := range cat.CookingIngredients {
		for tag, weight := range ing.Tags {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO cooking_ingredient_tags (ingredient, tag, weight) VALUES (?, ?, ?)",
				id, tag, weight); err != nil {
				return fmt.Errorf("writing ingredient tags for %s: %w", id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}
