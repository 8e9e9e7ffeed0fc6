package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/SamuelNgundi/fullstack-comic-app/catalog/core"
)

// comicFilter is shared by the listing and its count: $1 category name or
// empty, $2 search stems or empty.
const comicFilter = `
  WHERE ($1 = '' OR EXISTS (
          SELECT 1
          FROM comic_categories cc
          JOIN categories k ON k.id = cc.category_id
          WHERE cc.comic_id = c.id AND lower(k.name) = lower($1)))
    AND (cardinality($2::text[]) = 0 OR c.words && $2::text[])`

const listComicsQuery = `
  SELECT c.id, c.slug, c.title, c.thumbnail
  FROM comics c` + comicFilter + `
  ORDER BY cardinality(
             ARRAY(
              SELECT unnest(c.words)
              INTERSECT
              SELECT unnest($2::text[])
             )
           ) DESC, c.id ASC
  LIMIT $3 OFFSET $4`

const countComicsQuery = `
  SELECT COUNT(*)
  FROM comics c` + comicFilter

const comicCategoriesQuery = `
  SELECT cc.comic_id, k.id, k.name
  FROM comic_categories cc
  JOIN categories k ON k.id = cc.category_id
  WHERE cc.comic_id IN (?)
  ORDER BY k.name`

type DB struct {
	log  *slog.Logger
	conn *sqlx.DB
}

func New(log *slog.Logger, address string) (*DB, error) {
	db, err := sqlx.Connect("pgx", address)
	if err != nil {
		log.Error("connection problem", "address", address, "error", err)
		return nil, err
	}
	return &DB{log: log, conn: db}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Comics(ctx context.Context, q core.ComicQuery) ([]core.Comic, int, error) {
	words := stringArray(q.Words)

	var comics []core.Comic
	if err := db.conn.SelectContext(ctx, &comics, listComicsQuery, q.Category, words, q.Limit, q.Offset); err != nil {
		return nil, 0, fmt.Errorf("list comics: %w", err)
	}
	var total int
	if err := db.conn.GetContext(ctx, &total, countComicsQuery, q.Category, words); err != nil {
		return nil, 0, fmt.Errorf("count comics: %w", err)
	}
	if err := db.attachCategories(ctx, comics); err != nil {
		return nil, 0, err
	}
	return comics, total, nil
}

func (db *DB) attachCategories(ctx context.Context, comics []core.Comic) error {
	if len(comics) == 0 {
		return nil
	}
	ids := make([]int, 0, len(comics))
	byID := make(map[int]int, len(comics))
	for i, c := range comics {
		ids = append(ids, c.ID)
		byID[c.ID] = i
	}

	query, args, err := sqlx.In(comicCategoriesQuery, ids)
	if err != nil {
		return fmt.Errorf("failed to create IN query: %w", err)
	}
	query = db.conn.Rebind(query)

	var rows []struct {
		ComicID int `db:"comic_id"`
		core.Category
	}
	if err := db.conn.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("comic categories: %w", err)
	}
	for _, r := range rows {
		i := byID[r.ComicID]
		comics[i].Categories = append(comics[i].Categories, r.Category)
	}
	return nil
}

func (db *DB) Comic(ctx context.Context, slug string) (core.Comic, error) {
	var c core.Comic
	err := db.conn.GetContext(ctx, &c, `SELECT id, slug, title, thumbnail FROM comics WHERE slug = $1`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Comic{}, fmt.Errorf("comic %q: %w", slug, core.ErrNotFound)
	}
	if err != nil {
		return core.Comic{}, err
	}
	comics := []core.Comic{c}
	if err := db.attachCategories(ctx, comics); err != nil {
		return core.Comic{}, err
	}
	return comics[0], nil
}

func (db *DB) Categories(ctx context.Context) ([]core.Category, error) {
	cats := []core.Category{}
	if err := db.conn.SelectContext(ctx, &cats, `SELECT id, name FROM categories ORDER BY name`); err != nil {
		return nil, err
	}
	return cats, nil
}

func (db *DB) CreateComic(ctx context.Context, in core.ComicInput, words []string) (core.Comic, error) {
	err := db.inTx(ctx, func(tx *sqlx.Tx) error {
		var id int
		err := tx.GetContext(ctx, &id,
			`INSERT INTO comics (slug, title, thumbnail, words)
             VALUES ($1, $2, $3, $4::text[])
             ON CONFLICT (slug) DO NOTHING
             RETURNING id`,
			in.Slug, in.Title, in.Thumbnail, stringArray(words),
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("comic %q: %w", in.Slug, core.ErrAlreadyExists)
		}
		if err != nil {
			return err
		}
		return setCategories(ctx, tx, id, in.Categories)
	})
	if err != nil {
		return core.Comic{}, err
	}
	return db.Comic(ctx, in.Slug)
}

func (db *DB) UpdateComic(ctx context.Context, slug string, in core.ComicInput, words []string) (core.Comic, error) {
	err := db.inTx(ctx, func(tx *sqlx.Tx) error {
		var id int
		err := tx.GetContext(ctx, &id,
			`UPDATE comics
             SET title = $2, thumbnail = $3, words = $4::text[], updated_date = now()
             WHERE slug = $1
             RETURNING id`,
			slug, in.Title, in.Thumbnail, stringArray(words),
		)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("comic %q: %w", slug, core.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return setCategories(ctx, tx, id, in.Categories)
	})
	if err != nil {
		return core.Comic{}, err
	}
	return db.Comic(ctx, slug)
}

func setCategories(ctx context.Context, tx *sqlx.Tx, comicID int, names []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM comic_categories WHERE comic_id = $1`, comicID); err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	lower := make([]string, 0, len(names))
	for _, n := range names {
		lower = append(lower, strings.ToLower(n))
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO categories (name) SELECT unnest($1::text[]) ON CONFLICT DO NOTHING`,
		pq.StringArray(names),
	); err != nil {
		return fmt.Errorf("add categories: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO comic_categories (comic_id, category_id)
         SELECT $1, id FROM categories WHERE lower(name) = ANY($2::text[])`,
		comicID, pq.StringArray(lower),
	); err != nil {
		return fmt.Errorf("link categories: %w", err)
	}
	return nil
}

func (db *DB) DeleteComic(ctx context.Context, slug string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM comics WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("comic %q: %w", slug, core.ErrNotFound)
	}
	return nil
}

func (db *DB) Chapters(ctx context.Context, comicID int) ([]core.Chapter, error) {
	chapters := []core.Chapter{}
	err := db.conn.SelectContext(ctx, &chapters,
		`SELECT ch.id, ch.comic_id, ch.number, ch.title, COALESCE(v.views, 0) AS views
         FROM chapters ch
         LEFT JOIN chapter_views v ON v.chapter_id = ch.id
         WHERE ch.comic_id = $1
         ORDER BY ch.number`,
		comicID,
	)
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

func (db *DB) AddChapterView(ctx context.Context, chapterID int) (int, error) {
	var views int
	err := db.conn.GetContext(ctx, &views,
		`INSERT INTO chapter_views (chapter_id, views)
         SELECT id, 1 FROM chapters WHERE id = $1
         ON CONFLICT (chapter_id) DO UPDATE
         SET views = chapter_views.views + 1, updated_date = now()
         RETURNING views`,
		chapterID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("chapter %d: %w", chapterID, core.ErrNotFound)
	}
	return views, err
}

func (db *DB) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.log.Error("failed to rollback", "error", rbErr)
		}
		return err
	}
	return tx.Commit()
}

func stringArray(words []string) pq.StringArray {
	if words == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(words)
}
