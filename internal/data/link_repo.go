package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-linkstats/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var _ biz.LinkRepo = (*sqlLinkRepo)(nil)

// Queries use $n placeholders in order of first use, which both sqlite and
// postgres accept.
const (
	linkColumns = `id, short_key, origin_url, owner_id, title, description, image, icon, click_count, created_at`

	insertLinkSQL = `INSERT INTO links (short_key, origin_url, owner_id, title, description, image, icon, click_count, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8) RETURNING id`

	insertVisitLogSQL = `INSERT INTO visit_logs (link_id, short_key) VALUES ($1, $2)`

	upsertVisitLogSQL = `INSERT INTO visit_logs (link_id, short_key) VALUES ($1, $2) ON CONFLICT (link_id) DO NOTHING`

	incrementClicksSQL = `UPDATE links SET click_count = click_count + 1 WHERE id = $1 RETURNING click_count`

	insertVisitEntrySQL = `INSERT INTO visit_entries (log_id, os, browser, device, country, city, flag, visited_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectVisitEntriesSQL = `SELECT os, browser, device, country, city, flag, visited_at
FROM visit_entries WHERE log_id = $1 ORDER BY id`
)

type sqlLinkRepo struct {
	data *Data
	log  *log.Helper
}

func newSQLLinkRepo(data *Data, logger log.Logger) *sqlLinkRepo {
	return &sqlLinkRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLink(row rowScanner, extra ...any) (*biz.Link, error) {
	var l biz.Link
	dest := append([]any{
		&l.ID, &l.Key, &l.OriginURL, &l.OwnerID,
		&l.Title, &l.Description, &l.Image, &l.Icon,
		&l.ClickCount, &l.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return &l, nil
}

func (r *sqlLinkRepo) Create(ctx context.Context, l *biz.Link) (*biz.Link, error) {
	created := *l
	created.ClickCount = 0

	err := r.data.InTx(ctx, func(ctx context.Context) error {
		q := r.data.conn(ctx)
		if err := q.QueryRowContext(ctx, insertLinkSQL,
			l.Key, l.OriginURL, l.OwnerID, l.Title, l.Description, l.Image, l.Icon, l.CreatedAt.UTC(),
		).Scan(&created.ID); err != nil {
			return err
		}
		_, err := q.ExecContext(ctx, insertVisitLogSQL, created.ID, created.Key)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, biz.ErrKeyTaken
		}
		return nil, fmt.Errorf("insert link: %w", err)
	}
	return &created, nil
}

func (r *sqlLinkRepo) FindByKey(ctx context.Context, key string) (*biz.Link, error) {
	row := r.data.conn(ctx).QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE short_key = $1`, key)
	l, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, biz.ErrLinkNotFound
		}
		return nil, fmt.Errorf("select link: %w", err)
	}
	return l, nil
}

func (r *sqlLinkRepo) ExistsKey(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.data.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM links WHERE short_key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check key: %w", err)
	}
	return exists, nil
}

func (r *sqlLinkRepo) ListByOwner(ctx context.Context, ownerID string) ([]*biz.Link, error) {
	rows, err := r.data.conn(ctx).QueryContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE owner_id = $1 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	links := make([]*biz.Link, 0)
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// RecordVisit locks the link row with the increment before touching the log,
// so concurrent visits of one link serialize on that row.
func (r *sqlLinkRepo) RecordVisit(ctx context.Context, linkID int64, key string, v biz.Visit) (int64, error) {
	var clicks int64

	err := r.data.InTx(ctx, func(ctx context.Context) error {
		q := r.data.conn(ctx)

		if err := q.QueryRowContext(ctx, incrementClicksSQL, linkID).Scan(&clicks); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return biz.ErrLinkNotFound
			}
			return fmt.Errorf("increment clicks: %w", err)
		}

		if _, err := q.ExecContext(ctx, upsertVisitLogSQL, linkID, key); err != nil {
			return fmt.Errorf("upsert visit log: %w", err)
		}

		var logID int64
		if err := q.QueryRowContext(ctx, `SELECT id FROM visit_logs WHERE link_id = $1`, linkID).Scan(&logID); err != nil {
			return fmt.Errorf("select visit log: %w", err)
		}

		if _, err := q.ExecContext(ctx, insertVisitEntrySQL,
			logID,
			v.Record.OS, v.Record.Browser, v.Record.Device,
			v.Geo.Country, v.Geo.City, v.Geo.Flag,
			v.Record.Timestamp.UTC(),
		); err != nil {
			return fmt.Errorf("append visit: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return clicks, nil
}

func (r *sqlLinkRepo) FindWithVisitLog(ctx context.Context, ownerID, key string) (*biz.Link, *biz.VisitLog, error) {
	var (
		link     *biz.Link
		visitLog *biz.VisitLog
	)

	err := r.data.InTx(ctx, func(ctx context.Context) error {
		q := r.data.conn(ctx)

		var logID sql.NullInt64
		row := q.QueryRowContext(ctx, `SELECT l.id, l.short_key, l.origin_url, l.owner_id, l.title, l.description,
       l.image, l.icon, l.click_count, l.created_at, vl.id
FROM links l
LEFT JOIN visit_logs vl ON vl.link_id = l.id
WHERE l.short_key = $1 AND l.owner_id = $2`, key, ownerID)

		var err error
		link, err = scanLink(row, &logID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return biz.ErrLinkNotFound
			}
			return fmt.Errorf("select link: %w", err)
		}

		visitLog = &biz.VisitLog{
			LinkID: link.ID,
			Key:    link.Key,
			Visits: []biz.VisitRecord{},
			Geo:    []biz.GeoRecord{},
		}
		if !logID.Valid {
			return nil
		}
		visitLog.ID = logID.Int64

		rows, err := q.QueryContext(ctx, selectVisitEntriesSQL, logID.Int64)
		if err != nil {
			return fmt.Errorf("select visits: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var v biz.Visit
			if err := rows.Scan(
				&v.Record.OS, &v.Record.Browser, &v.Record.Device,
				&v.Geo.Country, &v.Geo.City, &v.Geo.Flag,
				&v.Record.Timestamp,
			); err != nil {
				return fmt.Errorf("scan visit: %w", err)
			}
			v.Record.Timestamp = v.Record.Timestamp.UTC()
			visitLog.Append(v)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, nil, err
	}
	return link, visitLog, nil
}

func (r *sqlLinkRepo) Delete(ctx context.Context, ownerID string, id int64) (*biz.Link, error) {
	var deleted *biz.Link

	err := r.data.InTx(ctx, func(ctx context.Context) error {
		q := r.data.conn(ctx)

		row := q.QueryRowContext(ctx,
			`SELECT `+linkColumns+` FROM links WHERE id = $1 AND owner_id = $2`, id, ownerID)
		var err error
		deleted, err = scanLink(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return biz.ErrLinkNotFound
			}
			return fmt.Errorf("select link: %w", err)
		}

		if _, err := q.ExecContext(ctx,
			`DELETE FROM visit_entries WHERE log_id IN (SELECT id FROM visit_logs WHERE link_id = $1)`, id); err != nil {
			return fmt.Errorf("delete visits: %w", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM visit_logs WHERE link_id = $1`, id); err != nil {
			return fmt.Errorf("delete visit log: %w", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete link: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.WithContext(ctx).Debugf("deleted link %d (%s) and its visit log", deleted.ID, deleted.Key)
	return deleted, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
