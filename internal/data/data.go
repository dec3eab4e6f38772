package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go-linkstats/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(NewData, NewLinkCache, NewLinkRepo)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Data holds the store handles. db is nil for the memory driver and rdb is
// nil when no redis is configured or reachable.
type Data struct {
	db       *sql.DB
	driver   string
	rdb      *redis.Client
	cacheTTL time.Duration
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)

	d := &Data{
		driver:   c.Database.Driver,
		cacheTTL: 10 * time.Minute,
	}

	switch d.driver {
	case DriverMemory:
		helper.Warn("using the in-memory link store, data is lost on restart")
	case DriverSQLite, DriverPostgres:
		db, err := OpenDB(d.driver, c.Database.Source)
		if err != nil {
			return nil, nil, err
		}
		if err := RunMigrations(db, d.driver); err != nil {
			db.Close()
			return nil, nil, err
		}
		d.db = db
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", d.driver)
	}

	if r := c.Redis; r != nil && r.Addr != "" {
		if r.CacheTTL.Duration > 0 {
			d.cacheTTL = r.CacheTTL.Duration
		}
		rdb := redis.NewClient(&redis.Options{
			Addr:         r.Addr,
			Password:     r.Password,
			DB:           r.DB,
			ReadTimeout:  r.ReadTimeout.Duration,
			WriteTimeout: r.WriteTimeout.Duration,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			helper.Warnf("redis at %s unavailable, key cache disabled: %v", r.Addr, err)
			_ = rdb.Close()
		} else {
			d.rdb = rdb
		}
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		if d.db != nil {
			if err := d.db.Close(); err != nil {
				helper.Error(err)
			}
		}
		if d.rdb != nil {
			if err := d.rdb.Close(); err != nil {
				helper.Error(err)
			}
		}
	}

	return d, cleanup, nil
}

// OpenDB opens and pings a database/sql handle for driver.
func OpenDB(driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// sqlite has a single writer; one connection queues transactions
		// instead of failing them with SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)

		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=5000",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
			}
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
