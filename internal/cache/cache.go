// Package cache persists last-known-good domain snapshots in a local
// SQLite file so the dashboard paints immediately on startup, before
// the first fetch or push frame arrives.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/copydash/client/internal/store"
)

// Cache is a domain-keyed snapshot store backed by SQLite.
type Cache struct {
	db *sql.DB
}

// Open creates or opens the cache file, creating parent directories
// and the schema as needed.
func Open(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir failed: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache failed: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshot (
		domain     TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema failed: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Save stores one domain snapshot as JSON, replacing any prior value.
func (c *Cache) Save(d store.Domain, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", d, err)
	}

	_, err = c.db.Exec(
		`INSERT INTO snapshot (domain, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(domain) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		string(d), string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save %s failed: %w", d, err)
	}
	return nil
}

// Load reads one domain snapshot into out. Returns false when the
// domain has never been saved.
func (c *Cache) Load(d store.Domain, out interface{}) (bool, error) {
	var payload string
	err := c.db.QueryRow(`SELECT payload FROM snapshot WHERE domain = ?`, string(d)).Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s failed: %w", d, err)
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("decode %s failed: %w", d, err)
	}
	return true, nil
}

// Restore seeds the store with every cached snapshot. Missing or
// undecodable entries are skipped; the cache is a convenience, not a
// source of truth.
func (c *Cache) Restore(st *store.Store) {
	var status store.TradingStatus
	if ok, err := c.Load(store.DomainStatus, &status); ok {
		st.SetStatus(status)
	} else if err != nil {
		slog.Debug("cache_restore_failed", "domain", store.DomainStatus, "error", err)
	}

	var whales store.WhaleSummary
	if ok, err := c.Load(store.DomainWhales, &whales); ok {
		st.SetWhaleSummary(whales)
	} else if err != nil {
		slog.Debug("cache_restore_failed", "domain", store.DomainWhales, "error", err)
	}

	var ranking store.WhaleRanking
	if ok, err := c.Load(store.DomainRanking, &ranking); ok {
		st.SetRanking(ranking)
	} else if err != nil {
		slog.Debug("cache_restore_failed", "domain", store.DomainRanking, "error", err)
	}

	var positions store.OpenPositions
	if ok, err := c.Load(store.DomainPositions, &positions); ok {
		st.SetPositions(positions)
	} else if err != nil {
		slog.Debug("cache_restore_failed", "domain", store.DomainPositions, "error", err)
	}

	var history store.TradeHistory
	if ok, err := c.Load(store.DomainHistory, &history); ok {
		st.SetHistory(history)
	} else if err != nil {
		slog.Debug("cache_restore_failed", "domain", store.DomainHistory, "error", err)
	}

	var markets store.MarketsByCategory
	if ok, err := c.Load(store.DomainMarkets, &markets); ok {
		st.SetMarkets(markets)
	} else if err != nil {
		slog.Debug("cache_restore_failed", "domain", store.DomainMarkets, "error", err)
	}

	var balance store.BalanceHistory
	if ok, err := c.Load(store.DomainBalance, &balance); ok {
		st.SetBalanceHistory(balance)
	} else if err != nil {
		slog.Debug("cache_restore_failed", "domain", store.DomainBalance, "error", err)
	}

	var activity store.ActivityLog
	if ok, err := c.Load(store.DomainActivity, &activity); ok {
		st.SetActivity(activity)
	} else if err != nil {
		slog.Debug("cache_restore_failed", "domain", store.DomainActivity, "error", err)
	}
}

// Run persists domains as their change notifications arrive on ch.
// Transient state (scan pulse, connection) is not persisted.
func (c *Cache) Run(ctx context.Context, ch <-chan store.Domain, st *store.Store) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-ch:
			if !ok {
				return
			}
			if err := c.persist(d, st); err != nil {
				slog.Debug("cache_save_failed", "domain", d, "error", err)
			}
		}
	}
}

// persist writes the current value of one domain.
func (c *Cache) persist(d store.Domain, st *store.Store) error {
	switch d {
	case store.DomainStatus:
		if v, ok := st.Status(); ok {
			return c.Save(d, v)
		}
	case store.DomainWhales:
		if v, ok := st.WhaleSummary(); ok {
			return c.Save(d, v)
		}
	case store.DomainRanking:
		if v, ok := st.Ranking(); ok {
			return c.Save(d, v)
		}
	case store.DomainPositions:
		if v, ok := st.Positions(); ok {
			return c.Save(d, v)
		}
	case store.DomainHistory:
		if v, ok := st.History(); ok {
			return c.Save(d, v)
		}
	case store.DomainMarkets:
		if v, ok := st.Markets(); ok {
			return c.Save(d, v)
		}
	case store.DomainBalance:
		if v, ok := st.BalanceHistory(); ok {
			return c.Save(d, v)
		}
	case store.DomainActivity:
		return c.Save(d, st.Activity())
	}
	return nil
}
