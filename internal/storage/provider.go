package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/jeanscarter/clinidesk/internal/model"
)

// Provider owns the single handle to the SQLite file. The handle is opened
// lazily on first use and reopened transparently if a prior handle reports
// closed. Repositories receive the provider at construction; nothing reaches
// the database except through it.
type Provider struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// DB returns a live database handle. An open failure is a configuration
// error: the application cannot proceed without storage, so there is no
// retry here.
func (p *Provider) DB(ctx context.Context) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db != nil {
		if err := p.db.PingContext(ctx); err == nil {
			return p.db, nil
		}
		_ = p.db.Close()
		p.db = nil
	}

	db, err := openSQLite(ctx, p.path)
	if err != nil {
		return nil, err
	}
	p.db = db
	return p.db, nil
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, model.NewConfiguration(fmt.Errorf("empty database path"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, model.NewConfiguration(fmt.Errorf("create parent dir: %w", err))
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, model.NewConfiguration(fmt.Errorf("open %s: %w", path, err))
	}

	// One desktop process, one file: a single connection keeps the pragmas
	// and transaction isolation on the only writer there is.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, model.NewConfiguration(fmt.Errorf("open %s: %w", path, err))
	}
	return db, nil
}

func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + path + "?" + q.Encode()
}
