package source

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-retailstats/internal/db"
	"github.com/pgEdge/pgedge-retailstats/internal/schema"
)

// Postgres reads the tables written by the import command.
type Postgres struct {
	connString string
	opts       Options

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL source. The pool is opened on first use.
func NewPostgres(opts Options) (Source, error) {
	if opts.Connection == "" {
		return nil, errors.New("postgres source requires a connection string")
	}
	return &Postgres{connString: opts.Connection, opts: opts}, nil
}

// Name returns the source type.
func (p *Postgres) Name() string {
	return "postgres"
}

// Load reads the table for the given kind.
func (p *Postgres) Load(ctx context.Context, kind schema.Kind) (*schema.RawTable, error) {
	pool, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}
	table := p.opts.name(kind, db.TableNames)
	if err := checkIdent(table); err != nil {
		return nil, err
	}
	return db.ReadTable(ctx, pool, table)
}

// Close closes the pool if it was opened.
func (p *Postgres) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
	return nil
}

func (p *Postgres) connect(ctx context.Context) (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		return p.pool, nil
	}
	pool, err := db.Connect(ctx, p.connString)
	if err != nil {
		return nil, err
	}
	p.pool = pool
	return pool, nil
}
