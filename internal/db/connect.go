package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ConnParams holds the discrete Postgres connection settings. Empty fields
// are left out of the DSN so the driver's own defaults apply.
type ConnParams struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

// DSN renders the parameters as a keyword/value connection string.
func (p ConnParams) DSN() string {
	pairs := []struct{ key, val string }{
		{"host", p.Host},
		{"port", p.Port},
		{"dbname", p.Database},
		{"user", p.User},
		{"password", p.Password},
	}

	var parts []string
	for _, kv := range pairs {
		if kv.val == "" {
			continue
		}
		parts = append(parts, kv.key+"="+quoteDSNValue(kv.val))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue single-quotes a value, escaping backslashes and quotes.
func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Connect opens a single-connection pool and verifies it with a ping. The
// loader runs in one session, so one connection is all it needs.
func Connect(ctx context.Context, p ConnParams) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(p.DSN())
	if err != nil {
		return nil, eris.Wrap(err, "db: parse config")
	}
	cfg.MaxConns = 1
	cfg.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "db: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "db: ping")
	}

	zap.L().Info("db: connected",
		zap.String("host", cfg.ConnConfig.Host),
		zap.Uint16("port", cfg.ConnConfig.Port),
		zap.String("database", cfg.ConnConfig.Database),
	)
	return pool, nil
}
