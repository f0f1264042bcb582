// Package runner sequences one sync run: fetch, normalize, load.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/kobo-sync/internal/config"
	"github.com/sells-group/kobo-sync/internal/db"
	"github.com/sells-group/kobo-sync/internal/fetcher"
	"github.com/sells-group/kobo-sync/internal/loader"
	"github.com/sells-group/kobo-sync/internal/metrics"
	"github.com/sells-group/kobo-sync/internal/survey"
)

// Connector opens the database and returns a release func. It is only
// called once fetch and normalization have succeeded.
type Connector func(ctx context.Context) (db.Pool, func(), error)

// PostgresConnector connects with the configured PG parameters.
func PostgresConnector(cfg config.PostgresConfig) Connector {
	return func(ctx context.Context) (db.Pool, func(), error) {
		pool, err := db.Connect(ctx, db.ConnParams{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Database: cfg.Database,
			User:     cfg.User,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, nil, err
		}
		return pool, pool.Close, nil
	}
}

// Result summarizes a run.
type Result struct {
	RunID  string
	Source string
	Frame  *survey.Frame
	Report *survey.Report
	Loaded int64
}

// Runner executes the pipeline against one source.
type Runner struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	connect Connector
	source  string
	out     io.Writer
	metrics *metrics.Recorder
	now     func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithSource reads from location instead of the configured export URL.
func WithSource(location string) Option {
	return func(r *Runner) { r.source = location }
}

// WithOutput sends progress lines to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithMetrics records run outcomes on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = rec }
}

// New creates a Runner.
func New(cfg *config.Config, f fetcher.Fetcher, connect Connector, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		fetcher: f,
		connect: connect,
		source:  cfg.Kobo.URL,
		out:     os.Stdout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.NewRecorder()
	}
	return r
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Prepare fetches and normalizes the export without touching the database.
func (r *Runner) Prepare(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.New().String(), Source: r.source}
	return res, r.prepare(ctx, res, r.logger(res))
}

func (r *Runner) logger(res *Result) *zap.Logger {
	return zap.L().With(
		zap.String("component", "runner"),
		zap.String("run_id", res.RunID),
	)
}

func (r *Runner) prepare(ctx context.Context, res *Result, log *zap.Logger) error {
	r.printf("Fetching data from Kobo...")
	text, err := r.fetcher.FetchText(ctx, r.source)
	if err != nil {
		var se *fetcher.StatusError
		if errors.As(err, &se) {
			r.printf("Error fetching data: %d", se.StatusCode)
		} else {
			r.printf("Error fetching data: %v", err)
		}
		return eris.Wrap(err, "runner: fetch")
	}
	r.printf("Data fetched successfully.")
	log.Info("export fetched", zap.Int("bytes", len(text)))

	frame, report, err := survey.Normalize(text)
	if err != nil {
		return eris.Wrap(err, "runner: normalize")
	}
	res.Frame, res.Report = frame, report

	r.printf("Cleaned columns: %s", strings.Join(report.CleanedColumns, ", "))
	if report.SkippedRows > 0 {
		r.printf("Skipped %d malformed rows.", report.SkippedRows)
	}
	return nil
}

// Run performs a full sync: fetch, normalize, then replace the target table.
// Metrics are recorded whatever the outcome.
func (r *Runner) Run(ctx context.Context) (res *Result, err error) {
	started := r.now()
	res = &Result{RunID: uuid.New().String(), Source: r.source}
	log := r.logger(res)
	log.Info("run started", zap.String("source", r.source))

	defer func() {
		skipped := 0
		if res.Report != nil {
			skipped = res.Report.SkippedRows
		}
		r.metrics.Observe(res.Loaded, skipped, started, r.now(), err)
		r.writeMetrics(log)

		if err != nil {
			log.Error("run failed", zap.Error(err))
			return
		}
		log.Info("run finished",
			zap.Int64("rows", res.Loaded),
			zap.Duration("elapsed", r.now().Sub(started)),
		)
	}()

	mode, err := loader.ParseMode(r.cfg.Load.Mode)
	if err != nil {
		return res, err
	}

	if err = r.prepare(ctx, res, log); err != nil {
		return res, err
	}

	r.printf("Loading data into PostgreSQL...")
	pool, release, err := r.connect(ctx)
	if err != nil {
		return res, eris.Wrap(err, "runner: connect")
	}
	defer release()

	l := loader.New(pool, loader.Options{
		Schema: r.cfg.Postgres.Schema,
		Table:  r.cfg.Postgres.Table,
		Mode:   mode,
	})
	n, err := l.Load(ctx, res.Frame)
	if err != nil {
		return res, eris.Wrap(err, "runner: load")
	}
	res.Loaded = n

	r.printf("Data loaded into PostgreSQL successfully! (%d rows)", n)
	return res, nil
}

func (r *Runner) writeMetrics(log *zap.Logger) {
	path := r.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	if err := r.metrics.WriteTextfile(path); err != nil {
		log.Warn("metrics not written", zap.Error(err))
	}
}
