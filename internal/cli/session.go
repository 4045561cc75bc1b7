package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"

	"github.com/petrijr/proctree/internal/clipboard"
	"github.com/petrijr/proctree/internal/config"
	"github.com/petrijr/proctree/internal/editor"
	"github.com/petrijr/proctree/internal/engine"
	"github.com/petrijr/proctree/internal/lock"
	"github.com/petrijr/proctree/internal/logging"
	"github.com/petrijr/proctree/internal/persistence"
	"github.com/petrijr/proctree/pkg/api"
	"github.com/petrijr/proctree/pkg/tree"
)

var (
	errGroupMissing  = errors.New("process group does not exist (run \"proctree init\" first)")
	errUnknownPath   = errors.New("no component at path")
	errNotConfirmed  = errors.New("confirmation required: rerun with --yes")
	errBadEndpoint   = errors.New("endpoint must look like PATH.PROPERTY")
	errNoSuchConnect = errors.New("no such connection")
)

// session is everything one command invocation needs.
type session struct {
	opts   *globalOptions
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
	errOut io.Writer

	registry *engine.Registry
	store    persistence.Persistence
	observer api.Observer
	editor   *editor.Editor
	group    *tree.Node

	lock    *lock.Project
	closers []func() error
}

// openSession loads config, opens the stores and, when mutate is set, takes
// the project lock.
func openSession(cmd *cobra.Command, opts *globalOptions, mutate bool) (_ *session, err error) {
	ctx := cmd.Context()
	root, err := filepath.Abs(opts.project)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	s := &session{opts: opts, cfg: cfg, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	defer func() {
		if err != nil {
			_ = s.close()
		}
	}()

	logger, logCloser, err := logging.New(cfg.Log, s.errOut)
	if err != nil {
		return nil, err
	}
	s.logger = logger
	s.closers = append(s.closers, logCloser.Close)

	if mutate {
		l, err := lock.Acquire(ctx, cfg.Lock.Path, cfg.Lock.Timeout)
		if err != nil {
			return nil, err
		}
		s.lock = l
	}

	s.store, err = s.openStores(ctx)
	if err != nil {
		return nil, err
	}
	cb, err := s.openClipboard()
	if err != nil {
		return nil, err
	}

	s.registry = engine.NewDefaultRegistry()
	s.observer = api.NewCompositeObserver(
		engine.NewHistoryObserver(s.store.Events, logger),
		api.NewLoggingObserver(logger),
	)
	s.editor = editor.New(editor.Config{
		Clipboard:    cb,
		Factory:      s.registry,
		Transactions: editor.NewJournal(logger),
		Confirmer:    newConfirmer(opts.yes, s.out),
		Observer:     s.observer,
		Logger:       logger,
	})
	return s, nil
}

func (s *session) openStores(ctx context.Context) (persistence.Persistence, error) {
	sc := s.cfg.Store
	switch sc.Driver {
	case config.DriverMemory:
		return persistence.NewInMemoryPersistence(), nil

	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(sc.DSN), 0o755); err != nil {
			return persistence.Persistence{}, fmt.Errorf("creating store directory: %w", err)
		}
		db, err := sql.Open("sqlite", sc.DSN)
		if err != nil {
			return persistence.Persistence{}, err
		}
		db.SetMaxOpenConns(1)
		s.closers = append(s.closers, db.Close)
		return sqlPersistence(db, persistence.NewSQLiteStore, persistence.NewSQLiteEventStore)

	case config.DriverPostgres:
		db, err := sql.Open("pgx", sc.DSN)
		if err != nil {
			return persistence.Persistence{}, err
		}
		s.closers = append(s.closers, db.Close)
		if err := db.PingContext(ctx); err != nil {
			return persistence.Persistence{}, fmt.Errorf("connecting to postgres: %w", err)
		}
		return sqlPersistence(db, persistence.NewPostgresStore, persistence.NewPostgresEventStore)

	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(sc.DSN))
		if err != nil {
			return persistence.Persistence{}, fmt.Errorf("connecting to mongo: %w", err)
		}
		s.closers = append(s.closers, func() error { return client.Disconnect(context.Background()) })
		return persistence.Persistence{
			Projects: persistence.NewMongoStore(client, sc.Database, sc.Collection),
			Events:   persistence.NewMongoEventStore(client, sc.Database, ""),
		}, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: sc.DSN})
		s.closers = append(s.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return persistence.Persistence{}, fmt.Errorf("connecting to redis: %w", err)
		}
		prefix := sc.Database + ":"
		return persistence.Persistence{
			Projects: persistence.NewRedisStore(client, prefix),
			Events:   persistence.NewRedisEventStore(client, prefix),
		}, nil
	}
	return persistence.Persistence{}, fmt.Errorf("%w: %q", config.ErrUnknownDriver, sc.Driver)
}

func sqlPersistence[P persistence.ProjectStore, E persistence.EventStore](
	db *sql.DB,
	projects func(*sql.DB) (P, error),
	events func(*sql.DB) (E, error),
) (persistence.Persistence, error) {
	p, err := projects(db)
	if err != nil {
		return persistence.Persistence{}, fmt.Errorf("initializing project store: %w", err)
	}
	e, err := events(db)
	if err != nil {
		return persistence.Persistence{}, fmt.Errorf("initializing event store: %w", err)
	}
	return persistence.Persistence{Projects: p, Events: e}, nil
}

func (s *session) openClipboard() (api.Clipboard, error) {
	cc := s.cfg.Clipboard
	switch cc.Backend {
	case config.ClipboardMemory:
		return clipboard.NewInMemory(), nil
	case config.ClipboardFile:
		return clipboard.NewFile(cc.Path), nil
	case config.ClipboardRedis:
		client := redis.NewClient(&redis.Options{Addr: cc.RedisAddr})
		s.closers = append(s.closers, client.Close)
		return clipboard.NewRedis(client, cc.RedisKey, cc.TTL), nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownClipboard, cc.Backend)
}

// close releases the lock and every opened resource, in reverse order.
func (s *session) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	if s.lock != nil {
		errs = append(errs, s.lock.Release())
		s.lock = nil
	}
	return errors.Join(errs...)
}

// loadGroup restores the group named by --group.
func (s *session) loadGroup(ctx context.Context) error {
	g, err := persistence.LoadGroup(ctx, s.store.Projects, persistence.GobSerializer{}, s.opts.group, s.registry)
	if errors.Is(err, persistence.ErrGroupNotFound) {
		return fmt.Errorf("%q: %w", s.opts.group, errGroupMissing)
	}
	if err != nil {
		return err
	}
	s.group = g
	return nil
}

func (s *session) save(ctx context.Context) error {
	return persistence.SaveGroup(ctx, s.store.Projects, persistence.GobSerializer{}, s.group)
}

// resolve finds the component at path below the group.
func (s *session) resolve(path string) (*tree.Node, error) {
	n := s.group.FindPath(path)
	if n == nil {
		return nil, fmt.Errorf("%w: %q", errUnknownPath, path)
	}
	return n, nil
}

// report prints edit diagnostics as warnings.
func (s *session) report(res *api.EditResult) {
	if res == nil {
		return
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(s.errOut, "warning: %v\n", d)
	}
}

// withGroup runs fn on the loaded group and saves the group afterwards when
// mutate is set and fn succeeded.
func withGroup(cmd *cobra.Command, opts *globalOptions, mutate bool, fn func(ctx context.Context, s *session) error) (err error) {
	s, err := openSession(cmd, opts, mutate)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); err == nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	if err := s.loadGroup(ctx); err != nil {
		return err
	}
	if err := fn(ctx, s); err != nil {
		return err
	}
	if mutate {
		return s.save(ctx)
	}
	return nil
}
