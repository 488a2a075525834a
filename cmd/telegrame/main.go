package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/danhigham/telegrame/internal/account"
	"github.com/danhigham/telegrame/internal/auth/local"
	"github.com/danhigham/telegrame/internal/avatar"
	"github.com/danhigham/telegrame/internal/blob"
	"github.com/danhigham/telegrame/internal/config"
	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/directory/mongodb"
	"github.com/danhigham/telegrame/internal/directory/sqlite"
	"github.com/danhigham/telegrame/internal/search"
	"github.com/danhigham/telegrame/internal/state"
	"github.com/danhigham/telegrame/internal/telegram"
	"github.com/danhigham/telegrame/internal/ui"
)

func main() {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfgDir := config.Dir()
	if err := os.MkdirAll(cfgDir, 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", cfgDir, err)
		os.Exit(1)
	}
	cfgPath := filepath.Join(cfgDir, "config.yaml")

	cfg, err := config.Load(cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = config.Default(cfgDir)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config from %s: %v\n", cfgPath, err)
		fmt.Fprintf(os.Stderr, "\nA minimal config file looks like:\n")
		fmt.Fprintf(os.Stderr, "  cat > %s << 'EOF'\n", cfgPath)
		fmt.Fprintf(os.Stderr, "directory:\n  backend: sqlite\nblob:\n  backend: fs\nEOF\n")
		os.Exit(1)
	}

	// Setup logging to file
	logPath := filepath.Join(cfgDir, "telegrame.log")
	logger, err := newLogger(logPath, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if len(os.Args) > 1 && os.Args[1] == "import-contacts" {
		err = importContacts(ctx, cfg, cfgDir, os.Args[2:], logger)
	} else {
		err = runUI(ctx, cfg, cfgDir, logger)
	}
	if err != nil {
		logger.Error("exiting", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newLogger(path, level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = lvl
	logCfg.OutputPaths = []string{path}
	logCfg.ErrorOutputPaths = []string{path}
	return logCfg.Build()
}

func runUI(ctx context.Context, cfg *config.Config, cfgDir string, logger *zap.Logger) error {
	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	var secret []byte
	if cfg.Auth.SessionSecret != "" {
		secret = []byte(cfg.Auth.SessionSecret)
	}
	authn, err := local.Open(ctx, local.Config{
		DBPath:        cfg.Auth.SQLitePath,
		SessionPath:   cfg.Auth.SessionPath,
		SessionSecret: secret,
		ProviderKeys:  cfg.Auth.ProviderKeys(),
	}, logger)
	if err != nil {
		return fmt.Errorf("open accounts: %w", err)
	}
	defer authn.Close()

	avatars, err := avatar.NewCache(b.blobs, avatar.DefaultCacheSize, logger)
	if err != nil {
		return err
	}

	prefsPath := filepath.Join(cfgDir, "prefs.yaml")
	prefs, err := state.LoadPrefs(prefsPath)
	if err != nil {
		logger.Warn("ignoring unreadable preferences", zap.String("path", prefsPath), zap.Error(err))
	}

	// Create store (drawFunc will be set after app is created)
	store := state.New(nil)

	app := ui.NewApp(ctx, ui.Deps{
		Accounts:  account.NewService(authn, b.dir, avatars, logger),
		Paginator: search.NewPaginator(b.dir, cfg.Search.PageSize, logger),
		Debouncer: search.NewDebouncer(cfg.Search.Debounce, nil),
		Store:     store,
		Prefs:     prefs,
		PrefsPath: prefsPath,
		Logger:    logger,
	})
	store.SetDrawFunc(app.DrawFunc())

	logger.Info("starting UI",
		zap.String("directory", cfg.Directory.Backend),
		zap.String("blob", cfg.Blob.Backend))
	return app.Run()
}

func importContacts(ctx context.Context, cfg *config.Config, cfgDir string, args []string, logger *zap.Logger) error {
	flags := flag.NewFlagSet("import-contacts", flag.ExitOnError)
	phone := flags.String("phone", "", "phone number in international format (prompted when empty)")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if cfg.Telegram.APIID == 0 || cfg.Telegram.APIHash == "" {
		return errors.New("telegram.api_id and telegram.api_hash are required; get them from https://my.telegram.org")
	}

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	avatars, err := avatar.NewCache(b.blobs, avatar.DefaultCacheSize, logger)
	if err != nil {
		return err
	}

	source := telegram.NewGotdSource(
		cfg.Telegram.APIID,
		cfg.Telegram.APIHash,
		cfgDir,
		telegram.NewTerminalAuth(*phone, os.Stdin, os.Stdout),
		logger,
	)
	res, err := telegram.NewImporter(source, b.dir, avatars, logger).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d contacts, skipped %d.\n", res.Imported, res.Skipped)
	return nil
}

type backends struct {
	dir     directory.Directory
	blobs   blob.Store
	closers []func() error
}

// openBackends opens the directory and blob stores selected in cfg.
func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{}

	switch cfg.Directory.Backend {
	case config.BackendMemory:
		b.dir = directory.NewMemory()
	case config.BackendMongo:
		store, err := mongodb.Open(ctx, mongodb.Config{
			URI:      cfg.Directory.MongoURI,
			Database: cfg.Directory.MongoDatabase,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open directory: %w", err)
		}
		b.dir = store
		b.closers = append(b.closers, func() error { return store.Close(context.Background()) })
	default:
		store, err := sqlite.Open(ctx, cfg.Directory.SQLitePath, logger)
		if err != nil {
			return nil, fmt.Errorf("open directory: %w", err)
		}
		b.dir = store
		b.closers = append(b.closers, store.Close)
	}

	switch cfg.Blob.Backend {
	case config.BackendRedis:
		store, err := blob.NewRedis(ctx, blob.RedisConfig{
			Addr:     cfg.Blob.RedisAddr,
			Password: cfg.Blob.RedisPassword,
			DB:       cfg.Blob.RedisDB,
		}, logger)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		b.blobs = store
		b.closers = append(b.closers, store.Close)
	default:
		store, err := blob.NewFS(cfg.Blob.Dir)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("open blob store: %w", err)
		}
		b.blobs = store
	}
	return b, nil
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
}
