// Package local implements auth.Authenticator over a SQLite file, keeping the
// signed-in session in a token file so the app starts signed in.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/danhigham/telegrame/internal/auth"
	"github.com/danhigham/telegrame/internal/auth/local/migrations"
	"github.com/danhigham/telegrame/internal/domain"
	"github.com/danhigham/telegrame/internal/sqlitemigrate"
)

const resetTTL = time.Hour

// Config configures the local authenticator.
type Config struct {
	DBPath      string
	SessionPath string
	// SessionSecret signs the session token. When empty a key file is
	// generated next to SessionPath.
	SessionSecret []byte
	// ProviderKeys maps provider names to the HS256 secret their tokens are
	// signed with.
	ProviderKeys map[string][]byte
	BcryptCost   int
	Now          func() time.Time
	NewID        func() string
}

// Authenticator is the SQLite-backed auth.Authenticator.
type Authenticator struct {
	db      *sql.DB
	cfg     Config
	session sessionFile
	logger  *zap.Logger

	mu      sync.RWMutex
	current *domain.Account
}

var _ auth.Authenticator = (*Authenticator)(nil)

// Open opens the account database and restores a persisted session.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*Authenticator, error) {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, errors.New("account storage path is required")
	}
	if strings.TrimSpace(cfg.SessionPath) == "" {
		return nil, errors.New("session path is required")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	secret, err := loadSessionSecret(cfg.SessionPath, cfg.SessionSecret)
	if err != nil {
		return nil, err
	}

	dsn := filepath.Clean(cfg.DBPath) + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	a := &Authenticator{
		db:      db,
		cfg:     cfg,
		session: sessionFile{path: cfg.SessionPath, secret: secret, now: cfg.Now},
		logger:  logger.Named("auth"),
	}
	a.restore(ctx)
	return a, nil
}

func (a *Authenticator) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}

// restore signs the stored session back in. An unusable session is
// discarded.
func (a *Authenticator) restore(ctx context.Context) {
	id, err := a.session.load()
	if err != nil {
		a.logger.Warn("discarding session", zap.Error(err))
		_ = a.session.clear()
		return
	}
	if id == "" {
		return
	}
	acct, err := a.accountByID(ctx, id)
	if err != nil {
		a.logger.Warn("session account unavailable", zap.String("account", id), zap.Error(err))
		_ = a.session.clear()
		return
	}
	a.setCurrent(&acct)
}

func (a *Authenticator) CurrentUser() (domain.Account, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return domain.Account{}, false
	}
	return *a.current, true
}

func (a *Authenticator) setCurrent(acct *domain.Account) {
	a.mu.Lock()
	a.current = acct
	a.mu.Unlock()
}

func (a *Authenticator) CreateAccount(ctx context.Context, email, password string) (domain.Account, error) {
	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cfg.BcryptCost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Account{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var taken int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM accounts WHERE provider = '' AND email = ?`, email,
	).Scan(&taken)
	if err == nil {
		return domain.Account{}, auth.ErrEmailInUse
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, fmt.Errorf("check email: %w", err)
	}

	acct := domain.Account{ID: a.cfg.NewID(), Email: email}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (account_id, provider, subject, email, password_hash, created_at)
         VALUES (?, '', '', ?, ?, ?)`,
		acct.ID, email, string(hash), a.cfg.Now().UTC().UnixMilli(),
	); err != nil {
		return domain.Account{}, fmt.Errorf("insert account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Account{}, fmt.Errorf("commit account: %w", err)
	}

	if err := a.signInAs(acct); err != nil {
		return domain.Account{}, err
	}
	a.logger.Info("account created", zap.String("account", acct.ID))
	return acct, nil
}

func (a *Authenticator) SignIn(ctx context.Context, email, password string) (domain.Account, error) {
	var (
		acct domain.Account
		hash string
	)
	err := a.db.QueryRowContext(ctx,
		`SELECT account_id, email, photo_url, password_hash FROM accounts WHERE provider = '' AND email = ?`,
		normalizeEmail(email),
	).Scan(&acct.ID, &acct.Email, &acct.PhotoURL, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("load account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return domain.Account{}, auth.ErrInvalidCredentials
	}

	if err := a.signInAs(acct); err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}

func (a *Authenticator) SignInWithProvider(ctx context.Context, provider, token string) (domain.Account, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Account{}, auth.ErrCancelled
	}
	claims, err := verifyProviderToken(a.cfg.ProviderKeys, provider, token, a.cfg.Now)
	if err != nil {
		return domain.Account{}, err
	}

	acct := domain.Account{Provider: provider}
	err = a.db.QueryRowContext(ctx,
		`SELECT account_id, email, photo_url FROM accounts WHERE provider = ? AND subject = ?`,
		provider, claims.Subject,
	).Scan(&acct.ID, &acct.Email, &acct.PhotoURL)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		acct.ID = a.cfg.NewID()
		acct.Email = normalizeEmail(claims.Email)
		acct.PhotoURL = claims.Picture
		if _, err := a.db.ExecContext(ctx,
			`INSERT INTO accounts (account_id, provider, subject, email, photo_url, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			acct.ID, provider, claims.Subject, acct.Email, acct.PhotoURL, a.cfg.Now().UTC().UnixMilli(),
		); err != nil {
			return domain.Account{}, fmt.Errorf("insert account: %w", err)
		}
		a.logger.Info("linked provider account", zap.String("provider", provider), zap.String("account", acct.ID))
	case err != nil:
		return domain.Account{}, fmt.Errorf("load account: %w", err)
	}

	if err := a.signInAs(acct); err != nil {
		return domain.Account{}, err
	}
	return acct, nil
}

// SendPasswordReset records a reset token for the account. There is no mail
// transport; the token is logged.
func (a *Authenticator) SendPasswordReset(ctx context.Context, email string) error {
	var id string
	err := a.db.QueryRowContext(ctx,
		`SELECT account_id FROM accounts WHERE provider = '' AND email = ?`, normalizeEmail(email),
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}

	token := a.cfg.NewID()
	expires := a.cfg.Now().Add(resetTTL)
	if _, err := a.db.ExecContext(ctx,
		`INSERT INTO password_resets (token, account_id, expires_at) VALUES (?, ?, ?)`,
		token, id, expires.UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	a.logger.Info("password reset requested",
		zap.String("account", id),
		zap.String("token", token),
		zap.Time("expires", expires),
	)
	return nil
}

func (a *Authenticator) DeleteCurrentUser(ctx context.Context) error {
	acct, ok := a.CurrentUser()
	if !ok {
		return auth.ErrNotSignedIn
	}
	if _, err := a.db.ExecContext(ctx, `DELETE FROM accounts WHERE account_id = ?`, acct.ID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	a.logger.Info("account deleted", zap.String("account", acct.ID))
	return a.SignOut()
}

func (a *Authenticator) SignOut() error {
	a.setCurrent(nil)
	return a.session.clear()
}

func (a *Authenticator) signInAs(acct domain.Account) error {
	if err := a.session.save(acct.ID); err != nil {
		return err
	}
	a.setCurrent(&acct)
	return nil
}

func (a *Authenticator) accountByID(ctx context.Context, id string) (domain.Account, error) {
	var acct domain.Account
	err := a.db.QueryRowContext(ctx,
		`SELECT account_id, provider, email, photo_url FROM accounts WHERE account_id = ?`, id,
	).Scan(&acct.ID, &acct.Provider, &acct.Email, &acct.PhotoURL)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, auth.ErrNotSignedIn
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("load account: %w", err)
	}
	return acct, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
