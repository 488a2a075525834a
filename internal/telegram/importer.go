package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danhigham/telegrame/internal/account"
	"github.com/danhigham/telegrame/internal/avatar"
	"github.com/danhigham/telegrame/internal/directory"
	"github.com/danhigham/telegrame/internal/domain"
)

const importWorkers = 4

// AvatarUploader stores profile pictures.
type AvatarUploader interface {
	Put(ctx context.Context, userID string, img []byte) (string, error)
}

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int
	Skipped  int
}

// Importer copies Telegram contacts into the user directory.
type Importer struct {
	source  ContactSource
	dir     directory.Directory
	avatars AvatarUploader
	logger  *zap.Logger
}

func NewImporter(source ContactSource, dir directory.Directory, avatars AvatarUploader, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{source: source, dir: dir, avatars: avatars, logger: logger.Named("import")}
}

// Run fetches the contacts and creates a record for each one whose username
// is not yet taken.
func (im *Importer) Run(ctx context.Context) (ImportResult, error) {
	contacts, err := im.source.Contacts(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	return im.Import(ctx, contacts)
}

// Import creates directory records for users concurrently.
func (im *Importer) Import(ctx context.Context, users []domain.User) (ImportResult, error) {
	var imported, skipped atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importWorkers)
	for _, u := range users {
		g.Go(func() error {
			ok, err := im.importOne(gctx, u)
			if err != nil {
				return fmt.Errorf("import %s: %w", u.Username, err)
			}
			if ok {
				imported.Add(1)
			} else {
				skipped.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	res := ImportResult{Imported: int(imported.Load()), Skipped: int(skipped.Load())}
	im.logger.Info("import finished",
		zap.Int("imported", res.Imported),
		zap.Int("skipped", res.Skipped),
		zap.Error(err),
	)
	return res, err
}

func (im *Importer) importOne(ctx context.Context, u domain.User) (bool, error) {
	taken, err := im.dir.Exists(ctx, directory.FieldUsername, u.Username)
	if err != nil {
		return false, err
	}
	if taken {
		im.logger.Debug("username taken", zap.String("username", u.Username))
		return false, nil
	}

	if im.avatars != nil && u.PhotoURL == "" {
		img, err := avatar.Render(account.Initial(u.DisplayName))
		if err != nil {
			return false, err
		}
		if u.PhotoURL, err = im.avatars.Put(ctx, u.ID, img); err != nil {
			return false, err
		}
	}

	err = im.dir.Create(ctx, u)
	if errors.Is(err, directory.ErrUsernameTaken) {
		return false, nil
	}
	return err == nil, err
}
