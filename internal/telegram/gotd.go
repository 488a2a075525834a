package telegram

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/danhigham/telegrame/internal/domain"
)

// ContactSource lists the contacts of a Telegram account as directory
// records.
type ContactSource interface {
	Contacts(ctx context.Context) ([]domain.User, error)
}

// GotdSource fetches contacts through gotd/td, logging in first if the
// stored session is missing or expired.
type GotdSource struct {
	apiID      int
	apiHash    string
	sessionDir string
	authFlow   auth.UserAuthenticator
	logger     *zap.Logger
}

var _ ContactSource = (*GotdSource)(nil)

func NewGotdSource(apiID int, apiHash, sessionDir string, authFlow auth.UserAuthenticator, logger *zap.Logger) *GotdSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GotdSource{
		apiID:      apiID,
		apiHash:    apiHash,
		sessionDir: sessionDir,
		authFlow:   authFlow,
		logger:     logger,
	}
}

func (s *GotdSource) Contacts(ctx context.Context) ([]domain.User, error) {
	if s.apiID == 0 || s.apiHash == "" {
		return nil, fmt.Errorf("telegram api_id and api_hash are required")
	}

	client := telegram.NewClient(s.apiID, s.apiHash, telegram.Options{
		Logger:         s.logger.Named("gotd"),
		SessionStorage: &session.FileStorage{Path: filepath.Join(s.sessionDir, "telegram-session.json")},
	})

	var contacts []domain.User
	err := client.Run(ctx, func(ctx context.Context) error {
		flow := auth.NewFlow(s.authFlow, auth.SendCodeOptions{})
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("auth: %w", err)
		}

		result, err := client.API().ContactsGetContacts(ctx, 0)
		if err != nil {
			return fmt.Errorf("get contacts: %w", err)
		}
		list, ok := result.(*tg.ContactsContacts)
		if !ok {
			return fmt.Errorf("unexpected contacts type: %T", result)
		}
		contacts = ContactsToUsers(list.Users)
		s.logger.Info("fetched contacts", zap.Int("users", len(list.Users)), zap.Int("importable", len(contacts)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contacts, nil
}
