package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tabkeep/tabkeepd/internal/logger"
	"github.com/tabkeep/tabkeepd/internal/token"
)

var (
	// ErrNotFound means no account exists with the given id.
	ErrNotFound = errors.New("account not found")
	// ErrEmailTaken means an account already exists for the email.
	ErrEmailTaken = errors.New("email already registered")
)

// Account is a registered user of the sync service. The sync token is
// minted once and reused: re-registering a device never rotates it.
type Account struct {
	ID        string `gorm:"primaryKey"` // UUID
	Email     string `gorm:"uniqueIndex"`
	SyncToken string `gorm:"index"`
	AvatarID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists accounts in SQLite. It doubles as the collision
// checker for token generation, so newly minted tokens are checked
// against every token already handed out.
type Store struct {
	db     *gorm.DB
	logger logger.Logger
}

var _ token.CollisionChecker = (*Store)(nil)

// NewStore opens (or creates) the accounts database and runs
// migrations.
func NewStore(path string, log logger.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open accounts db at %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Account{}); err != nil {
		return nil, fmt.Errorf("failed to migrate accounts db: %w", err)
	}

	return &Store{db: db, logger: log}, nil
}

// Create registers a new account and mints its sync token.
func (s *Store) Create(ctx context.Context, email string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}

	tok, err := token.GenerateUnique(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to mint sync token: %w", err)
	}

	acc := &Account{
		ID:        uuid.NewString(),
		Email:     email,
		SyncToken: tok,
	}

	if err := s.db.WithContext(ctx).Create(acc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account created",
		logger.String("account_id", acc.ID),
		logger.String("token_prefix", token.Prefix(acc.SyncToken)))
	return acc, nil
}

// Get returns the account with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Account, error) {
	var acc Account
	err := s.db.WithContext(ctx).First(&acc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return &acc, nil
}

// EnsureSyncToken returns the account's sync token, minting a new one
// only when the stored token is missing or fails validation. A valid
// stored token is always reused.
func (s *Store) EnsureSyncToken(ctx context.Context, id string) (string, error) {
	acc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	if token.Validate(acc.SyncToken) {
		return acc.SyncToken, nil
	}

	tok, err := token.GenerateUnique(ctx, s)
	if err != nil {
		return "", fmt.Errorf("failed to mint sync token: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&Account{}).
		Where("id = ?", id).
		Update("sync_token", tok).Error
	if err != nil {
		return "", fmt.Errorf("failed to store sync token: %w", err)
	}

	s.logger.Warn("replaced invalid sync token",
		logger.String("account_id", id),
		logger.String("token_prefix", token.Prefix(tok)))
	return tok, nil
}

// TokenExists reports whether any account already holds the token.
func (s *Store) TokenExists(ctx context.Context, tok string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Account{}).
		Where("sync_token = ?", tok).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return count > 0, nil
}
