package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store persists users and sessions in the same database as tasks.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the users and sessions tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Session{}); err != nil {
		return fmt.Errorf("migrate identity: %w", err)
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, u User) error {
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) UserByID(ctx context.Context, id string) (User, bool, error) {
	return s.findUser(ctx, "id = ?", id)
}

func (s *Store) UserByUsername(ctx context.Context, username string) (User, bool, error) {
	return s.findUser(ctx, "username = ?", username)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (User, bool, error) {
	return s.findUser(ctx, "email = ?", email)
}

func (s *Store) findUser(ctx context.Context, cond string, arg any) (User, bool, error) {
	var u User
	err := s.db.WithContext(ctx).Where(cond, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("find user: %w", err)
	}
	return u, true, nil
}

func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Store) SessionByTokenHash(ctx context.Context, tokenHash string) (Session, bool, error) {
	var sess Session
	err := s.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("find session: %w", err)
	}
	return sess, true, nil
}

func (s *Store) TouchSession(ctx context.Context, id string, seen time.Time) error {
	err := s.db.WithContext(ctx).Model(&Session{}).
		Where("id = ?", id).
		Update("last_seen", seen).Error
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

func (s *Store) DeleteSessionByID(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&Session{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteSessionByTokenHash(ctx context.Context, tokenHash string) error {
	if err := s.db.WithContext(ctx).Delete(&Session{}, "token_hash = ?", tokenHash).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
