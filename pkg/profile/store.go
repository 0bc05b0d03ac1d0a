package profile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when no profile image has the requested ID
var ErrNotFound = errors.New("profile image not found")

// Store persists profile images in SQLite through GORM
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at dsn and migrates the schema
func Open(dsn string) (*Store, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}

	if err := db.AutoMigrate(&ProfileImage{}); err != nil {
		return nil, fmt.Errorf("profile AutoMigrate failed: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Create inserts an empty profile image with a fresh ID
func (s *Store) Create(ctx context.Context) (*ProfileImage, error) {
	p := &ProfileImage{ID: uuid.NewString()}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile image: %w", err)
	}
	return p, nil
}

// Get loads a profile image by ID
func (s *Store) Get(ctx context.Context, id string) (*ProfileImage, error) {
	var p ProfileImage
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile image %s: %w", id, err)
	}
	return &p, nil
}

// Save writes all fields of p
func (s *Store) Save(ctx context.Context, p *ProfileImage) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to save profile image %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes a profile image
func (s *Store) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&ProfileImage{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete profile image %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
