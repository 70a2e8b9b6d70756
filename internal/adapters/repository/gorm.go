package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// attemptRow is the snipe_attempts table.
type attemptRow struct {
	ID          string    `gorm:"primaryKey;size:36"`
	PassID      string    `gorm:"size:36;index"`
	Coordinate  string    `gorm:"size:64;not null"`
	Source      string    `gorm:"size:16;not null"`
	Outcome     string    `gorm:"size:32;not null"`
	SpeciesID   int
	SpeciesName string `gorm:"size:64"`
	VIP         bool
	Tries       int
	Error       string
	StartedAt   time.Time `gorm:"not null"`
	FinishedAt  time.Time `gorm:"not null;index"`
}

func (attemptRow) TableName() string { return "snipe_attempts" }

// OpenPostgres opens a gorm handle on dsn.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// GormStore persists attempts through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db and makes sure the table exists.
func NewGormStore(ctx context.Context, db *gorm.DB) (*GormStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&attemptRow{}); err != nil {
		return nil, fmt.Errorf("%w: migrate snipe_attempts: %w", ErrStore, err)
	}
	return &GormStore{db: db}, nil
}

// Record inserts a.
func (s *GormStore) Record(ctx context.Context, a Attempt) error {
	row := attemptRow{
		ID:          a.ID,
		PassID:      a.PassID,
		Coordinate:  a.Coordinate,
		Source:      a.Source,
		Outcome:     a.Outcome,
		SpeciesID:   a.SpeciesID,
		SpeciesName: a.SpeciesName,
		VIP:         a.VIP,
		Tries:       a.Tries,
		Error:       a.Error,
		StartedAt:   a.StartedAt,
		FinishedAt:  a.FinishedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("%w: insert attempt %s: %w", ErrStore, a.ID, err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first.
func (s *GormStore) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows := []attemptRow{}
	err := s.db.WithContext(ctx).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "finished_at"}, Desc: true}},
		}).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list attempts: %w", ErrStore, err)
	}

	out := make([]Attempt, 0, len(rows))
	for _, r := range rows {
		out = append(out, Attempt{
			ID:          r.ID,
			PassID:      r.PassID,
			Coordinate:  r.Coordinate,
			Source:      r.Source,
			Outcome:     r.Outcome,
			SpeciesID:   r.SpeciesID,
			SpeciesName: r.SpeciesName,
			VIP:         r.VIP,
			Tries:       r.Tries,
			Error:       r.Error,
			StartedAt:   r.StartedAt,
			FinishedAt:  r.FinishedAt,
		})
	}
	return out, nil
}

// Count returns the number of stored attempts.
func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&attemptRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("%w: count attempts: %w", ErrStore, err)
	}
	return n, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return sqlDB.Close()
}
