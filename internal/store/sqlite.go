package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type runRecord struct {
	ID         string `gorm:"primaryKey;size:36"`
	Scenario   string `gorm:"index"`
	Tag        string
	Workbook   string
	Status     string
	Objective  float64
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time
	Error      string
	Entries    []entryRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

func (runRecord) TableName() string { return "runs" }

type entryRecord struct {
	RunID    string `gorm:"primaryKey;size:36"`
	Position int    `gorm:"primaryKey;autoIncrement:false"`
	Sheet    string `gorm:"column:table_name"`
	Key      string `gorm:"column:entry_key"`
	Value    float64
}

func (entryRecord) TableName() string { return "run_entries" }

// SQLite archives runs in a local sqlite file through gorm.
type SQLite struct {
	db *gorm.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&runRecord{}, &entryRecord{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) SaveRun(ctx context.Context, run Run) error {
	rec := toRecord(run)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", rec.ID).Delete(&entryRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&rec).Error; err != nil {
			return err
		}
		if len(rec.Entries) == 0 {
			return nil
		}
		return tx.CreateInBatches(rec.Entries, 500).Error
	})
}

func (s *SQLite) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	var rec runRecord
	err := s.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&rec, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}
	return fromRecord(rec)
}

func (s *SQLite) ListRuns(ctx context.Context, scenario string, limit int) ([]Run, error) {
	var recs []runRecord
	query := s.db.WithContext(ctx).Order("started_at desc")
	if scenario != "" {
		query = query.Where("scenario = ?", scenario)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]Run, 0, len(recs))
	for _, rec := range recs {
		run, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, nil
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRecord(run Run) runRecord {
	rec := runRecord{
		ID:         run.ID.String(),
		Scenario:   run.Scenario,
		Tag:        run.Tag,
		Workbook:   run.Workbook,
		Status:     run.Status,
		Objective:  run.Objective,
		StartedAt:  run.StartedAt.UTC(),
		FinishedAt: run.FinishedAt.UTC(),
		Error:      run.Error,
	}
	for i, e := range run.Entries {
		rec.Entries = append(rec.Entries, entryRecord{
			RunID:    rec.ID,
			Position: i,
			Sheet:    e.Table,
			Key:      e.Key,
			Value:    e.Value,
		})
	}
	return rec
}

func fromRecord(rec runRecord) (Run, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return Run{}, fmt.Errorf("run %q: %w", rec.ID, err)
	}
	run := Run{
		ID:         id,
		Scenario:   rec.Scenario,
		Tag:        rec.Tag,
		Workbook:   rec.Workbook,
		Status:     rec.Status,
		Objective:  rec.Objective,
		StartedAt:  rec.StartedAt.UTC(),
		FinishedAt: rec.FinishedAt.UTC(),
		Error:      rec.Error,
	}
	for _, e := range rec.Entries {
		run.Entries = append(run.Entries, Entry{Table: e.Sheet, Key: e.Key, Value: e.Value})
	}
	return run, nil
}
