// Package sqlstore persists reading history and daily cards with gorm on a
// pure-Go SQLite driver.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/futalk/Tarot-Reading/internal/domain"
)

// DefaultKeep is how many readings history retains.
const DefaultKeep = 50

type readingRow struct {
	Seq       uint64         `gorm:"primaryKey;autoIncrement"`
	ID        string         `gorm:"type:varchar(36);uniqueIndex;not null"`
	Spread    string         `gorm:"type:text;not null;index"`
	Question  string         `gorm:"type:text"`
	Cards     datatypes.JSON `gorm:"type:json;not null"`
	Cut       datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

func (readingRow) TableName() string { return "tarot_readings" }

type dailyRow struct {
	UserID  string         `gorm:"type:text;primaryKey"`
	Day     string         `gorm:"type:varchar(10);primaryKey"`
	Card    datatypes.JSON `gorm:"type:json;not null"`
	DrawnAt time.Time      `gorm:"not null"`
}

func (dailyRow) TableName() string { return "tarot_daily_cards" }

// Open opens a SQLite database. SQLite serializes writers anyway, and an
// in-memory database only exists on its own connection, so the pool is
// capped at one connection.
func Open(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("sqlstore: empty dsn")
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dsn, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

type Store struct {
	db   *gorm.DB
	keep int
}

// New migrates the schema and returns a store retaining the newest keep
// readings.
func New(db *gorm.DB, keep int) (*Store, error) {
	if keep < 1 {
		keep = DefaultKeep
	}
	if err := db.AutoMigrate(&readingRow{}, &dailyRow{}); err != nil {
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return &Store{db: db, keep: keep}, nil
}

func (s *Store) Append(ctx context.Context, r domain.Reading) error {
	row, err := toRow(r)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert reading: %w", err)
		}
		newest := tx.Model(&readingRow{}).Select("seq").Order("seq DESC").Limit(s.keep)
		if err := tx.Where("seq NOT IN (?)", newest).Delete(&readingRow{}).Error; err != nil {
			return fmt.Errorf("trim history: %w", err)
		}
		return nil
	})
}

// List returns readings newest first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]domain.Reading, error) {
	q := s.db.WithContext(ctx).Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []readingRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	out := make([]domain.Reading, 0, len(rows))
	for _, row := range rows {
		r, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&readingRow{}).Error
	if err != nil {
		return fmt.Errorf("clear readings: %w", err)
	}
	return nil
}

func (s *Store) GetDaily(ctx context.Context, userID, day string) (domain.DailyCard, bool, error) {
	var row dailyRow
	err := s.db.WithContext(ctx).Where("user_id = ? AND day = ?", userID, day).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DailyCard{}, false, nil
	}
	if err != nil {
		return domain.DailyCard{}, false, fmt.Errorf("get daily card: %w", err)
	}
	var card domain.DrawnCard
	if err := json.Unmarshal(row.Card, &card); err != nil {
		return domain.DailyCard{}, false, fmt.Errorf("decode daily card: %w", err)
	}
	return domain.DailyCard{UserID: row.UserID, Day: row.Day, Card: card, DrawnAt: row.DrawnAt}, true, nil
}

// SaveDaily keeps the first card stored for a user and day.
func (s *Store) SaveDaily(ctx context.Context, d domain.DailyCard) error {
	raw, err := json.Marshal(d.Card)
	if err != nil {
		return fmt.Errorf("encode daily card: %w", err)
	}
	row := dailyRow{UserID: d.UserID, Day: d.Day, Card: raw, DrawnAt: d.DrawnAt}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save daily card: %w", err)
	}
	return nil
}

func toRow(r domain.Reading) (readingRow, error) {
	cards, err := json.Marshal(r.Cards)
	if err != nil {
		return readingRow{}, fmt.Errorf("encode cards: %w", err)
	}
	row := readingRow{
		ID:        r.ID,
		Spread:    r.Spread,
		Question:  r.Question,
		Cards:     cards,
		CreatedAt: r.CreatedAt,
	}
	if r.Cut != nil {
		cut, err := json.Marshal(r.Cut)
		if err != nil {
			return readingRow{}, fmt.Errorf("encode cut card: %w", err)
		}
		row.Cut = cut
	}
	return row, nil
}

func fromRow(row readingRow) (domain.Reading, error) {
	r := domain.Reading{
		ID:        row.ID,
		Spread:    row.Spread,
		Question:  row.Question,
		CreatedAt: row.CreatedAt,
	}
	if err := json.Unmarshal(row.Cards, &r.Cards); err != nil {
		return domain.Reading{}, fmt.Errorf("decode cards of %s: %w", row.ID, err)
	}
	if len(row.Cut) > 0 && string(row.Cut) != "null" {
		var cut domain.DrawnCard
		if err := json.Unmarshal(row.Cut, &cut); err != nil {
			return domain.Reading{}, fmt.Errorf("decode cut card of %s: %w", row.ID, err)
		}
		r.Cut = &cut
	}
	return r, nil
}
