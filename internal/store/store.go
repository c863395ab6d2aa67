// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/verte-zerg/hancards/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width in UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps SQLite access for progress, card state and review history.
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS progress (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_reviewed INTEGER NOT NULL,
			streak_days INTEGER NOT NULL,
			last_review TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS progress_levels (
			level INTEGER PRIMARY KEY,
			count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievements (
			position INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`,
		`CREATE TABLE IF NOT EXISTS cards (
			korean TEXT PRIMARY KEY,
			id TEXT NOT NULL,
			english TEXT NOT NULL,
			example TEXT NOT NULL,
			difficulty REAL NOT NULL,
			last_reviewed TEXT,
			next_review TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			card_id TEXT NOT NULL,
			korean TEXT NOT NULL,
			rating INTEGER NOT NULL,
			difficulty_before REAL NOT NULL,
			difficulty_after REAL NOT NULL,
			reviewed_at TEXT NOT NULL,
			next_review TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_cards_next_review ON cards(next_review);`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_reviewed_at ON reviews(reviewed_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// inTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type progressRow struct {
	TotalReviewed int            `db:"total_reviewed"`
	StreakDays    int            `db:"streak_days"`
	LastReview    sql.NullString `db:"last_review"`
}

type levelRow struct {
	Level int `db:"level"`
	Count int `db:"count"`
}

// Load returns the stored progress record, or the default record when none
// has been saved.
func (s *Store) Load(ctx context.Context) (model.UserProgress, error) {
	return loadProgress(ctx, s.db)
}

func loadProgress(ctx context.Context, q sqlx.QueryerContext) (model.UserProgress, error) {
	p := model.NewUserProgress()

	var row progressRow
	err := sqlx.GetContext(ctx, q, &row, `SELECT total_reviewed, streak_days, last_review FROM progress WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return model.UserProgress{}, fmt.Errorf("failed to read progress: %w", err)
	}
	p.TotalCardsReviewed = row.TotalReviewed
	p.StreakDays = row.StreakDays
	if p.LastReviewDate, err = parseNullTime(row.LastReview); err != nil {
		return model.UserProgress{}, err
	}

	var levels []levelRow
	if err := sqlx.SelectContext(ctx, q, &levels, `SELECT level, count FROM progress_levels`); err != nil {
		return model.UserProgress{}, fmt.Errorf("failed to read level counts: %w", err)
	}
	for _, l := range levels {
		p.CardsByLevel[l.Level] = l.Count
	}

	var names []string
	if err := sqlx.SelectContext(ctx, q, &names, `SELECT name FROM achievements ORDER BY position ASC`); err != nil {
		return model.UserProgress{}, fmt.Errorf("failed to read achievements: %w", err)
	}
	p.Achievements = append(p.Achievements, names...)
	return p, nil
}

// Save writes the whole progress record in one transaction.
func (s *Store) Save(ctx context.Context, p model.UserProgress) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		return saveProgress(ctx, tx, p)
	})
}

func saveProgress(ctx context.Context, tx sqlx.ExecerContext, p model.UserProgress) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO progress (id, total_reviewed, streak_days, last_review) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			total_reviewed = excluded.total_reviewed,
			streak_days = excluded.streak_days,
			last_review = excluded.last_review`,
		p.TotalCardsReviewed, p.StreakDays, formatNullTime(p.LastReviewDate)); err != nil {
		return fmt.Errorf("failed to write progress: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM progress_levels`); err != nil {
		return fmt.Errorf("failed to clear level counts: %w", err)
	}
	for level, count := range p.CardsByLevel {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO progress_levels (level, count) VALUES (?, ?)`, level, count); err != nil {
			return fmt.Errorf("failed to write level counts: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM achievements`); err != nil {
		return fmt.Errorf("failed to clear achievements: %w", err)
	}
	for i, name := range p.Achievements {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO achievements (position, name) VALUES (?, ?)`, i, name); err != nil {
			return fmt.Errorf("failed to write achievements: %w", err)
		}
	}
	return nil
}

type cardRow struct {
	Korean       string         `db:"korean"`
	ID           string         `db:"id"`
	English      string         `db:"english"`
	Example      string         `db:"example"`
	Difficulty   float64        `db:"difficulty"`
	LastReviewed sql.NullString `db:"last_reviewed"`
	NextReview   sql.NullString `db:"next_review"`
}

func (r cardRow) flashcard() (model.Flashcard, error) {
	card := model.Flashcard{
		ID:         r.ID,
		Korean:     r.Korean,
		English:    r.English,
		Example:    r.Example,
		Difficulty: r.Difficulty,
	}
	var err error
	if card.LastReviewed, err = parseNullTime(r.LastReviewed); err != nil {
		return model.Flashcard{}, err
	}
	if card.NextReview, err = parseNullTime(r.NextReview); err != nil {
		return model.Flashcard{}, err
	}
	return card, nil
}

// SaveCard upserts the schedule of a card, keyed by its Korean text.
func (s *Store) SaveCard(ctx context.Context, card model.Flashcard) error {
	return saveCard(ctx, s.db, card)
}

func saveCard(ctx context.Context, e sqlx.ExecerContext, card model.Flashcard) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO cards (korean, id, english, example, difficulty, last_reviewed, next_review)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(korean) DO UPDATE SET
			id = excluded.id,
			english = excluded.english,
			example = excluded.example,
			difficulty = excluded.difficulty,
			last_reviewed = excluded.last_reviewed,
			next_review = excluded.next_review`,
		card.Korean, card.ID, card.English, card.Example, card.Difficulty,
		formatNullTime(card.LastReviewed), formatNullTime(card.NextReview))
	if err != nil {
		return fmt.Errorf("failed to save card %q: %w", card.Korean, err)
	}
	return nil
}

// CardStates returns every stored card state keyed by Korean text.
func (s *Store) CardStates(ctx context.Context) (map[string]model.CardState, error) {
	var rows []cardRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM cards`); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	states := make(map[string]model.CardState, len(rows))
	for _, r := range rows {
		card, err := r.flashcard()
		if err != nil {
			return nil, err
		}
		states[card.Korean] = model.CardState{
			Korean:       card.Korean,
			English:      card.English,
			Example:      card.Example,
			Difficulty:   card.Difficulty,
			LastReviewed: card.LastReviewed,
			NextReview:   card.NextReview,
		}
	}
	return states, nil
}

// DueCards returns stored cards whose next review is at or before now,
// most overdue first. A limit <= 0 returns all of them.
func (s *Store) DueCards(ctx context.Context, now time.Time, limit int) ([]model.Flashcard, error) {
	query := `SELECT * FROM cards
		WHERE next_review IS NULL OR next_review <= ?
		ORDER BY next_review ASC, korean ASC`
	args := []any{formatTime(now)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var rows []cardRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list due cards: %w", err)
	}
	cards := make([]model.Flashcard, 0, len(rows))
	for _, r := range rows {
		card, err := r.flashcard()
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// CountDue returns the number of stored cards due at now.
func (s *Store) CountDue(ctx context.Context, now time.Time) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM cards WHERE next_review IS NULL OR next_review <= ?`, formatTime(now)); err != nil {
		return 0, fmt.Errorf("failed to count due cards: %w", err)
	}
	return n, nil
}

type reviewRow struct {
	ID               int64   `db:"id"`
	SessionID        string  `db:"session_id"`
	CardID           string  `db:"card_id"`
	Korean           string  `db:"korean"`
	Rating           int     `db:"rating"`
	DifficultyBefore float64 `db:"difficulty_before"`
	DifficultyAfter  float64 `db:"difficulty_after"`
	ReviewedAt       string  `db:"reviewed_at"`
	NextReview       string  `db:"next_review"`
}

// InsertReview appends a rating event to the review log.
func (s *Store) InsertReview(ctx context.Context, r model.Review) (int64, error) {
	return insertReview(ctx, s.db, r)
}

func insertReview(ctx context.Context, e sqlx.ExecerContext, r model.Review) (int64, error) {
	res, err := e.ExecContext(ctx,
		`INSERT INTO reviews (session_id, card_id, korean, rating, difficulty_before, difficulty_after, reviewed_at, next_review)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.CardID, r.Korean, r.Rating, r.DifficultyBefore, r.DifficultyAfter,
		formatTime(r.ReviewedAt), formatTime(r.NextReview))
	if err != nil {
		return 0, fmt.Errorf("failed to insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read review id: %w", err)
	}
	return id, nil
}

// RecordReview stores a rated card, its review log entry and the progress
// record produced by apply in one transaction. Nothing is written if any
// step fails.
func (s *Store) RecordReview(ctx context.Context, card model.Flashcard, r model.Review, apply func(model.UserProgress) model.UserProgress) (model.UserProgress, error) {
	var out model.UserProgress
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := saveCard(ctx, tx, card); err != nil {
			return err
		}
		if _, err := insertReview(ctx, tx, r); err != nil {
			return err
		}
		p, err := loadProgress(ctx, tx)
		if err != nil {
			return err
		}
		p = apply(p)
		if err := saveProgress(ctx, tx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return model.UserProgress{}, err
	}
	return out, nil
}

// ListReviews returns reviews at or after since, oldest first.
// A zero since returns the whole log.
func (s *Store) ListReviews(ctx context.Context, since time.Time) ([]model.Review, error) {
	var rows []reviewRow
	query := `SELECT * FROM reviews ORDER BY reviewed_at ASC, id ASC`
	args := []any{}
	if !since.IsZero() {
		query = `SELECT * FROM reviews WHERE reviewed_at >= ? ORDER BY reviewed_at ASC, id ASC`
		args = append(args, formatTime(since))
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	reviews := make([]model.Review, 0, len(rows))
	for _, r := range rows {
		reviewedAt, err := parseTime(r.ReviewedAt)
		if err != nil {
			return nil, err
		}
		next, err := parseTime(r.NextReview)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, model.Review{
			ID:               r.ID,
			SessionID:        r.SessionID,
			CardID:           r.CardID,
			Korean:           r.Korean,
			Rating:           r.Rating,
			DifficultyBefore: r.DifficultyBefore,
			DifficultyAfter:  r.DifficultyAfter,
			ReviewedAt:       reviewedAt,
			NextReview:       next,
		})
	}
	return reviews, nil
}

// ResetAll clears card state and the review log and stores the default
// progress record.
func (s *Store) ResetAll(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range []string{`DELETE FROM cards`, `DELETE FROM reviews`} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
		}
		return saveProgress(ctx, tx, model.NewUserProgress())
	})
}
