package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Generation sources.
const (
	SourceFields = "fields"
	SourceChat   = "chat"
	SourceBatch  = "batch"
)

// Generation is one prompt sent to the model and what came back.
type Generation struct {
	ID              string    `db:"id"`
	Source          string    `db:"source"`
	Choice          string    `db:"choice"`
	Biome           string    `db:"biome"`
	Features        string    `db:"features"`
	Constriction    string    `db:"constriction"`
	TextStyle       string    `db:"text_style"`
	Message         string    `db:"message"`
	SystemMessage   string    `db:"system_message"`
	FormattedPrompt string    `db:"formatted_prompt"`
	Response        string    `db:"response"`
	Success         bool      `db:"success"`
	Error           string    `db:"error"`
	DurationMS      int64     `db:"duration_ms"`
	CreatedAt       time.Time `db:"created_at"`
}

// GenerationStats holds aggregate counts over the whole history.
type GenerationStats struct {
	Total         int64            `db:"total"`
	Succeeded     int64            `db:"succeeded"`
	Failed        int64            `db:"failed"`
	AvgDurationMS float64          `db:"avg_duration_ms"`
	BySource      map[string]int64 `db:"-"`
}

// GenerationStore is the sqlx-backed store for the generation history.
type GenerationStore struct {
	db *sqlx.DB
}

// NewGenerationStore creates a new GenerationStore.
func NewGenerationStore(db *sqlx.DB) *GenerationStore {
	return &GenerationStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *GenerationStore) q(query string) string { return s.db.Rebind(query) }

const generationColumns = `id, source, choice, biome, features, constriction, text_style, message,
	system_message, formatted_prompt, response, success, error, duration_ms, created_at`

// Record inserts g, assigning its ID and CreatedAt when they are unset.
func (s *GenerationStore) Record(ctx context.Context, g *Generation) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	switch g.Source {
	case SourceFields, SourceChat, SourceBatch:
	default:
		return fmt.Errorf("unknown generation source %q", g.Source)
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO generations (`+generationColumns+`)
		VALUES (:id, :source, :choice, :biome, :features, :constriction, :text_style, :message,
			:system_message, :formatted_prompt, :response, :success, :error, :duration_ms, :created_at)
	`, g)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

// Get returns the generation with the given id, or ErrNotFound.
func (s *GenerationStore) Get(ctx context.Context, id string) (*Generation, error) {
	var g Generation
	err := s.db.GetContext(ctx, &g, s.q(`SELECT `+generationColumns+` FROM generations WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListRecentBefore returns up to limit generations created strictly before
// before, newest first. A zero before starts from the newest row.
func (s *GenerationStore) ListRecentBefore(ctx context.Context, before time.Time, limit int) ([]*Generation, error) {
	var (
		rows []*Generation
		err  error
	)
	if before.IsZero() {
		err = s.db.SelectContext(ctx, &rows, s.q(`
			SELECT `+generationColumns+` FROM generations
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		`), limit)
	} else {
		err = s.db.SelectContext(ctx, &rows, s.q(`
			SELECT `+generationColumns+` FROM generations
			WHERE created_at < ?
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		`), before.UTC(), limit)
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Stats returns totals, success and failure counts and per-source counts.
func (s *GenerationStore) Stats(ctx context.Context) (GenerationStats, error) {
	var stats GenerationStats
	err := s.db.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0) AS succeeded,
		       COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0) AS failed,
		       COALESCE(AVG(duration_ms), 0) AS avg_duration_ms
		FROM generations
	`)
	if err != nil {
		return stats, err
	}

	var bySource []struct {
		Source string `db:"source"`
		Count  int64  `db:"n"`
	}
	err = s.db.SelectContext(ctx, &bySource, `
		SELECT source, COUNT(*) AS n FROM generations GROUP BY source
	`)
	if err != nil {
		return stats, err
	}
	stats.BySource = make(map[string]int64, len(bySource))
	for _, row := range bySource {
		stats.BySource[row.Source] = row.Count
	}
	return stats, nil
}
