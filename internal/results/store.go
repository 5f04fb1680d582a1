package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seeron6/eras-portfolio/internal/game"
)

// timeLayout has a fixed-width fraction so finished_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Play is one finished game.
type Play struct {
	ID         string       `json:"id"`
	VisitorID  string       `json:"visitorId"`
	Variant    game.Variant `json:"variant"`
	Status     game.Status  `json:"status"`
	Attempts   int          `json:"attempts"`
	Daily      bool         `json:"daily"`
	FinishedAt time.Time    `json:"finishedAt"`
}

// VariantSummary is the public tally for one mini-game.
type VariantSummary struct {
	Variant game.Variant `json:"variant"`
	Played  int          `json:"played"`
	Won     int          `json:"won"`
}

// Ledger records finished games. A nil *Ledger is valid and records nothing,
// which is how the server runs when DB_PATH is empty.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// NewLedger wraps an already migrated database.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// Enabled reports whether plays are persisted.
func (l *Ledger) Enabled() bool { return l != nil && l.db != nil }

// Record inserts a finished game and returns its generated id.
func (l *Ledger) Record(ctx context.Context, p Play) (string, error) {
	if !l.Enabled() {
		return "", nil
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.FinishedAt.IsZero() {
		p.FinishedAt = l.now()
	}
	daily := 0
	if p.Daily {
		daily = 1
	}
	_, err := l.db.ExecContext(ctx, `
        INSERT INTO plays (id, visitor_id, variant, status, attempts, daily, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.VisitorID, string(p.Variant), string(p.Status), p.Attempts, daily,
		p.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert play: %w", err)
	}
	return p.ID, nil
}

// Summary returns played/won counts for every variant, including ones that
// have never been played.
func (l *Ledger) Summary(ctx context.Context) ([]VariantSummary, error) {
	out := []VariantSummary{
		{Variant: game.VariantDialogue},
		{Variant: game.VariantCodeBreak},
		{Variant: game.VariantWordGuess},
	}
	if !l.Enabled() {
		return out, nil
	}

	rows, err := l.db.QueryContext(ctx, `
        SELECT variant, COUNT(1), SUM(CASE WHEN status = ? THEN 1 ELSE 0 END)
        FROM plays
        GROUP BY variant`, string(game.StatusWon))
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			variant     string
			played, won int
		)
		if err := rows.Scan(&variant, &played, &won); err != nil {
			return nil, err
		}
		for i := range out {
			if string(out[i].Variant) == variant {
				out[i].Played, out[i].Won = played, won
			}
		}
	}
	return out, rows.Err()
}

// MaxRecent caps how many plays Recent returns in one call.
const MaxRecent = 500

// Recent lists the latest plays, newest first. Default limit is 50 and
// larger requests are clamped to MaxRecent.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Play, error) {
	if !l.Enabled() {
		return []Play{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > MaxRecent {
		limit = MaxRecent
	}
	rows, err := l.db.QueryContext(ctx, `
        SELECT id, visitor_id, variant, status, attempts, daily, finished_at
        FROM plays
        ORDER BY finished_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent: %w", err)
	}
	defer rows.Close()

	out := []Play{}
	for rows.Next() {
		var (
			p               Play
			variant, status string
			daily           int
			finished        string
		)
		if err := rows.Scan(&p.ID, &p.VisitorID, &variant, &status, &p.Attempts, &daily, &finished); err != nil {
			return nil, err
		}
		p.Variant = game.Variant(variant)
		p.Status = game.Status(status)
		p.Daily = daily == 1
		if p.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("recent: play %s finished_at %q: %w", p.ID, finished, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
