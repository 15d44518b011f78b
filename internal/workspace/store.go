// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workspace hosts the card action loop on a local machine. A Store
// keeps every card produced, the latest view of each card, and which card
// is current; a Session runs actions against the current card.
package workspace

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/kelvin/pkg/types"
)

const dbFile = "kelvin.db"

var (
	// ErrNoContext is returned when the workspace has no current card yet.
	ErrNoContext = errors.New("workspace has no current card: run kelvin init")

	// ErrCardNotFound is returned for a card ID the store does not hold.
	ErrCardNotFound = errors.New("card not found")
)

// Store persists cards and views in a SQLite database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates the workspace database at cfg.Dir/kelvin.db.
func NewStore(cfg types.WorkspaceConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = ".kelvin"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspace directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the workspace directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cards (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			body TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS views (
			card_id TEXT PRIMARY KEY REFERENCES cards(id),
			selected TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS head (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			card_id TEXT NOT NULL REFERENCES cards(id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveContext stores a new card with its view and makes it current, in one
// transaction.
func (s *Store) SaveContext(ctx context.Context, cwv types.CardWithView) error {
	if cwv.View.CardID != cwv.Card.ID {
		return fmt.Errorf("view references card %s, not %s", cwv.View.CardID, cwv.Card.ID)
	}
	body, err := json.Marshal(cwv.Card)
	if err != nil {
		return fmt.Errorf("encoding card: %w", err)
	}
	selected, err := encodeSelection(cwv.View)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cards (id, kind, row_count, body, created_at) VALUES (?, ?, ?, ?, ?)`,
		cwv.Card.ID, string(cwv.Card.Kind), len(cwv.Card.Rows), string(body),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting card %s: %w", cwv.Card.ID, err)
	}

	if err := upsertView(ctx, tx, cwv.View.CardID, selected); err != nil {
		return err
	}
	if err := setHead(ctx, tx, cwv.Card.ID); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveView replaces the stored view of an existing card.
func (s *Store) SaveView(ctx context.Context, view types.CardView) error {
	selected, err := encodeSelection(view)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := cardExists(ctx, tx, view.CardID); err != nil {
		return err
	}
	if err := upsertView(ctx, tx, view.CardID, selected); err != nil {
		return err
	}
	return tx.Commit()
}

// Head returns the current card and its view.
func (s *Store) Head(ctx context.Context) (types.CardWithView, error) {
	var cardID string
	err := s.db.QueryRowContext(ctx, `SELECT card_id FROM head WHERE id = 1`).Scan(&cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CardWithView{}, ErrNoContext
	}
	if err != nil {
		return types.CardWithView{}, fmt.Errorf("reading head: %w", err)
	}
	return s.Load(ctx, cardID)
}

// Load returns a stored card and its latest view.
func (s *Store) Load(ctx context.Context, cardID string) (types.CardWithView, error) {
	var body string
	var selected sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT c.body, v.selected FROM cards c LEFT JOIN views v ON v.card_id = c.id WHERE c.id = ?`,
		cardID,
	).Scan(&body, &selected)
	if errors.Is(err, sql.ErrNoRows) {
		return types.CardWithView{}, fmt.Errorf("%s: %w", cardID, ErrCardNotFound)
	}
	if err != nil {
		return types.CardWithView{}, fmt.Errorf("loading card %s: %w", cardID, err)
	}

	var card types.Card
	if err := json.Unmarshal([]byte(body), &card); err != nil {
		return types.CardWithView{}, fmt.Errorf("decoding card %s: %w", cardID, err)
	}

	view := types.NewCardView(card)
	if selected.Valid && selected.String != "" {
		if err := json.Unmarshal([]byte(selected.String), &view.SelectedRows); err != nil {
			return types.CardWithView{}, fmt.Errorf("decoding view of %s: %w", cardID, err)
		}
	}
	return types.CardWithView{Card: card, View: view}, nil
}

// Checkout makes an existing card current again.
func (s *Store) Checkout(ctx context.Context, cardID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := cardExists(ctx, tx, cardID); err != nil {
		return err
	}
	if err := setHead(ctx, tx, cardID); err != nil {
		return err
	}
	return tx.Commit()
}

// CardSummary describes one stored card for history listings.
type CardSummary struct {
	ID        string         `json:"id" yaml:"id"`
	Kind      types.CardKind `json:"kind" yaml:"kind"`
	Rows      int            `json:"rows" yaml:"rows"`
	Selected  int            `json:"selected" yaml:"selected"`
	CreatedAt time.Time      `json:"created_at" yaml:"created_at"`
	Current   bool           `json:"current" yaml:"current"`
}

// History lists stored cards, newest first.
func (s *Store) History(ctx context.Context) ([]CardSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.kind, c.row_count, c.created_at, v.selected, h.card_id IS NOT NULL
		 FROM cards c
		 LEFT JOIN views v ON v.card_id = c.id
		 LEFT JOIN head h ON h.card_id = c.id
		 ORDER BY c.seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []CardSummary
	for rows.Next() {
		var (
			sum      CardSummary
			kind     string
			created  string
			selected sql.NullString
		)
		if err := rows.Scan(&sum.ID, &kind, &sum.Rows, &created, &selected, &sum.Current); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		sum.Kind = types.CardKind(kind)
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			sum.CreatedAt = t
		}
		if selected.Valid {
			var marks map[string]bool
			if err := json.Unmarshal([]byte(selected.String), &marks); err == nil {
				for _, on := range marks {
					if on {
						sum.Selected++
					}
				}
			}
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func encodeSelection(view types.CardView) (string, error) {
	marks := view.SelectedRows
	if marks == nil {
		marks = map[string]bool{}
	}
	data, err := json.Marshal(marks)
	if err != nil {
		return "", fmt.Errorf("encoding view: %w", err)
	}
	return string(data), nil
}

func cardExists(ctx context.Context, tx *sql.Tx, cardID string) error {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT count(*) FROM cards WHERE id = ?`, cardID).Scan(&n); err != nil {
		return fmt.Errorf("checking card %s: %w", cardID, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", cardID, ErrCardNotFound)
	}
	return nil
}

func upsertView(ctx context.Context, tx *sql.Tx, cardID, selected string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO views (card_id, selected) VALUES (?, ?)
		 ON CONFLICT(card_id) DO UPDATE SET selected=excluded.selected`,
		cardID, selected,
	)
	if err != nil {
		return fmt.Errorf("saving view of %s: %w", cardID, err)
	}
	return nil
}

func setHead(ctx context.Context, tx *sql.Tx, cardID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO head (id, card_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET card_id=excluded.card_id`,
		cardID,
	)
	if err != nil {
		return fmt.Errorf("moving head to %s: %w", cardID, err)
	}
	return nil
}
