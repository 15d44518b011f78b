// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pdiddy/kelvin/internal/action"
	"github.com/pdiddy/kelvin/internal/logging"
	"github.com/pdiddy/kelvin/pkg/types"
)

// ErrUnknownRow is returned when marking a row the current card lacks.
var ErrUnknownRow = errors.New("no such row in the current card")

// Session runs the action loop against the store's current card. Each call
// reads the current context fresh, so a Session holds no state of its own.
type Session struct {
	store    *Store
	registry *action.Registry
	logger   *slog.Logger
}

// NewSession returns a session over store. A nil logger discards output.
func NewSession(store *Store, registry *action.Registry, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{store: store, registry: registry, logger: logger}
}

// Registry returns the registry the session instantiates from.
func (s *Session) Registry() *action.Registry { return s.registry }

// Init gives an empty workspace its first context: an empty text card.
// It reports whether a card was created.
func (s *Session) Init(ctx context.Context) (types.CardWithView, bool, error) {
	cwv, err := s.store.Head(ctx)
	if err == nil {
		return cwv, false, nil
	}
	if !errors.Is(err, ErrNoContext) {
		return types.CardWithView{}, false, err
	}

	cwv = types.NewCardWithView(types.NewTextCard(nil))
	if err := s.store.SaveContext(ctx, cwv); err != nil {
		return types.CardWithView{}, false, err
	}
	s.logger.Info("workspace initialized", "dir", s.store.Dir(), "card", cwv.Card.ID)
	return cwv, true, nil
}

// Context returns the current card and view.
func (s *Session) Context(ctx context.Context) (types.CardWithView, error) {
	return s.store.Head(ctx)
}

// Actions instantiates every action kind against the current context.
func (s *Session) Actions(ctx context.Context) ([]action.Action, error) {
	cwv, err := s.store.Head(ctx)
	if err != nil {
		return nil, err
	}
	return s.registry.Instantiate(cwv), nil
}

// Run validates a against the current card, executes it, and makes the
// result the new current context. Nothing is stored unless the action
// succeeds and returns a view of the card it produced.
func (s *Session) Run(ctx context.Context, a action.Action) (types.CardWithView, error) {
	cwv, err := s.store.Head(ctx)
	if err != nil {
		return types.CardWithView{}, err
	}
	if err := a.ValidateInput(cwv.Card); err != nil {
		return types.CardWithView{}, err
	}

	s.logger.Debug("running action", "kind", a.Kind(), "label", a.Label(), "card", cwv.Card.ID)
	next, err := a.Execute(ctx, cwv.Card)
	if err != nil {
		return types.CardWithView{}, err
	}
	if next.View.CardID != next.Card.ID {
		return types.CardWithView{}, fmt.Errorf("%s returned a view of card %s for card %s", a.Kind(), next.View.CardID, next.Card.ID)
	}
	if err := s.store.SaveContext(ctx, next); err != nil {
		return types.CardWithView{}, err
	}

	s.logger.Info("action complete", "kind", a.Kind(), "from", cwv.Card.ID, "to", next.Card.ID, "rows", len(next.Card.Rows))
	return next, nil
}

// Mark adds rows to the current selection. Each ref is resolved with
// ResolveRow; an unresolvable ref leaves the selection unchanged.
func (s *Session) Mark(ctx context.Context, refs ...string) (types.CardWithView, error) {
	cwv, err := s.store.Head(ctx)
	if err != nil {
		return types.CardWithView{}, err
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := ResolveRow(cwv.Card, ref)
		if err != nil {
			return types.CardWithView{}, err
		}
		ids = append(ids, id)
	}
	return s.replaceView(ctx, cwv, cwv.View.WithSelection(ids...))
}

// Clear removes every mark from the current card.
func (s *Session) Clear(ctx context.Context) (types.CardWithView, error) {
	cwv, err := s.store.Head(ctx)
	if err != nil {
		return types.CardWithView{}, err
	}
	return s.replaceView(ctx, cwv, cwv.View.Cleared())
}

// Checkout makes an earlier card current again. Its stored view comes
// back with it.
func (s *Session) Checkout(ctx context.Context, cardID string) (types.CardWithView, error) {
	if err := s.store.Checkout(ctx, cardID); err != nil {
		return types.CardWithView{}, err
	}
	return s.store.Head(ctx)
}

// History lists every card in the workspace, newest first.
func (s *Session) History(ctx context.Context) ([]CardSummary, error) {
	return s.store.History(ctx)
}

func (s *Session) replaceView(ctx context.Context, cwv types.CardWithView, view types.CardView) (types.CardWithView, error) {
	if err := s.store.SaveView(ctx, view); err != nil {
		return types.CardWithView{}, err
	}
	return types.CardWithView{Card: cwv.Card, View: view}, nil
}

// ResolveRow turns a user reference into a row ID of card. A reference is a
// 1-based row number, a full row ID, or a unique prefix of one. A number
// outside 1..len(rows) is tried as an ID prefix, so all-digit prefixes work.
func ResolveRow(card types.Card, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty row reference: %w", ErrUnknownRow)
	}
	n, err := strconv.Atoi(ref)
	isNumber := err == nil
	if isNumber && n >= 1 && n <= len(card.Rows) {
		return card.Rows[n-1].RowID(), nil
	}
	if _, ok := card.Row(ref); ok {
		return ref, nil
	}

	var match string
	for _, r := range card.Rows {
		if strings.HasPrefix(r.RowID(), ref) {
			if match != "" {
				return "", fmt.Errorf("row prefix %q is ambiguous: %w", ref, ErrUnknownRow)
			}
			match = r.RowID()
		}
	}
	if match == "" {
		if isNumber {
			return "", fmt.Errorf("row %d out of range 1-%d: %w", n, len(card.Rows), ErrUnknownRow)
		}
		return "", fmt.Errorf("%q: %w", ref, ErrUnknownRow)
	}
	return match, nil
}
