// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package action implements the card action protocol: how an action kind
// offers itself for a (card, view) context, validates against a card, and
// executes to produce the next context.
//
// Each kind supplies three pieces: a declaration (default params and
// label), a pure instantiate function that derives ready-to-offer instances
// from a context, and the instance methods ValidateInput and Execute. The
// Registry ties the kinds together so a host can enumerate them.
package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/kelvin/pkg/types"
)

// Kind discriminates action variants.
type Kind string

const (
	KindSearchPapers Kind = "VespaSearchAction"
	KindViewPaper    Kind = "ViewPaperAction"
	KindAddText      Kind = "AddTextRowAction"
)

var (
	// ErrValidation marks an action that is not applicable to a card.
	// Hosts test for it with errors.Is and re-prompt the user.
	ErrValidation = errors.New("action not applicable")

	// ErrUnknownKind is returned for a Kind no variant handles.
	ErrUnknownKind = errors.New("unknown action kind")

	// ErrUnknownParam is returned when editing a param the action does not declare.
	ErrUnknownParam = errors.New("unknown action param")
)

// ValidationError explains why an action cannot run against a card.
type ValidationError struct {
	Action   Kind
	CardKind types.CardKind
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s on %s: %s", e.Action, e.CardKind, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Action is one concrete, ready-to-run instance. Instances are immutable;
// editing params produces a new instance through Registry.Rebuild.
//
// The interface is sealed: every implementation embeds base, so the set of
// variants is the closed list of Kind constants above.
type Action interface {
	Kind() Kind
	Label() string

	// Params returns a copy of the instance's params in declaration order.
	Params() []types.ActionParam

	// ValidateInput reports whether the action may run against card. It is
	// pure and independent of the selection. Failures satisfy
	// errors.Is(err, ErrValidation).
	ValidateInput(card types.Card) error

	// Execute runs the action and returns a new card with its view. The
	// input card is never modified. Execute may block on external calls
	// for as long as ctx allows; it imposes no timeout of its own.
	Execute(ctx context.Context, card types.Card) (types.CardWithView, error)

	sealed()
}

// base carries the data every variant shares.
type base struct {
	kind   Kind
	label  string
	params []types.ActionParam
}

func (b base) Kind() Kind    { return b.kind }
func (b base) Label() string { return b.label }
func (base) sealed()         {}

func (b base) Params() []types.ActionParam {
	out := make([]types.ActionParam, len(b.params))
	copy(out, b.params)
	return out
}

// value returns the value of the named param, or "" when unset.
func (b base) value(name string) string {
	for _, p := range b.params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// with returns a copy of b with a new label and the named param set.
func (b base) with(label, name, value string) base {
	next := base{kind: b.kind, label: label, params: b.Params()}
	for i := range next.params {
		if next.params[i].Name == name {
			next.params[i] = next.params[i].WithValue(value)
		}
	}
	return next
}

func (b base) invalid(card types.Card, format string, args ...any) error {
	return &ValidationError{Action: b.kind, CardKind: card.Kind, Reason: fmt.Sprintf(format, args...)}
}

// Info is a serializable description of an action instance.
type Info struct {
	Kind   Kind                `json:"kind" yaml:"kind"`
	Label  string              `json:"label" yaml:"label"`
	Params []types.ActionParam `json:"params" yaml:"params"`
}

// Describe returns the Info for a.
func Describe(a Action) Info {
	return Info{Kind: a.Kind(), Label: a.Label(), Params: a.Params()}
}
