// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package action

import (
	"fmt"
	"log/slog"

	"github.com/pdiddy/kelvin/internal/logging"
	"github.com/pdiddy/kelvin/internal/search"
	"github.com/pdiddy/kelvin/pkg/types"
)

// Deps are the collaborators concrete actions need at execute time.
// Instantiation never touches them.
type Deps struct {
	Searcher search.Searcher
	Logger   *slog.Logger
}

// kinds lists every variant in the order hosts should offer them.
var kinds = []Kind{KindSearchPapers, KindAddText, KindViewPaper}

// Registry enumerates action kinds and instantiates them against contexts.
type Registry struct {
	deps Deps
}

// NewRegistry returns a registry whose instances execute with deps.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	return &Registry{deps: deps}
}

// Kinds returns every registered kind in offer order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Instantiate asks every kind for its instances against cwv and returns
// them concatenated in offer order. It performs no I/O and never fails;
// kinds that do not apply contribute nothing.
func (r *Registry) Instantiate(cwv types.CardWithView) []Action {
	var out []Action
	for _, k := range kinds {
		out = append(out, r.instantiate(k, cwv)...)
	}
	return out
}

func (r *Registry) instantiate(k Kind, cwv types.CardWithView) []Action {
	switch k {
	case KindSearchPapers:
		return instantiateSearchPapers(r.deps, cwv)
	case KindViewPaper:
		return instantiateViewPaper(r.deps, cwv)
	case KindAddText:
		return instantiateAddText(r.deps, cwv)
	}
	return nil
}

// Declaration returns the context-free instance of kind: default params and
// default label.
func (r *Registry) Declaration(k Kind) (Action, error) {
	b, err := declare(k)
	if err != nil {
		return nil, err
	}
	return r.build(b), nil
}

// Rebuild returns a new instance of a's kind with the given param values
// replacing a's. The label is kept. Names a does not declare are rejected.
func (r *Registry) Rebuild(a Action, values map[string]string) (Action, error) {
	b := base{kind: a.Kind(), label: a.Label(), params: a.Params()}
	for name, value := range values {
		found := false
		for i := range b.params {
			if b.params[i].Name == name {
				b.params[i] = b.params[i].WithValue(value)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%s has no param %q: %w", a.Kind(), name, ErrUnknownParam)
		}
	}
	if _, err := declare(b.kind); err != nil {
		return nil, err
	}
	return r.build(b), nil
}

func declare(k Kind) (base, error) {
	switch k {
	case KindSearchPapers:
		return declareSearchPapers(), nil
	case KindViewPaper:
		return declareViewPaper(), nil
	case KindAddText:
		return declareAddText(), nil
	}
	return base{}, fmt.Errorf("%q: %w", k, ErrUnknownKind)
}

// build wraps b in the variant type for b.kind. Callers check the kind
// with declare first.
func (r *Registry) build(b base) Action {
	switch b.kind {
	case KindSearchPapers:
		return newSearchPapers(r.deps, b)
	case KindViewPaper:
		return newViewPaper(r.deps, b)
	case KindAddText:
		return newAddText(r.deps, b)
	}
	panic(fmt.Sprintf("action: no variant for kind %q", b.kind))
}
