// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ParamKind identifies the input widget a param needs.
type ParamKind string

const (
	// ParamText is free text typed by the user.
	ParamText ParamKind = "TextParam"

	// ParamID references a row of the current card by ID.
	ParamID ParamKind = "IdParam"
)

// ActionParam is one named, user-editable input slot of an action.
type ActionParam struct {
	// Name is stable across every instance of an action kind.
	Name string `json:"name" yaml:"name"`

	Kind ParamKind `json:"kind" yaml:"kind"`

	// Label is the prompt shown to the user.
	Label string `json:"label" yaml:"label"`

	// Value is the pre-filled or user-supplied value. Empty means unset.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// WithValue returns a copy of p carrying value.
func (p ActionParam) WithValue(value string) ActionParam {
	p.Value = value
	return p
}
