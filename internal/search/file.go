// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// FileSearcher answers every query with a result document saved on disk.
// The file may be JSON or YAML. It is read on each call so edits show up
// without restarting.
type FileSearcher struct {
	Path string
}

// Search ignores query and numHits and returns the saved document.
func (f FileSearcher) Search(ctx context.Context, query string, numHits int) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading search fixture: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing search fixture %s: %w", f.Path, err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}
