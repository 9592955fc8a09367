package catalog

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/arcanaland/cardtsv/internal/card"
)

// Pack is one entry of the pack catalog
type Pack struct {
	Code string
	Name string
}

// SetIndex maps a set code to its full catalog entry
type SetIndex map[string]card.Record

// LoadJSON reads the JSON document at path into v
func LoadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", card.ErrFileAccess, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", card.ErrParse, path, err)
	}

	return nil
}

// LoadSetIndex builds the set index from a catalog of {code, name} objects.
// A repeated code silently replaces the earlier entry.
func LoadSetIndex(path string) (SetIndex, error) {
	var entries []card.Record
	if err := LoadJSON(path, &entries); err != nil {
		return nil, err
	}

	sets := make(SetIndex, len(entries))
	for i, entry := range entries {
		code, ok := entry.Scalar(card.CodeField)
		if !ok {
			return nil, fmt.Errorf("%w: %s: set #%d has no code", card.ErrSchema, path, i)
		}
		sets[code] = entry
	}

	return sets, nil
}

// Name returns the display name of set code
func (s SetIndex) Name(code string) (string, error) {
	entry, ok := s[code]
	if !ok {
		return "", fmt.Errorf("%w: unknown set code %q", card.ErrLookup, code)
	}

	name, ok := entry.Scalar(card.NameField)
	if !ok {
		return "", fmt.Errorf("%w: set %q has no name", card.ErrSchema, code)
	}

	return name, nil
}

// LoadPacks reads the pack catalog in file order
func LoadPacks(path string) ([]Pack, error) {
	var entries []card.Record
	if err := LoadJSON(path, &entries); err != nil {
		return nil, err
	}

	packs := make([]Pack, 0, len(entries))
	for i, entry := range entries {
		code, ok := entry.Scalar(card.CodeField)
		if !ok {
			return nil, fmt.Errorf("%w: %s: pack #%d has no code", card.ErrSchema, path, i)
		}
		name, ok := entry.Scalar(card.NameField)
		if !ok {
			return nil, fmt.Errorf("%w: %s: pack %q has no name", card.ErrSchema, path, code)
		}
		packs = append(packs, Pack{Code: code, Name: name})
	}

	return packs, nil
}
