package report

import (
	"fmt"
	"maps"
	"slices"

	"github.com/iancoleman/orderedmap"
	"go.uber.org/zap"

	"github.com/arcanaland/cardtsv/internal/card"
)

// Builder accumulates flattened cards keyed by code together with every
// field name seen so far
type Builder struct {
	fields map[string]struct{}
	cards  *orderedmap.OrderedMap // code -> card.Flat, first-seen order
	logger *zap.Logger
}

// NewBuilder returns an empty builder
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{
		fields: make(map[string]struct{}),
		cards:  orderedmap.New(),
		logger: logger,
	}
}

// Build flattens every record and resolves duplicates
func Build(records []card.Record, logger *zap.Logger) (*Builder, error) {
	b := NewBuilder(logger)
	for _, rec := range records {
		if err := b.Add(rec); err != nil {
			return nil, err
		}
	}
	if err := b.Resolve(); err != nil {
		return nil, err
	}
	return b, nil
}

// Add flattens rec into the builder. An embedded linked card is added as
// a card of its own. A card whose code was already added replaces the
// earlier one but keeps its position.
func (b *Builder) Add(rec card.Record) error {
	flat, err := card.Flatten(rec)
	if err != nil {
		return err
	}

	code, ok := flat[card.CodeField]
	if !ok {
		return fmt.Errorf("%w: card without code", card.ErrSchema)
	}

	for name := range flat {
		b.fields[name] = struct{}{}
	}

	if _, exists := b.cards.Get(code); exists {
		b.logger.Debug("Card code seen twice, keeping the later card", zap.String("code", code))
	}
	b.cards.Set(code, flat)

	linked, ok := rec[card.LinkedCardField]
	if !ok {
		return nil
	}
	if linked.Kind != card.Object {
		return fmt.Errorf("%w: card %s: linked_card is a %s, not an object", card.ErrSchema, code, linked.Kind)
	}
	return b.Add(linked.Fields)
}

// Resolve replaces every card carrying duplicate_of by a copy of the card
// it points at, overlaid with the duplicate's own fields. The target must
// exist and must not be a duplicate itself.
func (b *Builder) Resolve() error {
	for _, code := range b.cards.Keys() {
		dup := b.card(code)

		target, ok := dup[card.DuplicateOfField]
		if !ok {
			continue
		}

		original, ok := b.Card(target)
		if !ok {
			return fmt.Errorf("%w: card %s is a duplicate of unknown card %s", card.ErrLookup, code, target)
		}
		if next, chained := original[card.DuplicateOfField]; chained {
			return fmt.Errorf("%w: card %s is a duplicate of %s, which is a duplicate of %s", card.ErrSchema, code, target, next)
		}

		resolved := maps.Clone(original)
		maps.Copy(resolved, dup)
		b.cards.Set(code, resolved)
	}
	return nil
}

// Card returns the card stored under code
func (b *Builder) Card(code string) (card.Flat, bool) {
	v, ok := b.cards.Get(code)
	if !ok {
		return nil, false
	}
	return v.(card.Flat), true
}

func (b *Builder) card(code string) card.Flat {
	c, _ := b.Card(code)
	return c
}

// Fields returns every field name seen, sorted
func (b *Builder) Fields() []string {
	var fields []string
	for f := range b.fields {
		fields = append(fields, f)
	}
	slices.Sort(fields)
	return fields
}

// Cards returns the cards in the order their codes were first seen
func (b *Builder) Cards() []card.Flat {
	keys := b.cards.Keys()
	cards := make([]card.Flat, 0, len(keys))
	for _, code := range keys {
		cards = append(cards, b.card(code))
	}
	return cards
}

// Len returns the number of stored cards
func (b *Builder) Len() int {
	return len(b.cards.Keys())
}
