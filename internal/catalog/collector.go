package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/arcanaland/cardtsv/internal/card"
	"github.com/arcanaland/cardtsv/internal/config"
)

// Collector gathers the cards of every pack of a card data checkout
type Collector struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCollector returns a collector reading the layout described by cfg
func NewCollector(cfg *config.Config, logger *zap.Logger) *Collector {
	return &Collector{cfg: cfg, logger: logger}
}

// PackFile returns the path of the data file of pack for pattern
func (c *Collector) PackFile(pattern string, pack Pack) string {
	name := strings.ReplaceAll(pattern, config.CodePlaceholder, pack.Code)
	return filepath.Join(c.cfg.Root, c.cfg.PackDir, name)
}

// HasPackFile reports whether the data file of pack for pattern exists
func (c *Collector) HasPackFile(pattern string, pack Pack) (bool, error) {
	path := c.PackFile(pattern, pack)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", card.ErrFileAccess, err)
	}
	return !info.IsDir(), nil
}

// LoadPackCards loads the cards of pack from the file named by pattern,
// tagging each with its pack name and set name. A missing file is not an
// error: ok is false and no cards are returned.
func (c *Collector) LoadPackCards(pattern string, pack Pack, sets SetIndex) (cards []card.Record, ok bool, err error) {
	exists, err := c.HasPackFile(pattern, pack)
	if err != nil || !exists {
		return nil, false, err
	}

	path := c.PackFile(pattern, pack)
	if err := LoadJSON(path, &cards); err != nil {
		return nil, false, err
	}

	for _, rec := range cards {
		rec[card.PackNameField] = card.StringValue(pack.Name)

		if _, present := rec[card.SetCodeField]; !present {
			continue
		}
		setCode, isScalar := rec.Scalar(card.SetCodeField)
		if !isScalar {
			return nil, false, fmt.Errorf("%w: %s: set_code is not a scalar", card.ErrSchema, path)
		}
		setName, err := sets.Name(setCode)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", path, err)
		}
		rec[card.SetNameField] = card.StringValue(setName)
	}

	c.logger.Debug("Loaded pack file",
		zap.String("pack", pack.Code),
		zap.String("path", path),
		zap.Int("cards", len(cards)))

	return cards, true, nil
}

// Collect returns the cards of all packs in catalog order, main file
// before encounter file
func (c *Collector) Collect() ([]card.Record, error) {
	sets, err := LoadSetIndex(c.cfg.Path(c.cfg.SetsFile))
	if err != nil {
		return nil, err
	}

	packs, err := LoadPacks(c.cfg.Path(c.cfg.PacksFile))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Loaded catalogs", zap.Int("sets", len(sets)), zap.Int("packs", len(packs)))

	var all []card.Record
	for _, pack := range packs {
		for _, pattern := range []string{c.cfg.MainPattern, c.cfg.EncounterPattern} {
			cards, ok, err := c.LoadPackCards(pattern, pack, sets)
			if err != nil {
				return nil, err
			}
			if !ok {
				c.logger.Debug("No pack file", zap.String("pack", pack.Code), zap.String("pattern", pattern))
				continue
			}
			all = append(all, cards...)
		}
	}

	return all, nil
}
