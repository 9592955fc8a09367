package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPrecedence(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), FileName)
	content := "pack_dir = \"packs\"\nsets_file = \"catalog/sets.json\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("CARDTSV_SETS_FILE", "env-sets.json")

	v := New()
	v.Set("root", "/data")

	cfg, err := Load(v, path)
	require.NoError(t, err)

	assert.Equal(t, "/data", cfg.Root, "explicit value wins")
	assert.Equal(t, "env-sets.json", cfg.SetsFile, "env beats file")
	assert.Equal(t, "packs", cfg.PackDir, "file beats default")
	assert.Equal(t, "packs.json", cfg.PacksFile, "default")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty pack dir", func(c *Config) { c.PackDir = "" }, true},
		{"pattern without placeholder", func(c *Config) { c.MainPattern = "cards.json" }, true},
		{"pattern with two placeholders", func(c *Config) { c.EncounterPattern = "{code}/{code}.json" }, true},
		{"custom pattern", func(c *Config) { c.EncounterPattern = "encounter/{code}.json" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	written, err := WriteDefault(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), written)

	var decoded Config
	_, err = toml.DecodeFile(path, &decoded)
	require.NoError(t, err)
	assert.Equal(t, *Default(), decoded)

	_, err = WriteDefault(path)
	assert.Error(t, err, "existing file is not overwritten")
}

func TestPath(t *testing.T) {
	c := Default()
	c.Root = "/srv/cards"
	assert.Equal(t, filepath.Join("/srv/cards", "packs.json"), c.Path(c.PacksFile))
}
