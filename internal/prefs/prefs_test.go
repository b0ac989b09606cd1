package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/marketsync/internal/domain"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)

	_, ok, err := p.TopicSet()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "marketsync")
	require.NoError(t, os.MkdirAll(prefsDir, 0o755))
	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	require.NoError(t, os.WriteFile(prefsFile, []byte("topics = [\"rust\", \"tf2\"]\nmax_rows = 40\n"), 0o644))

	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 40, p.MaxRows)
	assert.Equal(t, defaultPriceLocale, p.PriceLocale)

	topics, ok, err := p.TopicSet()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.TopicSet{domain.TopicRust, domain.TopicTF2}, topics)
}

func TestLoad_RejectsInvalidFiles(t *testing.T) {
	tmp := t.TempDir()

	cases := map[string]string{
		"malformed toml": "topics = [",
		"unknown topic":  "topics = [\"minecraft\"]\n",
		"unknown key":    "colour = \"red\"\n",
		"bad row count":  "max_rows = 0\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmp, name+".toml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			p, err := Load(path)
			assert.Error(t, err)
			assert.Equal(t, Defaults(), p)
		})
	}
}

func TestSave_RoundTripThroughStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	require.NoError(t, Save(path, Prefs{PriceLocale: "de-DE", MaxRows: 10}))

	store := NewStore(path)
	require.NoError(t, store.SaveTopics(domain.TopicSet{domain.TopicDota2}))

	p, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, p.Topics)
	assert.Equal(t, []string{"dota2"}, *p.Topics)
	assert.Equal(t, "de-DE", p.PriceLocale, "other preferences survive a topic save")
	assert.Equal(t, 10, p.MaxRows)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestStore_SaveTopicsKeepsUnreadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	original := []byte("price_locale = \"de-DE\"\nmax_rows = [")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	err := NewStore(path).SaveTopics(domain.TopicSet{domain.TopicCSGO})

	require.Error(t, err)
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, original, data, "an unreadable file is not overwritten")
}

func TestStore_EmptyTopicsSurviveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	store := NewStore(path)

	require.NoError(t, store.SaveTopics(domain.NewTopicSet()))

	p, err := store.Load()
	require.NoError(t, err)
	topics, ok, err := p.TopicSet()
	require.NoError(t, err)
	assert.True(t, ok, "an empty choice is still a stored choice")
	assert.Empty(t, topics)
}

func TestPrefs_TopicSetWithoutStoredChoice(t *testing.T) {
	topics, ok, err := Defaults().TopicSet()

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, topics)
}
