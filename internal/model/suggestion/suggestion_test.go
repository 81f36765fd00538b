package suggestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	items := Default()
	require.Len(t, items, 8)
	assert.Equal(t, "❓ What are your key features?", items[0])
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.yaml")
	require.NoError(t, os.WriteFile(path, []byte("questions:\n  - \"How much?\"\n  - \"  \"\n  - Why?\n"), 0o644))

	items, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"How much?", "Why?"}, items)
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse([]byte("questions: []"))
	assert.Error(t, err)

	_, err = Parse([]byte("questions: [unterminated"))
	assert.Error(t, err)
}

func TestMemoryStoreListCopies(t *testing.T) {
	store := NewMemoryStore([]string{"a"})
	list := store.List()
	list[0] = "mutated"
	assert.Equal(t, []string{"a"}, store.List())
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.toml")
	require.NoError(t, os.WriteFile(path, []byte("questions = [\"Do you integrate with Xero?\", \"\"]\n"), 0o644))

	items, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Do you integrate with Xero?"}, items)
}
