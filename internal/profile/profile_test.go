package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.json")
	return NewStore(path), path
}

func TestUpsertAndGet(t *testing.T) {
	s, _ := tempStore(t)

	list, err := s.Upsert(Profile{Name: "tracker", Chip: "nRF5340_xxAA", RTTAddress: "0x20031010"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	p, ok := s.Get("tracker")
	require.True(t, ok)
	assert.Equal(t, "nRF5340_xxAA", p.Chip)
	assert.Equal(t, "0x20031010", p.RTTAddress)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestUpsertReplacesByName(t *testing.T) {
	s, _ := tempStore(t)

	_, err := s.Upsert(Profile{Name: "tracker", Chip: "nRF52840_xxAA"})
	require.NoError(t, err)
	list, err := s.Upsert(Profile{Name: "tracker", Chip: "nRF5340_xxAA", Core: 1})
	require.NoError(t, err)

	require.Len(t, list, 1)
	assert.Equal(t, "nRF5340_xxAA", list[0].Chip)
	assert.Equal(t, 1, list[0].Core)
}

func TestDelete(t *testing.T) {
	s, _ := tempStore(t)
	_, err := s.Upsert(Profile{Name: "a"})
	require.NoError(t, err)
	_, err = s.Upsert(Profile{Name: "b"})
	require.NoError(t, err)

	list, err := s.Delete("a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].Name)

	// Deleting a missing profile is a no-op.
	list, err = s.Delete("ghost")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPersistsAcrossLoads(t *testing.T) {
	s, path := tempStore(t)
	_, err := s.Upsert(Profile{Name: "tracker", ELFPath: "/fw/app.elf"})
	require.NoError(t, err)

	reloaded := NewStore(path)
	p, ok := reloaded.Get("tracker")
	require.True(t, ok)
	assert.Equal(t, "/fw/app.elf", p.ELFPath)
}

func TestMissingFileStartsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.json"))
	assert.Empty(t, s.List())
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o644))

	s := NewStore(path)
	assert.Empty(t, s.List())
}

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "profiles.json")
	s := NewStore(path)

	_, err := s.Upsert(Profile{Name: "x"})
	require.NoError(t, err)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("profile file not written: %v", err)
	}
}
