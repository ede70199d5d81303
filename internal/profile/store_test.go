package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spd/internal/models"
	"spd/internal/structures"
	"spd/internal/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conf := &structures.Config{
		Profiles: structures.ProfilesConfig{RootDir: t.TempDir()},
	}
	return NewStore(conf, &testutil.MockLogger{})
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Alice", "Alice"},
		{"DJ Bob", "DJ_Bob"},
		{"a/b\\c:d", "a_b_c_d"},
		{"*?\"<>|", ""},
		{"trailing. ", "trailing"},
		{"name.*", "name"},
		{"under_. ", "under"},
		{"  spaced  ", "spaced"},
		{"tab\there", "tab_here"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeName(tc.in), "input %q", tc.in)
	}
}

func TestStore_ResolveDirDeterministic(t *testing.T) {
	s := newTestStore(t)

	a, err := s.ResolveDir("DJ Bob")
	require.NoError(t, err)
	b, err := s.ResolveDir("DJ Bob")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, filepath.Join(s.RootDir(), "DJ_Bob"), a)
}

func TestStore_ResolveDirInvalidName(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ResolveDir("***")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidName))
}

func TestStore_EnsureDirCreatesLayout(t *testing.T) {
	s := newTestStore(t)

	dir, err := s.EnsureDir("Alice")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, BackupsDirName))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent
	_, err = s.EnsureDir("Alice")
	assert.NoError(t, err)
}

func TestStore_ExistsRequiresPreferences(t *testing.T) {
	s := newTestStore(t)

	dir, err := s.EnsureDir("Alice")
	require.NoError(t, err)

	ok, err := s.Exists("Alice")
	require.NoError(t, err)
	assert.False(t, ok, "directory without preferences is not a profile")

	prefs := &models.Preferences{Profile: models.Profile{Name: "Alice", CreatedAt: time.Now().UTC()}}
	require.NoError(t, s.SavePreferences(dir, prefs))

	ok, err = s.Exists("Alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_PreferencesRoundTrip(t *testing.T) {
	s := newTestStore(t)
	dir, err := s.EnsureDir("Alice")
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	in := &models.Preferences{
		Profile: models.Profile{Name: "Alice", Description: "main", CreatedAt: now, IsDefault: true},
		Backup:  models.BackupSettings{AutoBackupEnabled: true, BackupIntervalMs: 300000, MaxBackupCount: 10},
	}
	require.NoError(t, s.SavePreferences(dir, in))

	out, err := s.LoadPreferences(dir)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestStore_SavePreferencesLeavesNoTmpFile(t *testing.T) {
	s := newTestStore(t)
	dir, err := s.EnsureDir("Alice")
	require.NoError(t, err)

	prefs := &models.Preferences{Profile: models.Profile{Name: "Alice", CreatedAt: time.Now().UTC()}}
	require.NoError(t, s.SavePreferences(dir, prefs))

	_, err = os.Stat(filepath.Join(dir, PreferencesFileName+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_ListEmptyRoot(t *testing.T) {
	conf := &structures.Config{
		Profiles: structures.ProfilesConfig{RootDir: filepath.Join(t.TempDir(), "missing")},
	}
	s := NewStore(conf, &testutil.MockLogger{})

	profiles, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestStore_ListSkipsForeignDirs(t *testing.T) {
	s := newTestStore(t)

	dir, err := s.EnsureDir("Alice")
	require.NoError(t, err)
	prefs := &models.Preferences{Profile: models.Profile{Name: "Alice", CreatedAt: time.Now().UTC()}}
	require.NoError(t, s.SavePreferences(dir, prefs))

	// A stray directory without preferences and a stray file must be skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(s.RootDir(), "lost+found"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(s.RootDir(), "notes.txt"), []byte("x"), 0644))

	profiles, err := s.List()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Alice", profiles[0].Name)
}

func TestStore_ListOrdersByLastUsed(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC()
	mk := func(name string, lastUsed *time.Time, created time.Time) {
		dir, err := s.EnsureDir(name)
		require.NoError(t, err)
		prefs := &models.Preferences{Profile: models.Profile{Name: name, CreatedAt: created, LastUsedAt: lastUsed}}
		require.NoError(t, s.SavePreferences(dir, prefs))
	}

	old := base.Add(-2 * time.Hour)
	recent := base.Add(-5 * time.Minute)
	mk("Old", &old, base.Add(-72*time.Hour))
	mk("Recent", &recent, base.Add(-48*time.Hour))
	mk("Never", nil, base.Add(-24*time.Hour))

	profiles, err := s.List()
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "Recent", profiles[0].Name)
	assert.Equal(t, "Old", profiles[1].Name)
	assert.Equal(t, "Never", profiles[2].Name, "never-used profiles sort last")
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	dir, err := s.EnsureDir("Alice")
	require.NoError(t, err)
	prefs := &models.Preferences{Profile: models.Profile{Name: "Alice", CreatedAt: time.Now().UTC()}}
	require.NoError(t, s.SavePreferences(dir, prefs))

	require.NoError(t, s.Delete("Alice"))
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_DeleteMissing(t *testing.T) {
	s := newTestStore(t)

	err := s.Delete("Ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
