package backup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"spd/internal/models"
	"spd/internal/profile"
	"spd/internal/providers"
)

const (
	backupIDPrefix = "backup-"
	backupIDLayout = "20060102-150405.000"
	stagingDirName = ".restore-staging"
	dirMode        = 0755
	fileMode       = 0644
)

// Manager creates, lists, restores and prunes profile-directory snapshots.
// The profile directory is the unit of mutual exclusion: one create,
// restore or prune at a time per profile, concurrent across profiles.
type Manager struct {
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(logger providers.Logger, metrics providers.MetricsProviderInterface) *Manager {
	return &Manager{
		logger:  logger,
		metrics: metrics,
		locks:   make(map[string]*sync.Mutex),
	}
}

func (m *Manager) lockFor(profileDir string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[profileDir]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[profileDir] = lock
	}
	return lock
}

// CreateBackup snapshots the whole profile directory (minus the backups
// subdirectory) into a new timestamp-named snapshot. A concurrent backup
// or restore on the same profile yields ErrBusy.
func (m *Manager) CreateBackup(profileDir string) (models.Backup, error) {
	lock := m.lockFor(profileDir)
	if !lock.TryLock() {
		return models.Backup{}, fmt.Errorf("%w: backup or restore already running for this profile", models.ErrBusy)
	}
	defer lock.Unlock()

	start := time.Now()
	backup, err := m.createLocked(profileDir)
	if err != nil {
		m.metrics.IncBackupsTotal("error")
		return models.Backup{}, err
	}
	m.metrics.IncBackupsTotal("ok")
	m.metrics.ObserveBackupDuration(time.Since(start))
	m.logger.Infof(providers.TypeApp, "Created backup %s (%d files, %d bytes)", backup.ID, backup.FileCount, backup.Size)
	return backup, nil
}

// createLocked does the actual snapshot. Callers hold the profile lock.
func (m *Manager) createLocked(profileDir string) (models.Backup, error) {
	if _, err := os.Stat(profileDir); err != nil {
		return models.Backup{}, fmt.Errorf("%w: source unreadable: %s", models.ErrBackup, err)
	}

	backupsDir := filepath.Join(profileDir, profile.BackupsDirName)
	if err := os.MkdirAll(backupsDir, dirMode); err != nil {
		return models.Backup{}, fmt.Errorf("%w: %s", models.ErrBackup, err)
	}

	now := time.Now().UTC()
	id := newBackupID(backupsDir, now)
	dest := filepath.Join(backupsDir, id)

	size, files, err := copyTree(profileDir, dest, map[string]struct{}{
		profile.BackupsDirName: {},
		stagingDirName:         {},
	})
	if err != nil {
		// No half-written snapshot may remain registered.
		os.RemoveAll(dest)
		return models.Backup{}, fmt.Errorf("%w: %s", models.ErrBackup, err)
	}

	return models.Backup{ID: id, Timestamp: now, Size: size, FileCount: files}, nil
}

// ListBackups enumerates a profile's snapshots, newest first.
func (m *Manager) ListBackups(profileDir string) ([]models.Backup, error) {
	backupsDir := filepath.Join(profileDir, profile.BackupsDirName)
	entries, err := os.ReadDir(backupsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Backup{}, nil
		}
		return nil, fmt.Errorf("%w: read backups directory: %s", models.ErrIO, err)
	}

	backups := make([]models.Backup, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), backupIDPrefix) {
			continue
		}
		dir := filepath.Join(backupsDir, entry.Name())
		size, files, err := measureTree(dir)
		if err != nil {
			m.logger.Warnf(providers.TypeApp, "Skipping unreadable backup %s: %s", entry.Name(), err)
			continue
		}
		ts, ok := parseBackupID(entry.Name())
		if !ok {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			ts = info.ModTime().UTC()
		}
		backups = append(backups, models.Backup{ID: entry.Name(), Timestamp: ts, Size: size, FileCount: files})
	}

	sort.Slice(backups, func(i, j int) bool {
		if backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].ID > backups[j].ID
		}
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// RestoreBackup replaces the live profile directory contents with a
// snapshot. A safety backup of the current state is taken first, then the
// snapshot is staged and swapped in, so a failed restore leaves the live
// files untouched.
func (m *Manager) RestoreBackup(profileDir, backupID string) error {
	lock := m.lockFor(profileDir)
	if !lock.TryLock() {
		return fmt.Errorf("%w: backup or restore already running for this profile", models.ErrBusy)
	}
	defer lock.Unlock()

	err := m.restoreLocked(profileDir, backupID)
	if err != nil {
		m.metrics.IncRestoresTotal("error")
		return err
	}
	m.metrics.IncRestoresTotal("ok")
	m.logger.Infof(providers.TypeApp, "Restored backup %s", backupID)
	return nil
}

func (m *Manager) restoreLocked(profileDir, backupID string) error {
	snapshot := filepath.Join(profileDir, profile.BackupsDirName, backupID)
	if _, err := os.Stat(snapshot); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: backup %q", models.ErrNotFound, backupID)
		}
		return fmt.Errorf("%w: %s", models.ErrIO, err)
	}

	safety, err := m.createLocked(profileDir)
	if err != nil {
		return fmt.Errorf("safety backup before restore: %w", err)
	}
	m.logger.Infof(providers.TypeApp, "Safety backup %s taken before restoring %s", safety.ID, backupID)

	staging := filepath.Join(profileDir, stagingDirName)
	os.RemoveAll(staging)
	if _, _, err := copyTree(snapshot, staging, nil); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("%w: stage snapshot: %s", models.ErrBackup, err)
	}

	// Point of no return: swap staged contents over the live files.
	entries, err := os.ReadDir(profileDir)
	if err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("%w: %s", models.ErrIO, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == profile.BackupsDirName || name == stagingDirName {
			continue
		}
		if err := os.RemoveAll(filepath.Join(profileDir, name)); err != nil {
			return fmt.Errorf("%w: clear live files: %s", models.ErrIO, err)
		}
	}

	staged, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrIO, err)
	}
	for _, entry := range staged {
		src := filepath.Join(staging, entry.Name())
		dst := filepath.Join(profileDir, entry.Name())
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("%w: swap staged files: %s", models.ErrIO, err)
		}
	}

	return os.RemoveAll(staging)
}

// PruneBackups applies the retention policy: drop snapshots beyond
// MaxBackupCount (oldest first) and snapshots older than MaxBackupAge.
// The most recent snapshot always survives. Returns how many were removed.
func (m *Manager) PruneBackups(profileDir string, settings models.BackupSettings) (int, error) {
	lock := m.lockFor(profileDir)
	if !lock.TryLock() {
		return 0, fmt.Errorf("%w: backup or restore already running for this profile", models.ErrBusy)
	}
	defer lock.Unlock()

	backups, err := m.ListBackups(profileDir)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	deleted := 0
	for i, b := range backups {
		if i == 0 {
			// Always keep at least the newest one.
			continue
		}
		tooMany := settings.MaxBackupCount > 0 && i >= settings.MaxBackupCount
		tooOld := settings.MaxBackupAgeMs > 0 && now.Sub(b.Timestamp) > settings.MaxAge()
		if !tooMany && !tooOld {
			continue
		}
		if err := os.RemoveAll(filepath.Join(profileDir, profile.BackupsDirName, b.ID)); err != nil {
			m.logger.Errorf(providers.TypeApp, "Failed to prune backup %s: %s", b.ID, err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		m.metrics.AddBackupsPruned(deleted)
		m.logger.Infof(providers.TypeApp, "Pruned %d backups", deleted)
	}
	return deleted, nil
}

// DeleteBackup removes a single snapshot.
func (m *Manager) DeleteBackup(profileDir, backupID string) error {
	lock := m.lockFor(profileDir)
	if !lock.TryLock() {
		return fmt.Errorf("%w: backup or restore already running for this profile", models.ErrBusy)
	}
	defer lock.Unlock()

	dir := filepath.Join(profileDir, profile.BackupsDirName, backupID)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: backup %q", models.ErrNotFound, backupID)
		}
		return fmt.Errorf("%w: %s", models.ErrIO, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%w: %s", models.ErrIO, err)
	}
	return nil
}

// newBackupID derives a unique snapshot name from a timestamp. Collisions
// within the same millisecond get a numeric suffix.
func newBackupID(backupsDir string, ts time.Time) string {
	base := backupIDPrefix + ts.Format(backupIDLayout)
	id := base
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(backupsDir, id)); os.IsNotExist(err) {
			return id
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

func parseBackupID(id string) (time.Time, bool) {
	trimmed := strings.TrimPrefix(id, backupIDPrefix)
	if len(trimmed) < len(backupIDLayout) {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(backupIDLayout, trimmed[:len(backupIDLayout)], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// copyTree copies src into dst, skipping the named top-level entries and
// any in-flight .tmp files. Returns total bytes and file count copied.
func copyTree(src, dst string, skipRoot map[string]struct{}) (int64, int, error) {
	var size int64
	var files int

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return os.MkdirAll(dst, dirMode)
		}
		top := strings.SplitN(rel, string(os.PathSeparator), 2)[0]
		if _, skip := skipRoot[top]; skip {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, dirMode)
		}
		if strings.HasSuffix(d.Name(), ".tmp") {
			return nil
		}
		n, err := copyFile(path, target)
		if err != nil {
			return err
		}
		size += n
		files++
		return nil
	})

	return size, files, err
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return 0, err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return 0, err
	}
	return n, nil
}

func measureTree(dir string) (int64, int, error) {
	var size int64
	var files int
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		files++
		return nil
	})
	return size, files, err
}
