package backup

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"spd/internal/models"
	"spd/internal/profile"
	"spd/internal/providers"
)

const ArchiveExt = ".spba.zst"

// archiveManifest is the on-disk format of an exported backup: one
// compressed JSON document holding every file of the snapshot.
type archiveManifest struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Files     map[string][]byte `json:"files"`
}

// Archiver turns a snapshot into a single portable file and back. Each
// archive is self-contained; importing or deleting one never touches
// another backup.
type Archiver struct {
	manager    *Manager
	compressor Compressor
	logger     providers.Logger
}

func NewArchiver(manager *Manager, compressor Compressor, logger providers.Logger) *Archiver {
	return &Archiver{
		manager:    manager,
		compressor: compressor,
		logger:     logger,
	}
}

func (a *Archiver) Close() {
	a.compressor.Close()
}

// Export writes the named snapshot to destPath as one compressed archive.
func (a *Archiver) Export(profileDir, backupID, destPath string) error {
	snapshot := filepath.Join(profileDir, profile.BackupsDirName, backupID)
	if _, err := os.Stat(snapshot); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: backup %q", models.ErrNotFound, backupID)
		}
		return fmt.Errorf("%w: %s", models.ErrIO, err)
	}

	ts, ok := parseBackupID(backupID)
	if !ok {
		ts = time.Now().UTC()
	}
	manifest := archiveManifest{
		ID:        backupID,
		Timestamp: ts,
		Files:     make(map[string][]byte),
	}

	err := filepath.WalkDir(snapshot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(snapshot, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		manifest.Files[filepath.ToSlash(rel)] = data
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: read snapshot: %s", models.ErrIO, err)
	}

	jsonData, err := json.Marshal(&manifest)
	if err != nil {
		return fmt.Errorf("%w: encode archive: %s", models.ErrValidation, err)
	}
	compressed, err := a.compressor.Compress(jsonData)
	if err != nil {
		return fmt.Errorf("%w: compress archive: %s", models.ErrBackup, err)
	}

	tmpFile := destPath + ".tmp"
	if err := os.WriteFile(tmpFile, compressed, fileMode); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("%w: write archive: %s", models.ErrIO, err)
	}
	if err := os.Rename(tmpFile, destPath); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("%w: write archive: %s", models.ErrIO, err)
	}

	a.logger.Infof(providers.TypeApp, "Exported backup %s to %s (%d files)", backupID, destPath, len(manifest.Files))
	return nil
}

// Import registers an exported archive as a new snapshot of the profile.
func (a *Archiver) Import(profileDir, srcPath string) (models.Backup, error) {
	lock := a.manager.lockFor(profileDir)
	if !lock.TryLock() {
		return models.Backup{}, fmt.Errorf("%w: backup or restore already running for this profile", models.ErrBusy)
	}
	defer lock.Unlock()

	compressed, err := os.ReadFile(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Backup{}, fmt.Errorf("%w: archive %q", models.ErrNotFound, srcPath)
		}
		return models.Backup{}, fmt.Errorf("%w: read archive: %s", models.ErrIO, err)
	}

	jsonData, err := a.compressor.Decompress(compressed)
	if err != nil {
		return models.Backup{}, fmt.Errorf("%w: decompress archive: %s", models.ErrValidation, err)
	}
	var manifest archiveManifest
	if err := json.Unmarshal(jsonData, &manifest); err != nil || manifest.ID == "" {
		return models.Backup{}, fmt.Errorf("%w: malformed archive manifest", models.ErrValidation)
	}
	// Manifest paths come from an untrusted file; every file must land
	// inside the new snapshot directory.
	for rel := range manifest.Files {
		if !filepath.IsLocal(filepath.FromSlash(rel)) {
			return models.Backup{}, fmt.Errorf("%w: unsafe path %q in archive manifest", models.ErrValidation, rel)
		}
	}

	backupsDir := filepath.Join(profileDir, profile.BackupsDirName)
	if err := os.MkdirAll(backupsDir, dirMode); err != nil {
		return models.Backup{}, fmt.Errorf("%w: %s", models.ErrIO, err)
	}

	id := manifest.ID
	for n := 2; ; n++ {
		if _, err := os.Stat(filepath.Join(backupsDir, id)); os.IsNotExist(err) {
			break
		}
		id = fmt.Sprintf("%s-%d", manifest.ID, n)
	}

	dest := filepath.Join(backupsDir, id)
	var size int64
	for rel, data := range manifest.Files {
		target := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(target), dirMode); err != nil {
			os.RemoveAll(dest)
			return models.Backup{}, fmt.Errorf("%w: %s", models.ErrIO, err)
		}
		if err := os.WriteFile(target, data, fileMode); err != nil {
			os.RemoveAll(dest)
			return models.Backup{}, fmt.Errorf("%w: %s", models.ErrIO, err)
		}
		size += int64(len(data))
	}

	a.logger.Infof(providers.TypeApp, "Imported archive %s as backup %s", srcPath, id)
	return models.Backup{ID: id, Timestamp: manifest.Timestamp, Size: size, FileCount: len(manifest.Files)}, nil
}
