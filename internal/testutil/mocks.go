package testutil

import (
	"sync"
	"time"

	"spd/internal/models"
	"spd/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// CountByLevel returns how many entries were recorded at the given level.
func (m *MockLogger) CountByLevel(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

// MockCompressor implements backup.Compressor with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu               sync.Mutex
	Requests         int
	CacheHits        int
	CacheMisses      int
	Backups          map[string]int
	BackupDurations  int
	BackupsPruned    int
	Restores         map[string]int
	StateSaves       int
	ProfilesTotal    int
	ProfilesTotalSet bool
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Backups:  make(map[string]int),
		Restores: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncBackupsTotal(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Backups[result]++
}

func (m *MockMetrics) ObserveBackupDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackupDurations++
}

func (m *MockMetrics) AddBackupsPruned(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BackupsPruned += count
}

func (m *MockMetrics) IncRestoresTotal(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Restores[result]++
}

func (m *MockMetrics) IncStateSaves() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StateSaves++
}

func (m *MockMetrics) SetProfilesTotal(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfilesTotal = count
	m.ProfilesTotalSet = true
}

// MockConfirmer implements profile.Confirmer with a canned answer.
type MockConfirmer struct {
	Answer   bool
	Err      error
	Messages []string
}

func (m *MockConfirmer) Confirm(message string) (bool, error) {
	m.Messages = append(m.Messages, message)
	return m.Answer, m.Err
}

// RecordingApplier implements profile.UIApplier and records the pages and
// window bounds it was handed.
type RecordingApplier struct {
	Pages  map[models.Section][]models.Page
	Window *models.WindowBounds
}

func NewRecordingApplier() *RecordingApplier {
	return &RecordingApplier{Pages: make(map[models.Section][]models.Page)}
}

func (r *RecordingApplier) ApplyPage(section models.Section, page models.Page) {
	r.Pages[section] = append(r.Pages[section], page)
}

func (r *RecordingApplier) ApplyWindow(bounds models.WindowBounds) {
	r.Window = &bounds
}
