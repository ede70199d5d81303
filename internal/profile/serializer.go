package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"spd/internal/catalog"
	"spd/internal/models"
	"spd/internal/providers"
)

// UIApplier receives the validated state during a restore. Implemented by
// the UI layer; the serializer never touches UI itself.
type UIApplier interface {
	ApplyPage(section models.Section, page models.Page)
	ApplyWindow(bounds models.WindowBounds)
}

// StateSerializer converts live session snapshots to the versioned
// state.json document and back.
type StateSerializer struct {
	logger providers.Logger
}

func NewStateSerializer(logger providers.Logger) *StateSerializer {
	return &StateSerializer{logger: logger}
}

// Capture builds a state document from a UI snapshot. Pages with no
// assigned songs are dropped so partial snapshots serialize cleanly.
// prev carries the creation timestamp forward; nil means a fresh document.
func (s *StateSerializer) Capture(snap models.UISnapshot, prev *models.ProfileState) models.ProfileState {
	now := time.Now().UTC()
	created := now
	if prev != nil && !prev.Created.IsZero() {
		created = prev.Created
	}

	return models.ProfileState{
		Version:     models.StateVersion,
		Created:     created,
		Hotkeys:     prunePages(snap.Hotkeys),
		HoldingTank: prunePages(snap.HoldingTank),
		Soundboard:  prunePages(snap.Soundboard),
		Window:      snap.Window,
		Metadata: models.StateMetadata{
			Description:  snap.Description,
			LastModified: now,
		},
	}
}

// Apply pushes a state document into the UI, validating every song
// reference against the catalog. A dangling reference is logged and
// skipped; it never aborts the restore.
func (s *StateSerializer) Apply(state models.ProfileState, cat catalog.SongCatalog, ui UIApplier) {
	s.applySection(models.SectionHotkeys, state.Hotkeys, cat, ui)
	s.applySection(models.SectionHoldingTank, state.HoldingTank, cat, ui)
	s.applySection(models.SectionSoundboard, state.Soundboard, cat, ui)

	if state.Window != nil {
		ui.ApplyWindow(*state.Window)
	}
}

func (s *StateSerializer) applySection(section models.Section, pages []models.Page, cat catalog.SongCatalog, ui UIApplier) {
	for _, page := range pages {
		clean := models.Page{
			PageNumber: page.PageNumber,
			TabName:    page.TabName,
			Buttons:    make(map[string]string, len(page.Buttons)),
		}
		for pos, songID := range page.Buttons {
			ok, err := cat.HasSong(songID)
			if err != nil {
				s.logger.Errorf(providers.TypeApp, "Catalog lookup for song %s failed: %s", songID, err)
				continue
			}
			if !ok {
				s.logger.Warnf(providers.TypeApp, "Song %s missing from catalog, skipping %s %s", songID, section, pos)
				continue
			}
			clean.Buttons[pos] = songID
		}
		ui.ApplyPage(section, clean)
	}
}

// Serialize encodes a state document. Symmetric with Deserialize for any
// current-form document.
func (s *StateSerializer) Serialize(state models.ProfileState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("%w: encode state: %s", models.ErrValidation, err)
	}
	return data, nil
}

// Deserialize decodes a state document, accepting both the current object
// form and the legacy bare-array-of-pages form, which is normalized into
// hotkey pages.
func (s *StateSerializer) Deserialize(data []byte) (models.ProfileState, error) {
	var state models.ProfileState
	if err := json.Unmarshal(data, &state); err == nil && state.Version != "" {
		return state, nil
	}

	var pages []models.Page
	if err := json.Unmarshal(data, &pages); err != nil {
		return models.ProfileState{}, fmt.Errorf("%w: unrecognized state document", models.ErrValidation)
	}

	s.logger.Warnf(providers.TypeApp, "Legacy state document found, migrating array form")
	now := time.Now().UTC()
	return models.ProfileState{
		Version: models.StateVersion,
		Created: now,
		Hotkeys: pages,
		Metadata: models.StateMetadata{
			LastModified: now,
		},
	}, nil
}

// SaveState persists a state document into a profile directory, replacing
// the previous one in place. History lives only in backups.
func (s *StateSerializer) SaveState(dir string, state models.ProfileState) error {
	data, err := s.Serialize(state)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(dir, StateFileName), data); err != nil {
		return fmt.Errorf("%w: write state: %s", models.ErrIO, err)
	}
	return nil
}

// LoadState reads a profile's state document. A missing file is not an
// error: the profile simply has no saved session yet.
func (s *StateSerializer) LoadState(dir string) (*models.ProfileState, error) {
	data, err := os.ReadFile(filepath.Join(dir, StateFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read state: %s", models.ErrIO, err)
	}
	state, err := s.Deserialize(data)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func prunePages(pages []models.Page) []models.Page {
	kept := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		if len(p.Buttons) == 0 {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
