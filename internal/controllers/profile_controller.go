package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"

	json "github.com/goccy/go-json"

	"spd/internal/catalog"
	"spd/internal/models"
	"spd/internal/profile"
	"spd/internal/providers"
	"spd/internal/structures"
)

const profileListCacheKey = "profiles"

type ProfileController struct {
	conf       *structures.Config
	logger     providers.Logger
	store      *profile.Store
	lifecycle  *profile.LifecycleController
	serializer *profile.StateSerializer
	cache      providers.CacheProviderInterface
	metrics    providers.MetricsProviderInterface
}

func NewProfileController(conf *structures.Config, logger providers.Logger, store *profile.Store, lifecycle *profile.LifecycleController, serializer *profile.StateSerializer, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface) *ProfileController {
	return &ProfileController{
		conf:       conf,
		logger:     logger,
		store:      store,
		lifecycle:  lifecycle,
		serializer: serializer,
		cache:      cache,
		metrics:    metrics,
	}
}

func (pc *ProfileController) ListProfiles(w http.ResponseWriter, r *http.Request) {
	if data, ok := pc.cache.Get(profileListCacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	profiles, err := pc.store.List()
	if err != nil {
		writeErr(w, err)
		return
	}
	pc.metrics.SetProfilesTotal(len(profiles))

	env := models.Ok(profiles)
	gson, err := json.Marshal(env)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	pc.cache.Set(profileListCacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (pc *ProfileController) CreateProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	prof, err := pc.lifecycle.CreateProfile(payload.Name, payload.Description)
	if err != nil {
		writeErr(w, err)
		return
	}
	pc.cache.Del(profileListCacheKey)
	writeOk(w, prof)
}

func (pc *ProfileController) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Name      string `json:"name"`
		Confirmed bool   `json:"confirmed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	deleted, err := pc.lifecycle.DeleteProfile(payload.Name, requestConfirmer{confirmed: payload.Confirmed})
	if err != nil {
		writeErr(w, err)
		return
	}
	if deleted {
		pc.cache.Del(profileListCacheKey)
	}
	writeOk(w, map[string]bool{"deleted": deleted})
}

func (pc *ProfileController) LaunchProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	token, err := pc.lifecycle.LaunchApp(payload.Name)
	if err != nil {
		writeErr(w, err)
		return
	}
	pc.cache.Del(profileListCacheKey)
	writeOk(w, map[string]string{"name": payload.Name, "sessionToken": token})
}

// SwitchProfile reopens the picker; the running profile becomes the
// fallback if the picker is later dismissed.
func (pc *ProfileController) SwitchProfile(w http.ResponseWriter, r *http.Request) {
	pc.lifecycle.RequestSwitch()
	writeOk(w, map[string]string{"fallback": pc.lifecycle.CurrentProfile()})
}

func (pc *ProfileController) DismissPicker(w http.ResponseWriter, r *http.Request) {
	if err := pc.lifecycle.OnPickerDismissed(); err != nil {
		writeErr(w, err)
		return
	}
	writeOk(w, map[string]string{"profile": pc.lifecycle.CurrentProfile()})
}

func (pc *ProfileController) SaveState(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Profile  string            `json:"profile"`
		Snapshot stateSnapshotBody `json:"snapshot"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErr(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	dir, err := pc.store.ResolveDir(payload.Profile)
	if err != nil {
		writeErr(w, err)
		return
	}
	prev, err := pc.serializer.LoadState(dir)
	if err != nil {
		pc.logger.Warnf(providers.TypeApp, "Previous state unreadable, starting fresh: %s", err)
		prev = nil
	}

	state := pc.serializer.Capture(models.UISnapshot{
		Hotkeys:     payload.Snapshot.Hotkeys,
		HoldingTank: payload.Snapshot.HoldingTank,
		Soundboard:  payload.Snapshot.Soundboard,
		Window:      payload.Snapshot.Window,
		Description: payload.Snapshot.Description,
	}, prev)

	if err := pc.serializer.SaveState(dir, state); err != nil {
		writeErr(w, err)
		return
	}
	pc.metrics.IncStateSaves()
	writeOk(w, state)
}

// GetState returns the saved session state with every song reference
// validated against the profile's catalog; dangling references are
// dropped, not fatal.
func (pc *ProfileController) GetState(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("profile")
	dir, err := pc.store.ResolveDir(name)
	if err != nil {
		writeErr(w, err)
		return
	}

	state, err := pc.serializer.LoadState(dir)
	if err != nil {
		writeErr(w, err)
		return
	}
	if state == nil {
		writeOk(w, nil)
		return
	}

	cat := pc.openCatalog(dir)
	if cat == nil {
		// No catalog to validate against; hand the state over as-is.
		writeOk(w, state)
		return
	}
	defer cat.Close()

	collector := &stateCollector{state: models.ProfileState{
		Version:  state.Version,
		Created:  state.Created,
		Metadata: state.Metadata,
	}}
	pc.serializer.Apply(*state, cat, collector)
	writeOk(w, collector.state)
}

func (pc *ProfileController) openCatalog(dir string) catalog.SongCatalog {
	path := filepath.Join(dir, pc.conf.Catalog.FileName)
	cat, err := catalog.Open(path)
	if err != nil {
		pc.logger.Warnf(providers.TypeApp, "Catalog unavailable for %s: %s", dir, err)
		return nil
	}
	return cat
}

type stateSnapshotBody struct {
	Hotkeys     []models.Page        `json:"hotkeys"`
	HoldingTank []models.Page        `json:"holdingTank"`
	Soundboard  []models.Page        `json:"soundboard"`
	Window      *models.WindowBounds `json:"window"`
	Description string               `json:"description"`
}

// stateCollector rebuilds a validated state document from Apply callbacks.
type stateCollector struct {
	state models.ProfileState
}

func (c *stateCollector) ApplyPage(section models.Section, page models.Page) {
	switch section {
	case models.SectionHotkeys:
		c.state.Hotkeys = append(c.state.Hotkeys, page)
	case models.SectionHoldingTank:
		c.state.HoldingTank = append(c.state.HoldingTank, page)
	case models.SectionSoundboard:
		c.state.Soundboard = append(c.state.Soundboard, page)
	}
}

func (c *stateCollector) ApplyWindow(bounds models.WindowBounds) {
	c.state.Window = &bounds
}
