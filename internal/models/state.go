package models

import "time"

const StateVersion = "1.0.0"

// Section names one of the three grid collections in a state document.
type Section string

const (
	SectionHotkeys     Section = "hotkeys"
	SectionHoldingTank Section = "holdingTank"
	SectionSoundboard  Section = "soundboard"
)

// Page is one tab/grid of song assignments. Buttons maps a "<row>-<col>"
// position key to a catalog song id.
type Page struct {
	PageNumber int               `json:"pageNumber"`
	TabName    *string           `json:"tabName"`
	Buttons    map[string]string `json:"buttons,omitempty"`
}

// WindowBounds captures the main window geometry.
type WindowBounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type StateMetadata struct {
	Description  string    `json:"description"`
	LastModified time.Time `json:"lastModified"`
}

// ProfileState is the versioned session document persisted as state.json
// inside a profile directory. Empty sections are omitted on serialization.
type ProfileState struct {
	Version     string        `json:"version"`
	Created     time.Time     `json:"created"`
	Hotkeys     []Page        `json:"hotkeys,omitempty"`
	HoldingTank []Page        `json:"holdingTank,omitempty"`
	Soundboard  []Page        `json:"soundboard,omitempty"`
	Window      *WindowBounds `json:"window,omitempty"`
	Metadata    StateMetadata `json:"metadata"`
}

// UISnapshot is the in-memory session state handed over by the UI layer.
type UISnapshot struct {
	Hotkeys     []Page
	HoldingTank []Page
	Soundboard  []Page
	Window      *WindowBounds
	Description string
}
