package book

import (
	"epubr/config"
)

// Settings is effective configuration of a session.
type Settings struct {
	Storage    config.StorageMode
	Online     bool
	Contained  bool
	Width      int
	Height     int
	Spreads    bool
	Responsive bool
	Version    int
	Restore    bool
	Prefetch   bool

	// Stored is set once every book resource is available offline.
	Stored bool
	// PreviousLocation is where reading stopped last time.
	PreviousLocation string
}

// SettingsFrom returns session settings for reader configuration. Unset
// connectivity is assumed to be online, caller may detect it instead.
func SettingsFrom(cfg *config.ReaderConfig) Settings {
	return Settings{
		Storage:    cfg.Storage,
		Online:     cfg.Online == nil || *cfg.Online,
		Contained:  cfg.Contained,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Spreads:    cfg.Spreads,
		Responsive: cfg.Responsive,
		Version:    cfg.Version,
		Restore:    cfg.Restore,
		Prefetch:   cfg.Prefetch,
	}
}

// savedSettings is persisted form of Settings. Absent fields were not defined
// by the session which saved them. Connectivity and storage mode belong to
// the running process and are never persisted, version is part of record key.
type savedSettings struct {
	LibraryVersion   string  `yaml:"library_version"`
	Contained        *bool   `yaml:"contained,omitempty"`
	Width            *int    `yaml:"width,omitempty"`
	Height           *int    `yaml:"height,omitempty"`
	Spreads          *bool   `yaml:"spreads,omitempty"`
	Responsive       *bool   `yaml:"responsive,omitempty"`
	Restore          *bool   `yaml:"restore,omitempty"`
	Prefetch         *bool   `yaml:"prefetch,omitempty"`
	Stored           *bool   `yaml:"stored,omitempty"`
	PreviousLocation *string `yaml:"previous_location,omitempty"`
}

func snapshot(s Settings, libraryVersion string) savedSettings {
	saved := savedSettings{
		LibraryVersion: libraryVersion,
		Contained:      &s.Contained,
		Width:          &s.Width,
		Height:         &s.Height,
		Spreads:        &s.Spreads,
		Responsive:     &s.Responsive,
		Restore:        &s.Restore,
		Prefetch:       &s.Prefetch,
		Stored:         &s.Stored,
	}
	if s.PreviousLocation != "" {
		saved.PreviousLocation = &s.PreviousLocation
	}
	return saved
}

// applyTo merges saved values into current settings. Saved values win,
// current ones survive only where saved record is silent.
func (saved *savedSettings) applyTo(s *Settings) {
	set(&s.Contained, saved.Contained)
	set(&s.Width, saved.Width)
	set(&s.Height, saved.Height)
	set(&s.Spreads, saved.Spreads)
	set(&s.Responsive, saved.Responsive)
	set(&s.Restore, saved.Restore)
	set(&s.Prefetch, saved.Prefetch)
	set(&s.Stored, saved.Stored)
	set(&s.PreviousLocation, saved.PreviousLocation)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
