package migration

import "github.com/GriffinCanCode/switcher/internal/shared/types"

// DocumentApp is an app entry as persisted
type DocumentApp struct {
	Name        string  `json:"name" yaml:"name" toml:"name"`
	HotCode     *string `json:"hotCode" yaml:"hotCode" toml:"hotCode,omitempty"`
	IsInstalled bool    `json:"isInstalled" yaml:"isInstalled" toml:"isInstalled"`
	UserRemoved *bool   `json:"userRemoved,omitempty" yaml:"userRemoved,omitempty" toml:"userRemoved,omitempty"`
}

// Document is a persisted snapshot of unknown age
type Document struct {
	Apps           []DocumentApp `json:"apps" yaml:"apps" toml:"apps"`
	SupportMessage int64         `json:"supportMessage" yaml:"supportMessage" toml:"supportMessage"`
	IsSetup        bool          `json:"isSetup" yaml:"isSetup" toml:"isSetup"`
	Height         int           `json:"height" yaml:"height" toml:"height"`
}

// IsCurrent reports whether every app already carries userRemoved
func (d Document) IsCurrent() bool {
	for _, app := range d.Apps {
		if app.UserRemoved == nil {
			return false
		}
	}
	return true
}

// Upgrade fills in fields missing from older schemas.
// The input document is not modified.
func Upgrade(doc Document) Document {
	out := doc
	if doc.Apps == nil {
		return out
	}

	out.Apps = make([]DocumentApp, len(doc.Apps))
	for i, app := range doc.Apps {
		if app.UserRemoved == nil {
			removed := false
			app.UserRemoved = &removed
		}
		out.Apps[i] = app
	}
	return out
}

// Normalize upgrades doc and converts it into a live snapshot
func Normalize(doc Document) types.Snapshot {
	doc = Upgrade(doc)

	snap := types.Snapshot{
		Apps:           make([]types.AppEntry, 0, len(doc.Apps)),
		SupportMessage: doc.SupportMessage,
		IsSetup:        doc.IsSetup,
		Height:         doc.Height,
	}
	for _, app := range doc.Apps {
		entry := types.AppEntry{
			Name:        app.Name,
			IsInstalled: app.IsInstalled,
			UserRemoved: *app.UserRemoved,
		}
		if app.HotCode != nil {
			entry.HotCode = types.StringPtr(*app.HotCode)
		}
		snap.Apps = append(snap.Apps, entry)
	}
	return snap
}

// FromSnapshot converts a live snapshot into the current persisted shape
func FromSnapshot(snap types.Snapshot) Document {
	doc := Document{
		Apps:           make([]DocumentApp, 0, len(snap.Apps)),
		SupportMessage: snap.SupportMessage,
		IsSetup:        snap.IsSetup,
		Height:         snap.Height,
	}
	for _, app := range snap.Apps {
		removed := app.UserRemoved
		out := DocumentApp{
			Name:        app.Name,
			IsInstalled: app.IsInstalled,
			UserRemoved: &removed,
		}
		if app.HotCode != nil {
			out.HotCode = types.StringPtr(*app.HotCode)
		}
		doc.Apps = append(doc.Apps, out)
	}
	return doc
}
