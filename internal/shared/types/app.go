package types

// Persisted defaults
const (
	DefaultHeight = 200

	// SupportNever marks the donation prompt as permanently dismissed.
	SupportNever int64 = -1
)

// AppEntry is one app in the switcher list
type AppEntry struct {
	Name        string  `json:"name"`
	HotCode     *string `json:"hotCode"`
	IsInstalled bool    `json:"isInstalled"`
	UserRemoved bool    `json:"userRemoved"`
}

// HasHotCode reports whether the entry is bound to code
func (e AppEntry) HasHotCode(code string) bool {
	return e.HotCode != nil && *e.HotCode == code
}

// Snapshot is one complete value of the persisted state
type Snapshot struct {
	Apps           []AppEntry `json:"apps"`
	SupportMessage int64      `json:"supportMessage"` // 0 unset, -1 never, otherwise unix ms of deferral
	IsSetup        bool       `json:"isSetup"`
	Height         int        `json:"height"`
}

// DefaultSnapshot returns the snapshot used before anything is loaded
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Apps:   []AppEntry{},
		Height: DefaultHeight,
	}
}

// Clone returns a deep copy, including hot code pointers
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Apps = make([]AppEntry, len(s.Apps))
	for i, app := range s.Apps {
		if app.HotCode != nil {
			code := *app.HotCode
			app.HotCode = &code
		}
		out.Apps[i] = app
	}
	return out
}

// Stats summarises a snapshot
type Stats struct {
	TotalApps     int  `json:"total_apps"`
	InstalledApps int  `json:"installed_apps"`
	RemovedApps   int  `json:"removed_apps"`
	HotCodes      int  `json:"hot_codes"`
	IsSetup       bool `json:"is_setup"`
}

// Stats computes counts over the snapshot's apps
func (s Snapshot) Stats() Stats {
	stats := Stats{TotalApps: len(s.Apps), IsSetup: s.IsSetup}
	for _, app := range s.Apps {
		if app.IsInstalled {
			stats.InstalledApps++
		}
		if app.UserRemoved {
			stats.RemovedApps++
		}
		if app.HotCode != nil {
			stats.HotCodes++
		}
	}
	return stats
}

// StringPtr returns a pointer to a copy of s
func StringPtr(s string) *string {
	return &s
}
