package applist

import "github.com/GriffinCanCode/switcher/internal/shared/types"

// indexOf returns the position of name, or -1
func indexOf(apps []types.AppEntry, name string) int {
	for i, app := range apps {
		if app.Name == name {
			return i
		}
	}
	return -1
}

// cloneApps copies the entry slice. Hot code pointers are shared; no
// transition writes through them.
func cloneApps(apps []types.AppEntry) []types.AppEntry {
	out := make([]types.AppEntry, len(apps))
	copy(out, apps)
	return out
}

// nameSet builds a membership set
func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Find returns the entry called name
func Find(apps []types.AppEntry, name string) (types.AppEntry, bool) {
	if i := indexOf(apps, name); i != -1 {
		return apps[i], true
	}
	return types.AppEntry{}, false
}

// Installed returns the apps shown in the switcher, in list order
func Installed(apps []types.AppEntry) []types.AppEntry {
	out := make([]types.AppEntry, 0, len(apps))
	for _, app := range apps {
		if app.IsInstalled {
			out = append(out, app)
		}
	}
	return out
}

// Removed returns the apps the user has hidden, in list order
func Removed(apps []types.AppEntry) []types.AppEntry {
	out := make([]types.AppEntry, 0)
	for _, app := range apps {
		if app.UserRemoved {
			out = append(out, app)
		}
	}
	return out
}

// HotCodes maps each bound key code to its app name
func HotCodes(apps []types.AppEntry) map[string]string {
	out := make(map[string]string)
	for _, app := range apps {
		if app.HotCode != nil {
			out[*app.HotCode] = app.Name
		}
	}
	return out
}
