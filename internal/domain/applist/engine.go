package applist

import (
	"fmt"

	"github.com/GriffinCanCode/switcher/internal/domain/migration"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

// Apply returns the snapshot that results from applying event to snap.
// On error the returned snapshot is snap itself.
func Apply(snap types.Snapshot, event Event) (types.Snapshot, error) {
	switch e := event.(type) {
	case SetupCompleted:
		snap.IsSetup = true
		return snap, nil

	case ResetConfirmed:
		return types.DefaultSnapshot(), nil

	case StartupLoaded:
		return migration.Normalize(e.Document), nil

	case InstalledAppsScanned:
		snap.Apps = applyScan(snap.Apps, e.Names)
		return snap, nil

	case HotCodeUpdated:
		apps, err := applyHotCode(snap.Apps, e.AppName, e.Value)
		if err != nil {
			return snap, err
		}
		snap.Apps = apps
		return snap, nil

	case AppRemoved:
		snap.Apps = setRemoved(snap.Apps, e.AppName, true)
		return snap, nil

	case AppRestored:
		snap.Apps = setRemoved(snap.Apps, e.AppName, false)
		return snap, nil

	case AppReordered:
		snap.Apps = reorder(snap.Apps, e.SourceName, e.DestinationName)
		return snap, nil

	case DonateClicked:
		snap.SupportMessage = types.SupportNever
		return snap, nil

	case MaybeLaterClicked:
		if e.At.IsZero() {
			return snap, fmt.Errorf("%w: %s without timestamp", ErrInvalidEvent, e.Kind())
		}
		// Negative values collide with SupportNever
		if e.At.UnixMilli() < 0 {
			return snap, fmt.Errorf("%w: %s before epoch", ErrInvalidEvent, e.Kind())
		}
		snap.SupportMessage = e.At.UnixMilli()
		return snap, nil

	case PickerResized:
		if e.Height <= 0 {
			return snap, fmt.Errorf("%w: %s to %d", ErrInvalidEvent, e.Kind(), e.Height)
		}
		snap.Height = e.Height
		return snap, nil

	case nil:
		return snap, fmt.Errorf("%w: nil", ErrUnknownEvent)

	default:
		return snap, fmt.Errorf("%w: %T", ErrUnknownEvent, event)
	}
}

// ApplyAll folds events over snap, stopping at the first error
func ApplyAll(snap types.Snapshot, events ...Event) (types.Snapshot, error) {
	for i, event := range events {
		next, err := Apply(snap, event)
		if err != nil {
			return snap, fmt.Errorf("event %d (%s): %w", i, kindOf(event), err)
		}
		snap = next
	}
	return snap, nil
}

// applyScan recomputes IsInstalled for known apps, then appends apps seen
// for the first time in report order. Nothing is ever dropped.
func applyScan(apps []types.AppEntry, reported []string) []types.AppEntry {
	present := nameSet(reported)
	known := make(map[string]struct{}, len(apps)+len(reported))

	out := make([]types.AppEntry, len(apps), len(apps)+len(reported))
	for i, app := range apps {
		_, installed := present[app.Name]
		app.IsInstalled = installed && !app.UserRemoved
		out[i] = app
		known[app.Name] = struct{}{}
	}

	for _, name := range reported {
		if _, ok := known[name]; ok {
			continue
		}
		known[name] = struct{}{}
		out = append(out, types.AppEntry{
			Name:        name,
			HotCode:     nil,
			IsInstalled: true,
			UserRemoved: false,
		})
	}
	return out
}

// applyHotCode steals code from any current holder, then gives it to name
func applyHotCode(apps []types.AppEntry, name, code string) ([]types.AppEntry, error) {
	target := indexOf(apps, name)
	if target == -1 {
		return apps, fmt.Errorf("assign hot code %q to %q: %w", code, name, ErrUnknownApp)
	}

	out := cloneApps(apps)
	if code == "" {
		out[target].HotCode = nil
		return out, nil
	}

	for i := range out {
		if out[i].HasHotCode(code) {
			out[i].HotCode = nil
		}
	}
	out[target].HotCode = types.StringPtr(code)
	return out, nil
}

// setRemoved flips the user-removed flag. Restoring marks the app installed
// until the next scan says otherwise.
func setRemoved(apps []types.AppEntry, name string, removed bool) []types.AppEntry {
	i := indexOf(apps, name)
	if i == -1 {
		return apps
	}

	out := cloneApps(apps)
	out[i].UserRemoved = removed
	out[i].IsInstalled = !removed
	return out
}

// reorder moves source into destination's index, shifting the rest down.
// Unknown names and source == destination leave apps untouched.
func reorder(apps []types.AppEntry, source, destination string) []types.AppEntry {
	if source == destination {
		return apps
	}
	from, to := indexOf(apps, source), indexOf(apps, destination)
	if from == -1 || to == -1 {
		return apps
	}

	moved := apps[from]
	rest := make([]types.AppEntry, 0, len(apps)-1)
	rest = append(rest, apps[:from]...)
	rest = append(rest, apps[from+1:]...)

	out := make([]types.AppEntry, 0, len(apps))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	return out
}
