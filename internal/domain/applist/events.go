package applist

import (
	"time"

	"github.com/GriffinCanCode/switcher/internal/domain/migration"
)

// Kind names an event type. Values match the wire envelope's "type" field.
type Kind string

const (
	KindSetupCompleted       Kind = "setupCompleted"
	KindResetConfirmed       Kind = "resetConfirmed"
	KindStartupLoaded        Kind = "startupLoaded"
	KindInstalledAppsScanned Kind = "installedAppsScanned"
	KindHotCodeUpdated       Kind = "hotCodeUpdated"
	KindAppRemoved           Kind = "appRemoved"
	KindAppRestored          Kind = "appRestored"
	KindAppReordered         Kind = "appReordered"
	KindDonateClicked        Kind = "donateClicked"
	KindMaybeLaterClicked    Kind = "maybeLaterClicked"
	KindPickerResized        Kind = "pickerResized"
)

// Kinds lists every event kind Apply understands
func Kinds() []Kind {
	return []Kind{
		KindSetupCompleted,
		KindResetConfirmed,
		KindStartupLoaded,
		KindInstalledAppsScanned,
		KindHotCodeUpdated,
		KindAppRemoved,
		KindAppRestored,
		KindAppReordered,
		KindDonateClicked,
		KindMaybeLaterClicked,
		KindPickerResized,
	}
}

// Event is anything Apply accepts
type Event interface {
	Kind() Kind
}

func kindOf(event Event) Kind {
	if event == nil {
		return "nil"
	}
	return event.Kind()
}

// SetupCompleted marks first-run setup as done
type SetupCompleted struct{}

// ResetConfirmed discards all state
type ResetConfirmed struct{}

// StartupLoaded replaces the live snapshot with a persisted one
type StartupLoaded struct {
	Document migration.Document
}

// InstalledAppsScanned carries the complete set of apps the system reports installed
type InstalledAppsScanned struct {
	Names []string
}

// HotCodeUpdated binds a key code to an app, taking it from any other holder.
// An empty Value clears the app's binding.
type HotCodeUpdated struct {
	AppName string
	Value   string
}

// AppRemoved hides an app at the user's request
type AppRemoved struct {
	AppName string
}

// AppRestored un-hides an app
type AppRestored struct {
	AppName string
}

// AppReordered moves Source to the index Destination occupies
type AppReordered struct {
	SourceName      string
	DestinationName string
}

// DonateClicked dismisses the support prompt for good
type DonateClicked struct{}

// MaybeLaterClicked defers the support prompt; At is when the user deferred it
type MaybeLaterClicked struct {
	At time.Time
}

// PickerResized records the picker window's new height
type PickerResized struct {
	Height int
}

func (SetupCompleted) Kind() Kind       { return KindSetupCompleted }
func (ResetConfirmed) Kind() Kind       { return KindResetConfirmed }
func (StartupLoaded) Kind() Kind        { return KindStartupLoaded }
func (InstalledAppsScanned) Kind() Kind { return KindInstalledAppsScanned }
func (HotCodeUpdated) Kind() Kind       { return KindHotCodeUpdated }
func (AppRemoved) Kind() Kind           { return KindAppRemoved }
func (AppRestored) Kind() Kind          { return KindAppRestored }
func (AppReordered) Kind() Kind         { return KindAppReordered }
func (DonateClicked) Kind() Kind        { return KindDonateClicked }
func (MaybeLaterClicked) Kind() Kind    { return KindMaybeLaterClicked }
func (PickerResized) Kind() Kind        { return KindPickerResized }
