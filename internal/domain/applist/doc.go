// Package applist owns the switcher's app list and the rules for changing it.
//
// Apply is a pure transition function: given a snapshot and one event it
// returns the next snapshot. It performs no I/O, reads no clock and never
// mutates its input, so any prefix of an event stream can be replayed to
// reproduce the state at that point.
//
// Invariants held by every snapshot Apply produces from a valid one:
//   - App names are unique
//   - A non-nil hot code is held by at most one app
//   - After a scan, IsInstalled == reported && !UserRemoved
//   - Apps are never deleted; removal only flips flags
//   - Reordering is a permutation
//
// Dispatcher wraps Apply for callers that need a single live snapshot:
// it serialises events, stamps time-dependent events with its clock and
// notifies subscribers after every accepted change.
//
// Example Usage:
//
//	d := applist.NewDispatcher(types.DefaultSnapshot())
//	d.Dispatch(applist.InstalledAppsScanned{Names: []string{"Firefox", "Safari"}})
//	d.Dispatch(applist.HotCodeUpdated{AppName: "Firefox", Value: "KeyF"})
package applist
