// Package types provides shared data structures for the switcher backend.
//
// Core Types:
//   - AppEntry: One app row in the switcher list
//   - Snapshot: The persisted root (app list plus window/support fields)
//   - Stats: Counts derived from a snapshot
//
// Snapshots are values. Code that derives a new snapshot must copy the
// Apps slice before changing an entry; see the applist package.
//
// Example Usage:
//
//	snap := types.DefaultSnapshot()
//	fmt.Println(snap.Height) // 200
package types
