// Package migration upgrades persisted snapshots to the current shape.
//
// A Document is the snapshot as it was written to storage, which may
// predate fields added later. Optional fields are pointers so that an
// absent value can be told apart from its zero value.
//
// Schema history:
//   - v1: apps carry name, hotCode and isInstalled
//   - v2: apps gain userRemoved (absent means false)
//
// Upgrade is idempotent and never changes list order or any field other
// than the ones it fills in.
package migration
