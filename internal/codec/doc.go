// Package codec reads and writes persisted snapshots.
//
// Snapshots are JSON documents in the shape migration.Document describes.
// Decode also accepts the same JSON compressed with zstd or gzip; the
// format is detected from the payload's magic bytes. JSON work is done
// with bytedance/sonic.
//
// Decoding never upgrades: callers hand the Document to the engine as a
// StartupLoaded event and the migration step runs there.
package codec
