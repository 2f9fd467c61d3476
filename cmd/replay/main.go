// Command replay applies an event script to a snapshot and prints the result.
//
// Usage:
//
//	replay -script steal.yaml
//	replay -snapshot storage.json.zst -script scan.toml -out next.json.zst -compress zstd
//
// Without -out the resulting snapshot is printed as JSON.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/GriffinCanCode/switcher/internal/codec"
	"github.com/GriffinCanCode/switcher/internal/domain/applist"
	"github.com/GriffinCanCode/switcher/internal/domain/migration"
	"github.com/GriffinCanCode/switcher/internal/script"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

func main() {
	snapshotPath := flag.String("snapshot", "", "Starting snapshot (default: empty list)")
	scriptPath := flag.String("script", "", "Event script (.yaml, .yml, .toml or .json)")
	outPath := flag.String("out", "", "Write the result here instead of stdout")
	compress := flag.String("compress", string(codec.CompressionNone), "Output compression: none, gzip or zstd")
	maxBytes := flag.Int("max-bytes", codec.DefaultMaxBytes, "Snapshot size limit")
	flag.Parse()

	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "replay: -script is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*snapshotPath, *scriptPath, *outPath, codec.Compression(*compress), *maxBytes); err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}

func run(snapshotPath, scriptPath, outPath string, compression codec.Compression, maxBytes int) error {
	c := codec.New(maxBytes)

	start := types.DefaultSnapshot()
	if snapshotPath != "" {
		doc, err := c.ReadFile(snapshotPath)
		if err != nil {
			return err
		}
		start = migration.Normalize(doc)
	}

	format, err := script.FormatFromPath(scriptPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return err
	}
	s, err := script.Parse(data, format)
	if err != nil {
		return err
	}

	events, err := s.Decode()
	if err != nil {
		return err
	}
	result, err := applist.ApplyAll(start, events...)
	if err != nil {
		return err
	}

	if outPath == "" {
		compression = codec.CompressionNone
	}
	out, err := c.Encode(result, compression)
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = fmt.Fprintln(os.Stdout, string(out))
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}
