package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/nodestore"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "nodestore",
	Short: "Benchmark and inspect the nodestore arena and collector",
	Long: `nodestore drives a generational node arena: it allocates node trees,
collects unreachable nodes, stresses concurrent access and parses HTML
documents into arena-backed trees.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logs")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// newLogger returns the store logger matching the global flags.
func newLogger() *nodestore.Logger {
	if quiet {
		return nodestore.NoopLogger()
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if jsonOut {
		return nodestore.NewJSONLogger(level)
	}
	return nodestore.NewTextLogger(level)
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// reportJSON is the JSON shape of a collection report.
type reportJSON struct {
	NodesBefore         int     `json:"nodes_before"`
	NodesAfter          int     `json:"nodes_after"`
	NodesCollected      int     `json:"nodes_collected"`
	CollectionRate      float64 `json:"collection_rate"`
	FragmentationBefore float64 `json:"fragmentation_before"`
	FragmentationAfter  float64 `json:"fragmentation_after"`
	Compacted           bool    `json:"compacted"`
	SlotsTrimmed        int     `json:"slots_trimmed"`
	DurationMicros      int64   `json:"duration_us"`
}

func toReportJSON(r nodestore.CollectionReport) reportJSON {
	return reportJSON{
		NodesBefore:         r.NodesBefore,
		NodesAfter:          r.NodesAfter,
		NodesCollected:      r.NodesCollected,
		CollectionRate:      r.CollectionRate(),
		FragmentationBefore: r.FragmentationBefore,
		FragmentationAfter:  r.FragmentationAfter,
		Compacted:           r.Compacted,
		SlotsTrimmed:        r.SlotsTrimmed,
		DurationMicros:      r.Duration.Microseconds(),
	}
}
