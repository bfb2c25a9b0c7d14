package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/nodestore"
)

var (
	benchNodes int
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchNodes, "nodes", 100_000, "Number of nodes to allocate")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time allocate, get, deallocate and collect",
		Long: `The bench command allocates --nodes nodes, reads them back, frees every
other node, re-allocates into the freed slots and finally collects with
half of the nodes as roots.

Example:
  nodestore bench --nodes 1000000
  nodestore bench --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd.Context())
		},
	}
	return cmd
}

type benchResult struct {
	Nodes           int        `json:"nodes"`
	AllocateNanos   int64      `json:"allocate_ns_per_op"`
	GetNanos        int64      `json:"get_ns_per_op"`
	DeallocateNanos int64      `json:"deallocate_ns_per_op"`
	ReuseNanos      int64      `json:"reuse_ns_per_op"`
	Collect         reportJSON `json:"collect"`
}

func runBench(ctx context.Context) error {
	if benchNodes <= 0 {
		return fmt.Errorf("--nodes must be positive, got %d", benchNodes)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := nodestore.New[int](
		nodestore.WithCapacity(benchNodes),
		nodestore.WithLogger(newLogger()),
		nodestore.WithArenaName("bench"),
	)

	perOp := func(d time.Duration, n int) int64 {
		return d.Nanoseconds() / int64(max(n, 1))
	}

	res := benchResult{Nodes: benchNodes}
	ids := make([]nodestore.NodeID, benchNodes)

	printVerbose("Allocating %d nodes\n", benchNodes)
	start := time.Now()
	for i := range ids {
		id, err := s.Allocate(i)
		if err != nil {
			return fmt.Errorf("allocate: %w", err)
		}
		ids[i] = id
	}
	res.AllocateNanos = perOp(time.Since(start), benchNodes)

	start = time.Now()
	for _, id := range ids {
		if _, ok := s.Get(id); !ok {
			return fmt.Errorf("lost node %s", id)
		}
	}
	res.GetNanos = perOp(time.Since(start), benchNodes)

	half := benchNodes / 2
	start = time.Now()
	for i := 0; i < len(ids); i += 2 {
		s.Deallocate(ids[i])
	}
	res.DeallocateNanos = perOp(time.Since(start), (benchNodes+1)/2)

	start = time.Now()
	for i := 0; i < len(ids); i += 2 {
		id, err := s.Allocate(-i)
		if err != nil {
			return fmt.Errorf("allocate: %w", err)
		}
		ids[i] = id
	}
	res.ReuseNanos = perOp(time.Since(start), (benchNodes+1)/2)

	printVerbose("Collecting with %d roots\n", half)
	report, err := s.Collect(ctx, ids[:half], nodestore.NoEdges)
	if err != nil {
		return err
	}
	res.Collect = toReportJSON(report)

	if jsonOut {
		return printJSON(res)
	}

	printInfo("nodes:       %d\n", res.Nodes)
	printInfo("allocate:    %d ns/op\n", res.AllocateNanos)
	printInfo("get:         %d ns/op\n", res.GetNanos)
	printInfo("deallocate:  %d ns/op\n", res.DeallocateNanos)
	printInfo("reuse:       %d ns/op\n", res.ReuseNanos)
	printInfo("collect:     %s\n", report)
	return nil
}
