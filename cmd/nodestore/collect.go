package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/hupe1980/nodestore"
)

var (
	collectNodes     int
	collectKeepEvery int
	collectFanout    int
	collectSeed      uint64
)

func init() {
	cmd := newCollectCmd()
	cmd.Flags().IntVar(&collectNodes, "nodes", 10_000, "Number of nodes in the forest")
	cmd.Flags().IntVar(&collectKeepEvery, "keep-every", 2, "Keep every K-th tree root")
	cmd.Flags().IntVar(&collectFanout, "fanout", 4, "Maximum children per node")
	cmd.Flags().Uint64Var(&collectSeed, "seed", 1, "Random seed")
	rootCmd.AddCommand(cmd)
}

func newCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect a random forest with a subset of roots",
		Long: `The collect command builds a random forest of --nodes nodes where every
node has at most --fanout children, keeps every --keep-every-th tree root
and collects everything else.

Example:
  nodestore collect --nodes 100000 --keep-every 3 --fanout 8
  nodestore collect --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context())
		},
	}
	return cmd
}

type forestNode struct {
	children []nodestore.NodeID
}

// buildForest allocates n nodes. Each node is either a new tree root or the
// child of a random earlier node that still has room for children.
func buildForest(s *nodestore.Store[*forestNode], rng *rand.Rand, n, fanout int) ([]nodestore.NodeID, error) {
	var (
		roots []nodestore.NodeID
		open  []nodestore.NodeID // nodes with fewer than fanout children
	)

	for range n {
		id, err := s.Allocate(&forestNode{})
		if err != nil {
			return nil, err
		}

		// Roughly one tree per 64 nodes.
		if len(open) == 0 || rng.IntN(64) == 0 {
			roots = append(roots, id)
		} else {
			i := rng.IntN(len(open))
			parent := open[i]
			s.Update(parent, func(p **forestNode) {
				(*p).children = append((*p).children, id)
				if len((*p).children) >= fanout {
					open[i] = open[len(open)-1]
					open = open[:len(open)-1]
				}
			})
		}
		open = append(open, id)
	}
	return roots, nil
}

func runCollect(ctx context.Context) error {
	if collectNodes <= 0 || collectKeepEvery <= 0 || collectFanout <= 0 {
		return fmt.Errorf("--nodes, --keep-every and --fanout must be positive")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := nodestore.New[*forestNode](
		nodestore.WithLogger(newLogger()),
		nodestore.WithArenaName("collect"),
	)

	rng := rand.New(rand.NewPCG(collectSeed, collectSeed)) //nolint:gosec // reproducible workloads
	roots, err := buildForest(s, rng, collectNodes, collectFanout)
	if err != nil {
		return err
	}

	kept := make([]nodestore.NodeID, 0, len(roots)/collectKeepEvery+1)
	for i := 0; i < len(roots); i += collectKeepEvery {
		kept = append(kept, roots[i])
	}
	printVerbose("Built %d trees, keeping %d\n", len(roots), len(kept))

	children := func(id nodestore.NodeID) []nodestore.NodeID {
		n, ok := s.Get(id)
		if !ok {
			return nil
		}
		return n.children
	}

	report, err := s.Collect(ctx, kept, children)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(toReportJSON(report))
	}
	printInfo("%s\n", report)
	return nil
}
