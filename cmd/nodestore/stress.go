package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/nodestore"
)

var (
	stressWorkers  int
	stressOps      int
	stressMaxSlots int64
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressWorkers, "workers", 8, "Number of concurrent workers")
	cmd.Flags().IntVar(&stressOps, "ops", 10_000, "Operations per worker")
	cmd.Flags().Int64Var(&stressMaxSlots, "max-slots", 0, "Slot budget (0 for unbounded)")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run concurrent allocate/get/deallocate against a running collector",
		Long: `The stress command runs --workers goroutines doing a mix of allocate,
get and deallocate calls while a collector repeatedly collects with the
current live set as roots. It fails if a handle is ever issued twice or a
handle resolves to another worker's payload.

Example:
  nodestore stress --workers 16 --ops 100000
  nodestore stress --max-slots 1024`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context())
		},
	}
	return cmd
}

type stressPayload struct {
	worker int
	seq    int
}

type stressResult struct {
	Workers     int        `json:"workers"`
	Ops         int        `json:"ops_per_worker"`
	Allocs      int64      `json:"allocs"`
	Exhausted   int64      `json:"exhausted"`
	Frees       int64      `json:"frees"`
	Gets        int64      `json:"gets"`
	Collections int64      `json:"collections"`
	Live        int        `json:"live"`
	Elapsed     string     `json:"elapsed"`
	Stats       statsJSON  `json:"stats"`
	LastCollect reportJSON `json:"last_collect"`
}

type statsJSON struct {
	TotalAllocs  uint64 `json:"total_allocs"`
	TotalFrees   uint64 `json:"total_frees"`
	Reuses       uint64 `json:"reuses"`
	StaleLookups uint64 `json:"stale_lookups"`
	Compactions  uint64 `json:"compactions"`
	PeakSlots    uint64 `json:"peak_slots"`
}

func runStress(ctx context.Context) error {
	if stressWorkers <= 0 || stressOps <= 0 {
		return fmt.Errorf("--workers and --ops must be positive")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := nodestore.New[stressPayload](
		nodestore.WithMaxSlots(stressMaxSlots),
		nodestore.WithLogger(newLogger()),
		nodestore.WithArenaName("stress"),
	)

	var (
		issued      sync.Map
		allocs      atomic.Int64
		exhausted   atomic.Int64
		frees       atomic.Int64
		gets        atomic.Int64
		collections atomic.Int64
		lastMu      sync.Mutex
		last        nodestore.CollectionReport
	)

	start := time.Now()
	workers, wctx := errgroup.WithContext(ctx)
	for w := range stressWorkers {
		workers.Go(func() error {
			rng := rand.New(rand.NewPCG(uint64(w), 0x5eed)) //nolint:gosec // workload shape only
			var mine []nodestore.NodeID

			for seq := range stressOps {
				if err := wctx.Err(); err != nil {
					return err
				}

				switch op := rng.IntN(4); {
				case op < 2 || len(mine) == 0:
					id, err := s.Allocate(stressPayload{worker: w, seq: seq})
					if err != nil {
						exhausted.Add(1)
						continue
					}
					if _, dup := issued.LoadOrStore(id, struct{}{}); dup {
						return fmt.Errorf("handle %s issued twice", id)
					}
					allocs.Add(1)
					mine = append(mine, id)
				case op == 2:
					id := mine[rng.IntN(len(mine))]
					if p, ok := s.Get(id); ok && p.worker != w {
						return fmt.Errorf("handle %s resolved to worker %d payload", id, p.worker)
					}
					gets.Add(1)
				default:
					i := rng.IntN(len(mine))
					if s.Deallocate(mine[i]) {
						frees.Add(1)
					}
					mine[i] = mine[len(mine)-1]
					mine = mine[:len(mine)-1]
				}
			}
			return nil
		})
	}

	collectCtx, stopCollector := context.WithCancel(ctx)
	collector := make(chan error, 1)
	go func() {
		defer close(collector)
		for collectCtx.Err() == nil {
			report, err := s.Collect(collectCtx, s.AllocatedIDs(), nodestore.NoEdges)
			if err != nil {
				if collectCtx.Err() != nil {
					return
				}
				collector <- err
				return
			}
			collections.Add(1)
			lastMu.Lock()
			last = report
			lastMu.Unlock()
			time.Sleep(time.Millisecond)
		}
	}()

	werr := workers.Wait()
	stopCollector()
	if err := <-collector; err != nil {
		return fmt.Errorf("collector: %w", err)
	}
	if werr != nil {
		return werr
	}

	st := s.Stats()
	res := stressResult{
		Workers:     stressWorkers,
		Ops:         stressOps,
		Allocs:      allocs.Load(),
		Exhausted:   exhausted.Load(),
		Frees:       frees.Load(),
		Gets:        gets.Load(),
		Collections: collections.Load(),
		Live:        s.Len(),
		Elapsed:     time.Since(start).String(),
		Stats: statsJSON{
			TotalAllocs:  st.TotalAllocs,
			TotalFrees:   st.TotalFrees,
			Reuses:       st.Reuses,
			StaleLookups: st.StaleLookups,
			Compactions:  st.Compactions,
			PeakSlots:    st.PeakSlots,
		},
		LastCollect: toReportJSON(last),
	}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("workers: %d x %d ops in %s\n", res.Workers, res.Ops, res.Elapsed)
	printInfo("allocs: %d (exhausted %d), frees: %d, gets: %d\n", res.Allocs, res.Exhausted, res.Frees, res.Gets)
	printInfo("collections: %d, live: %d, peak slots: %d\n", res.Collections, res.Live, res.Stats.PeakSlots)
	printVerbose("last collection: %s\n", last)
	return nil
}
