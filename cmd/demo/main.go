// cmd/demo wires the three core components together directly, as the
// external collaborator the spec describes: a worker pool executes jobs, an
// LRU cache memoizes job results by parameter signature, and a single
// coroutine routine drives job submission, yielding between submissions.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/guti2010/corepool/internal/config"
	"github.com/guti2010/corepool/internal/logging"
	"github.com/guti2010/corepool/pkg/cache"
	"github.com/guti2010/corepool/pkg/coroutine"
	"github.com/guti2010/corepool/pkg/pool"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		logging.Logger.Fatal().Err(err).Msg("demo run failed")
	}
}

func buildRootCmd() *cobra.Command {
	var configFile string
	var jobCount int

	root := &cobra.Command{
		Use:     "corepool-demo",
		Short:   "Drives the worker pool, LRU cache, and coroutine engine from one process",
		Version: "1.0.0",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return run(cfg, jobCount)
		},
	}

	root.Flags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file (optional)")
	root.Flags().IntVarP(&jobCount, "jobs", "j", 8, "number of demo jobs to submit")

	return root
}

// job is the unit of work the demo's coroutine pipeline submits; its
// parameter signature doubles as the cache key.
type job struct {
	id    string
	input int
}

func signature(j job) string {
	return fmt.Sprintf("square:%d", j.input)
}

func run(cfg config.Config, jobCount int) error {
	pc := cfg.Pools["default"]
	p := pool.New(1, pc.Workers, pc.Capacity, 5*time.Second)
	defer p.Close()

	memo := cache.New(cfg.Cache.MaxSizeBytes)
	engine := coroutine.New()

	// The producer routine submits every job to the pool in turn, yielding
	// between submissions. With only one routine alive, Yield is a harmless
	// no-op (there is nothing else to switch to) — it documents the
	// cooperative staging point a second routine could plug into without
	// changing this routine's code.
	engine.Go("producer", func() {
		for i := 0; i < jobCount; i++ {
			j := job{id: uuid.NewString(), input: i % 3}
			result := submit(p, memo, j)
			logging.Logger.Info().
				Str("job_id", j.id).
				Int("input", j.input).
				Str("result", result).
				Msg("job finished")
			engine.Yield()
		}
	})

	engine.Start()

	fmt.Fprintf(os.Stdout, "submitted %d jobs, cache entries now: %d\n", jobCount, memo.Len())
	return nil
}

// submit memoizes job results by parameter signature: a repeated signature
// (input % 3 cycles, so most of a longer run hits the cache) is served
// without resubmitting to the pool.
func submit(p *pool.Pool, memo *cache.Cache, j job) string {
	key := signature(j)
	if cached, ok := memo.Get(key); ok {
		return cached
	}

	done := make(chan string, 1)
	if !p.Execute(func() {
		done <- fmt.Sprintf("%d", j.input*j.input)
	}) {
		return "rejected: pool at capacity"
	}

	result := <-done
	memo.Put(key, result)
	return result
}
