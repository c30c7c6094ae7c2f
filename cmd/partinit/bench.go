package main

import (
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"

	"github.com/rawbytedev/partinit"
)

type benchOptions struct {
	n          int
	memprofile string
	pprofAddr  string
}

func newBenchCmd(a *app) *cobra.Command {
	var o benchOptions
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Build a Sample member by member in a loop",
		Long: `Build a Sample member by member in a loop and report time and
allocations. With --pprof the profiling endpoint stays up until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.n <= 0 {
				return fmt.Errorf("--n must be positive, got %d", o.n)
			}
			if o.pprofAddr != "" {
				srv := &http.Server{Addr: o.pprofAddr}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.logger.Error("pprof server", "err", err)
					}
				}()
				defer srv.Close()
				a.logger.Info("pprof listening", "addr", o.pprofAddr)
			}
			if o.memprofile != "" {
				runtime.MemProfileRate = 1
			}

			elapsed, allocs := runSample(o.n)
			fmt.Fprintf(cmd.OutOrStdout(), "%d iterations, %v/op, %.2f allocs/op\n",
				o.n, elapsed/time.Duration(o.n), float64(allocs)/float64(o.n))

			if o.memprofile != "" {
				if err := writeHeapProfile(o.memprofile); err != nil {
					return err
				}
				a.logger.Info("heap profile written", "path", o.memprofile)
			}
			if o.pprofAddr != "" {
				<-cmd.Context().Done()
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&o.n, "n", "n", 100000, "iterations")
	cmd.Flags().StringVar(&o.memprofile, "memprofile", "", "write a heap profile to this file")
	cmd.Flags().StringVar(&o.pprofAddr, "pprof", "", "serve net/http/pprof on this address")
	return cmd
}

func runSample(n int) (time.Duration, uint64) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	start := time.Now()
	for i := 0; i < n; i++ {
		s := partinit.Alloc[Sample]()
		partinit.Write(s, sampleName, "Foo")
		_, v := partinit.Write2(s, sampleValue1, 0xff, sampleValue2A, int32(i))
		*v *= 2
		partinit.Write(s, sampleValue2B, true)
		_ = s.AssumeInit()
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)
	return elapsed, after.Mallocs - before.Mallocs
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
