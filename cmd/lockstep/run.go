package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ezrec/lockstep/fsm"
	"github.com/ezrec/lockstep/session"
	"github.com/ezrec/lockstep/sim"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Commands []string      // Console commands, in order.
	Offset   time.Duration // Start offset.
	Timeout  time.Duration // Time allowed for the loop to catch up.
	Duration time.Duration // Run time of scripted programs.
	Pace     bool
	Clear    bool // Drop stale reservations before loading.
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the program on simulated modules",
		Long: `Load the compiled program on simulated modules and run it.

The control loop is driven by console commands, one per --exec:
an empty command advances (counts a press and pulses the data ready
event), "data N" writes the waveform number, "pulse" pulses the event,
and "q" raises the quit flag. Scripted programs run for --duration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Commands, "exec", "e", []string{""}, "console command")
	cmd.Flags().DurationVar(&opts.Offset, "offset", 0, "start offset")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 5*time.Second, "time allowed for the loop to catch up")
	cmd.Flags().DurationVar(&opts.Duration, "duration", 100*time.Millisecond, "run time of scripted programs")
	cmd.Flags().BoolVar(&opts.Pace, "pace", false, "sleep each instruction's time budget")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "drop every reservation before loading")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) (err error) {
	bld, comp, err := opts.compile()
	if err != nil {
		return
	}
	defer func() { err = errors.Join(err, bld.Close()) }()

	log := opts.Logger
	backend := sim.New(sim.Options{
		Logger:     log,
		Verbose:    opts.Verbose,
		Registerer: prometheus.NewRegistry(),
		Pace:       opts.Pace,
	})

	if opts.Clear {
		log.Warn("clearing reservations", zap.Int("count", len(opts.Table.Reserved())))
		opts.Table.Clear()
	}

	s, err := session.Load(comp, backend, opts.Table, session.Options{Logger: log})
	if err != nil {
		return
	}
	defer func() {
		err = errors.Join(err, s.Release())
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.Offset+opts.Timeout+opts.Duration)
	defer cancel()

	err = s.Run(ctx, opts.Offset)
	if err != nil {
		return
	}

	out := cmd.OutOrStdout()

	if bld.loop == nil {
		select {
		case <-time.After(opts.Offset + opts.Duration):
		case <-backend.Done():
		}
		err = backend.Stop()
		if err != nil {
			return
		}
		for _, ce := range comp.Engines {
			var stats sim.Stats
			stats, err = backend.Stats(ce.Engine.Name())
			if err != nil {
				return
			}
			fmt.Fprintf(out, "%v: %v ip=%d clock=%dns ticks=%d jumps=%d timeouts=%d\n",
				ce.Engine.Name(), stats.Status, stats.Ip, stats.Clock, stats.Ticks, stats.Jumps, stats.Timeouts)
		}
		return
	}

	con, err := fsm.NewConsole(s, bld.loop, log)
	if err != nil {
		return
	}

	for _, command := range opts.Commands {
		var quit bool
		quit, err = con.Execute(command)
		if err != nil {
			return
		}
		if quit {
			break
		}
		err = catchUp(ctx, con)
		if err != nil {
			return
		}
	}

	line, err := con.Status()
	if err != nil {
		return
	}
	fmt.Fprintln(out, line)

	log.Info("run done", zap.Int("presses", con.Presses()))
	return
}

// catchUp waits until the loop has counted every press.
func catchUp(ctx context.Context, con *fsm.Console) (err error) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		var cycles uint32
		cycles, err = con.Cycles()
		if err != nil {
			return
		}
		if int(cycles) >= con.Presses() {
			return
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-ticker.C:
		}
	}
}
