package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/ezrec/lockstep/config"
	"github.com/ezrec/lockstep/fsm"
	"github.com/ezrec/lockstep/hw"
	"github.com/ezrec/lockstep/program"
	"github.com/ezrec/lockstep/script"
	"github.com/ezrec/lockstep/session"
	"github.com/ezrec/lockstep/translate"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Config  string // Topology file; empty uses config.Default().
	Script  string // Starlark program; empty builds the control loop.
	Lang    string // Message language; empty uses the host locale.

	Logger *zap.Logger     // Set by PersistentPreRunE unless already set.
	Table  *session.Table // Reservations of loaded sessions; likewise.
}

// NewRootCommand creates the root command of the lockstep CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lockstep",
		Short: "Lockstep multi-engine sequencer",
		Long: `Build, compile and run synchronized instruction sequences on the
execution engines of digitizer and AWG modules.

Without --script the digitizer/AWG control loop of the topology is built.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			if len(opts.Lang) != 0 {
				var tag language.Tag
				tag, err = language.Parse(opts.Lang)
				if err != nil {
					return
				}
				translate.SetLanguage(tag)
			}
			if opts.Table == nil {
				opts.Table = session.NewTable()
			}
			if opts.Logger != nil {
				return
			}
			if opts.Verbose {
				opts.Logger, err = zap.NewDevelopment()
			} else {
				opts.Logger, err = zap.NewProduction()
			}
			return
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "topology file (.yaml or .hcl)")
	cmd.PersistentFlags().StringVarP(&opts.Script, "script", "s", "", "Starlark program (.star)")
	cmd.PersistentFlags().StringVar(&opts.Lang, "lang", "", "message language (BCP 47)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewResourcesCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}

// build is a program with the modules it runs on.
type build struct {
	modules []*hw.SimModule
	loop    *fsm.Loop // nil for scripted programs.
	prog    *program.Program
}

// Close closes every module of the build.
func (bld *build) Close() (err error) {
	for _, mod := range bld.modules {
		err = errors.Join(err, mod.Close())
	}
	return
}

// load opens the topology's modules and builds the program.
// The modules are closed again when the build fails.
func (opts *RootOptions) load() (bld *build, err error) {
	file := config.Default()
	if len(opts.Config) != 0 {
		file, err = config.Load(opts.Config)
		if err != nil {
			return
		}
	}

	mods, err := file.Open()
	if err != nil {
		return
	}
	modules := make([]hw.Module, len(mods))
	for n, mod := range mods {
		modules[n] = mod
	}

	out := &build{modules: mods}
	defer func() {
		if err != nil {
			_ = out.Close()
		}
	}()

	if len(opts.Script) != 0 {
		sc := script.New(modules...)
		sc.Verbose = opts.Verbose
		sc.Logger = opts.Logger
		out.prog, err = sc.Build(opts.Script, nil)
		if err != nil {
			return
		}
	} else {
		var top fsm.Topology
		top, err = file.Topology()
		if err != nil {
			return
		}
		out.loop, err = fsm.Build(top, modules)
		if err != nil {
			return
		}
		out.prog = out.loop.Program
	}

	bld = out
	return
}

// compile loads and compiles the program. The caller closes the build.
func (opts *RootOptions) compile() (bld *build, comp *program.Compiled, err error) {
	bld, err = opts.load()
	if err != nil {
		return
	}

	comp, err = program.Compile(bld.prog)
	if err != nil {
		_ = bld.Close()
		bld = nil
		return
	}

	opts.Logger.Debug("compiled",
		zap.String("program", bld.prog.ID.String()),
		zap.Int("engines", len(comp.Engines)),
		zap.Int("resources", len(comp.Resources.List())),
	)
	return
}

// printRegisters lists every loaded sandbox register of the modules.
func printRegisters(w io.Writer, mods []*hw.SimModule) (err error) {
	for _, mod := range mods {
		sb, ok := mod.SimSandbox(hw.SANDBOX_DEFAULT)
		if !ok || !sb.Loaded() {
			continue
		}
		_, err = fmt.Fprintf(w, "%v/%v:\n", mod.Name(), sb.Name())
		if err != nil {
			return
		}
		for _, reg := range sb.Registers() {
			_, err = fmt.Fprintf(w, "\t%v %v length=%d address=%d access=%v\n",
				reg.Name, reg.Block, reg.Length, reg.Address, reg.Access)
			if err != nil {
				return
			}
		}
	}
	return
}
