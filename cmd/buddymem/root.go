package main

import (
	"fmt"
	"io"
	"os"

	"github.com/QuangTung97/buddymem"
	"github.com/QuangTung97/buddymem/command"
	"github.com/QuangTung97/buddymem/internal/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	capacity int
	mmap     bool
	logLevel string
	logJSON  bool
	noColor  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "buddymem [file.cmmd]",
		Short: "Run allocator commands against a buddy-managed arena",
		Long: `buddymem executes a command file against a fixed-size arena managed by a
buddy allocator. Each line is one of:

  INSERT <size> <data>   allocate a block and store data (0x.. for hex bytes)
  READ <id>              show a block
  UPDATE <id> <data>     replace a block's data, reallocating if it grows
  DELETE <id>            free a block
  DUMP                   list every allocated and free region
  STATS                  print usage totals
  EXIT                   stop

Commands are read from standard input when no file (or "-") is given.

Example:
  buddymem commands.cmmd
  buddymem --capacity 4096 --log-level debug commands.cmmd
  printf 'INSERT 5 hello\nDUMP\n' | buddymem -`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.capacity, "capacity", "c", buddymem.DefaultCapacity, "Arena size in bytes")
	cmd.Flags().BoolVar(&opts.mmap, "mmap", false, "Back the arena with an anonymous memory mapping")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "off", "Log level: debug, info, warn, error or off")
	cmd.Flags().BoolVar(&opts.logJSON, "log-json", false, "Write logs as JSON lines")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runScript(cmd *cobra.Command, opts *rootOptions, args []string) error {
	level, enabled, err := logger.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger.Init(logger.Options{
		Enabled: enabled,
		Output:  cmd.ErrOrStderr(),
		Level:   level,
		JSON:    opts.logJSON,
	})

	mgr, err := buddymem.New(buddymem.Config{
		Capacity: opts.capacity,
		Mapped:   opts.mmap,
		Logger:   logger.L,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			logger.L.Error("close arena", "error", err)
		}
	}()

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "open command file")
		}
		defer f.Close()
		in = f
	}

	itOpts := []command.Option{command.WithLogger(logger.L)}
	if !opts.noColor {
		itOpts = append(itOpts, command.WithLabel(newLabelStyler(cmd.OutOrStdout())))
	}

	logger.L.Info("running commands",
		"capacity", mgr.Capacity(),
		"mmap", opts.mmap,
	)
	return command.NewInterpreter(mgr, cmd.OutOrStdout(), itOpts...).Run(in)
}
