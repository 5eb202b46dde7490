package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"focus-cli/config"
	"focus-cli/core"
	"focus-cli/data"
	"focus-cli/errs"
	"focus-cli/server"
)

// Runner encapsulates CLI execution. The zero value uses the real config
// directory, hosts file and lock path; tests override the fields.
type Runner struct {
	LoadConfig func() (config.Config, error)
	HostsFile  string
	LockPath   string
	Out        io.Writer
	Err        io.Writer
}

// Execute builds the cobra command tree and runs it with the provided args.
// Returns the process exit code (0 = success). Already-active and not-active
// are reported conditions, not failures.
func (r Runner) Execute(args []string) int {
	rootCmd := r.newRootCmd()

	rootCmd.AddCommand(
		r.newActivateCmd(),
		r.newDeactivateCmd(),
		r.newStatusCmd(),
		r.newRunCmd(),
		r.newInitCmd(),
		r.newVersionCmd(),
	)

	rootCmd.SetArgs(args)
	rootCmd.SetOut(r.stdout())
	rootCmd.SetErr(r.stderr())

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errs.ErrAlreadyActive) || errors.Is(err, errs.ErrNotActive) {
			fmt.Fprintln(r.stdout(), err.Error())
			return 0
		}
		fmt.Fprintf(r.stderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) stdout() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

func (r Runner) stderr() io.Writer {
	if r.Err != nil {
		return r.Err
	}
	return os.Stderr
}

// controller loads the configuration and assembles the focus controller.
// A missing or malformed config is fatal here, before any state is touched.
func (r Runner) controller() (*core.Controller, error) {
	load := r.LoadConfig
	if load == nil {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}

	hostsFile := r.HostsFile
	if hostsFile == "" {
		hostsFile = core.HostsPath()
	}
	lockPath := r.LockPath
	if lockPath == "" {
		lockPath = core.DefaultLockPath()
	}

	c := &core.Controller{
		Blocklist:  cfg.Blocklist,
		RedirectIP: cfg.RedirectIP,
		HostsFile:  hostsFile,
		Store:      core.NewStore(lockPath),
		Out:        r.stdout(),
	}
	if cfg.EnableServer {
		c.Responder = server.New(cfg.ServerPort, core.ExpandBlocklist(cfg.Blocklist))
	}
	return c, nil
}

// Root: prints usage when no subcommand is given; a command is required.
func (r Runner) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus-cli <command>",
		Short: "Block distracting domains for a focus session",
		Long: fmt.Sprintf(`focus-cli v%s - block distracting domains for a focus session

activate rewrites the hosts file so the configured blocklist (plus derived
TLD variants) resolves to the redirect address, and records the session start
time. deactivate undoes both. The blocklist lives in %s.

Writing the hosts file requires elevated privileges (sudo/Administrator).`,
			data.Version(), config.Dir()),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return fmt.Errorf("a command is required")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	return cmd
}

// activate subcommand
func (r Runner) newActivateCmd() *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Start a blocking session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := r.controller()
			if err != nil {
				return err
			}
			if !core.CheckRootPrivileges() {
				fmt.Fprintln(r.stderr(), "Warning: not running as root; writing the hosts file will likely fail")
			}
			if err := c.Activate(time.Now()); err != nil {
				return err
			}
			if follow {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return c.Run(ctx)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().BoolVar(&follow, "follow", false, "stay attached with a timer and deactivate on Ctrl+C")
	return cmd
}

// deactivate subcommand
func (r Runner) newDeactivateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "End the active session and restore the hosts file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := r.controller()
			if err != nil {
				return err
			}
			return c.Deactivate(time.Now())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	return cmd
}

// status subcommand
func (r Runner) newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is active and for how long",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c, err := r.controller()
			if err != nil {
				return err
			}
			st := c.Status(time.Now())
			if !st.Active {
				fmt.Fprintln(r.stdout(), "focus-cli is INACTIVE")
				return nil
			}
			fmt.Fprintln(r.stdout(), "focus-cli is ACTIVE")
			fmt.Fprintf(r.stdout(), "Duration: %s\n", core.FormatDuration(st.Duration))
			fmt.Fprintf(r.stdout(), "Blocking %d domains\n", st.Domains)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	return cmd
}

// run subcommand
func (r Runner) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Watch the active session; Ctrl+C deactivates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := r.controller()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.Run(ctx)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	return cmd
}

// init subcommand
func (r Runner) newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.Init()
			if err != nil {
				return err
			}
			fmt.Fprintf(r.stdout(), "✓ Config written to %s\n", path)
			fmt.Fprintln(r.stdout(), "Edit the blocklist, then run 'focus-cli activate'.")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	return cmd
}

// version subcommand
func (r Runner) newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(r.stdout(), "focus-cli v%s\n", data.Version())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	return cmd
}
