package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"focus-cli/data"
	"focus-cli/errs"
	"focus-cli/logging"
)

// How long Deactivate waits for the responder to release its port.
const responderStopTimeout = 5 * time.Second

// Responder is the optional local HTTP listener started while a session is
// active. Start failures are downgraded to warnings by the controller; Stop
// must release the port before returning.
type Responder interface {
	Start() error
	Stop(ctx context.Context) error
}

// Controller orchestrates the domain expander, the hosts-section editor and
// the session store into the activate/deactivate/status/run state machine.
// It is the only component that touches the live hosts file.
type Controller struct {
	Blocklist  []string
	RedirectIP string
	HostsFile  string
	Store      *Store
	Responder  Responder // nil disables the local responder
	Out        io.Writer // defaults to stdout
}

func (c *Controller) out() io.Writer {
	if c.Out != nil {
		return c.Out
	}
	return os.Stdout
}

// Activate starts a blocking session. The lock file is written before the
// hosts file on purpose: a crash between the two leaves the session recorded
// as active with the blocklist not yet applied, a window status and
// deactivate both tolerate. A rejected hosts write is fatal and leaves the
// lock file in place so the partial state stays observable.
func (c *Controller) Activate(now time.Time) error {
	if c.Store.IsActive() {
		fmt.Fprintf(c.out(), "focus-cli is already active (running for %s)\n",
			FormatDuration(c.Store.Duration(now)))
		return nil
	}

	domains := ExpandBlocklist(c.Blocklist)

	if err := c.Store.Start(now); err != nil {
		return err
	}

	lines, err := ReadHostsLines(c.HostsFile)
	if err != nil {
		return c.hostsErr("read", err)
	}
	if err := WriteHostsLines(c.HostsFile, AddSection(lines, domains, c.RedirectIP)); err != nil {
		return c.hostsErr("write", err)
	}

	if c.Responder != nil {
		if err := c.Responder.Start(); err != nil {
			logging.Warn("local responder failed to start; continuing without it",
				map[string]any{"error": err.Error()})
		}
	}

	fmt.Fprintf(c.out(), "✓ focus-cli activated, blocking %d domains\n", len(domains))
	return nil
}

// Deactivate ends the active session, undoing activation in reverse order:
// responder first, then the hosts section, then the lock file. Deactivating
// when nothing is active reports and does nothing.
func (c *Controller) Deactivate(now time.Time) error {
	if !c.Store.IsActive() {
		fmt.Fprintln(c.out(), "focus-cli is not active")
		return nil
	}

	fmt.Fprintf(c.out(), "Deactivating focus-cli (was active for %s)...\n",
		FormatDuration(c.Store.Duration(now)))

	if c.Responder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), responderStopTimeout)
		defer cancel()
		if err := c.Responder.Stop(ctx); err != nil {
			logging.Warn("local responder did not stop cleanly",
				map[string]any{"error": err.Error()})
		}
	}

	lines, err := ReadHostsLines(c.HostsFile)
	if err != nil {
		return c.hostsErr("read", err)
	}
	if err := WriteHostsLines(c.HostsFile, RemoveSection(lines)); err != nil {
		return c.hostsErr("write", err)
	}

	if err := c.Store.End(); err != nil {
		return err
	}

	fmt.Fprintln(c.out(), "✓ focus-cli deactivated")
	return nil
}

// Status reports the current session state. On an active session with an
// unparseable lock timestamp, Duration stays zero and StartedAt stays unset.
func (c *Controller) Status(now time.Time) data.Status {
	st := data.Status{Active: c.Store.IsActive()}
	if !st.Active {
		return st
	}
	st.Duration = c.Store.Duration(now)
	st.Domains = len(ExpandBlocklist(c.Blocklist))
	if t, ok := c.Store.StartTime(); ok {
		st.StartedAt = t
	}
	return st
}

// Run blocks while a session is active, reporting elapsed time once per
// second. Cancelling ctx (Ctrl+C via signal.NotifyContext, a timeout, or an
// explicit cancel) triggers exactly one deactivation before Run returns.
// Running with no active session reports and returns immediately.
func (c *Controller) Run(ctx context.Context) error {
	if !c.Store.IsActive() {
		fmt.Fprintln(c.out(), "focus-cli is not active. Use 'activate' first.")
		return nil
	}

	fmt.Fprintln(c.out(), "focus-cli is active. Press Ctrl+C to deactivate.")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out())
			return c.Deactivate(time.Now())
		case now := <-ticker.C:
			fmt.Fprintf(c.out(), "\rActive for: %s", FormatDuration(c.Store.Duration(now)))
		}
	}
}

func (c *Controller) hostsErr(op string, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return errs.ErrInsufficientPrivilege.WithMessagef(
			"%s %s: permission denied, re-run with sudo (the session lock is left in place)",
			op, c.HostsFile)
	}
	return fmt.Errorf("%s hosts file: %w", op, err)
}
