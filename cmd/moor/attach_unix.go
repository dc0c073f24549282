//go:build darwin || linux

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/moor-dev/moor/internal/agent"
	"github.com/moor-dev/moor/internal/ansi"
	"github.com/moor-dev/moor/internal/config"
	clierrors "github.com/moor-dev/moor/internal/errors"
	"github.com/moor-dev/moor/internal/negotiate"
	"github.com/moor-dev/moor/internal/observability"
	"github.com/moor-dev/moor/internal/output"
	"github.com/moor-dev/moor/internal/terminal"
)

// detachKey ends the attach loop locally (Ctrl-]).
const detachKey = 0x1d

// termEngine is the renderer side of the grid negotiation for a real
// terminal. The terminal has no font metrics to consult: one cell maps to
// one pixel, so the measured container and the proposed grid are the same
// numbers and confirmation commits the grid to the agent.
type termEngine struct {
	ctx     context.Context
	client  *agent.Client
	session string
	log     *slog.Logger

	// proposals feeds measurements back to the attach loop, which owns the
	// negotiator. Buffered so RequestFit never blocks; a dropped proposal
	// is re-generated by the next fit request.
	proposals chan negotiate.Proposal
}

func (e *termEngine) RequestFit() {
	size, ok := measureTerminal()
	if !ok {
		return
	}

	select {
	case e.proposals <- negotiate.Proposal{
		Container: size,
		Grid:      negotiate.Grid{Cols: int(size.Width), Rows: int(size.Height)},
	}:
	default:
	}
}

func (e *termEngine) Confirm(g negotiate.Grid) {
	if err := e.client.ResizeSession(e.ctx, e.session, g.Cols, g.Rows); err != nil {
		e.log.Warn("session resize rejected",
			slog.String("session", e.session),
			slog.Int("cols", g.Cols),
			slog.Int("rows", g.Rows),
			slog.String("error", err.Error()))
	}
}

func measureTerminal() (negotiate.Size, bool) {
	cols, rows, ok := terminal.Measure()
	if !ok {
		return negotiate.Size{}, false
	}

	return negotiate.Size{Width: float64(cols), Height: float64(rows)}, true
}

// restoreScreen undoes terminal state the remote session may have left
// behind: a dangling SGR run or a hidden cursor survives raw-mode restore.
func restoreScreen() {
	fmt.Fprint(os.Stdout, ansi.Reset+ansi.ShowCursor)
}

// runAttach streams a remote session into the current terminal.
func runAttach(ctx context.Context, out *output.Writer, host config.Host, c *agent.Client, session string) error {
	log := observability.FromContext(ctx)

	if !terminal.StdinIsTTY() {
		return clierrors.New(clierrors.ExitUsage, "Attach requires an interactive terminal")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, err := c.StreamSession(ctx, session)
	if err != nil {
		return clierrors.AttachFailed(host.Name, session, err)
	}
	defer stream.Close()

	// Raw mode only after the stream is up, so connection errors print
	// on a sane terminal.
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return clierrors.Wrap(clierrors.ExitGeneral, "Failed to enter raw mode", err)
	}
	defer func() {
		_ = term.Restore(int(os.Stdin.Fd()), oldState)
		restoreScreen()
		out.Println()
	}()

	engine := &termEngine{
		ctx:       ctx,
		client:    c,
		session:   session,
		log:       log,
		proposals: make(chan negotiate.Proposal, 1),
	}
	neg := negotiate.New(engine, negotiate.Config{})

	if size, ok := measureTerminal(); ok {
		neg.LoadComplete(size)
	}

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)
	defer signal.Stop(winch)

	streamDone := make(chan error, 1)
	go func() {
		_, copyErr := io.Copy(os.Stdout, stream)
		streamDone <- copyErr
	}()

	inputDone := make(chan error, 1)
	go forwardInput(ctx, c, session, inputDone)

	log.Info("attached",
		slog.String("host", host.Name),
		slog.String("session", session))

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-winch:
			if size, ok := measureTerminal(); ok {
				neg.Observe(size)
			}

		case p := <-engine.proposals:
			neg.HandleProposal(p)

		case err := <-streamDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				return clierrors.AttachFailed(host.Name, session, err)
			}

			return nil

		case err := <-inputDone:
			// User detached or stdin closed; the stream is torn down by
			// the deferred cancel.
			if err != nil {
				return clierrors.AttachFailed(host.Name, session, err)
			}

			return nil
		}
	}
}

// forwardInput copies stdin to the session until the detach key or EOF.
func forwardInput(ctx context.Context, c *agent.Client, session string, done chan<- error) {
	buf := make([]byte, 1024)

	for {
		n, err := os.Stdin.Read(buf)
		if n > 0 {
			data := buf[:n]

			for i, b := range data {
				if b == detachKey {
					if i > 0 {
						_ = c.SendInput(ctx, session, string(data[:i]))
					}
					done <- nil

					return
				}
			}

			if sendErr := c.SendInput(ctx, session, string(data)); sendErr != nil {
				if ctx.Err() == nil {
					done <- sendErr
				} else {
					done <- nil
				}

				return
			}
		}

		if err != nil {
			done <- nil
			return
		}
	}
}

// runLocalAttach execs the local tmux under a pty, mirroring the terminal
// size into it so panes lay out correctly.
func runLocalAttach(ctx context.Context, out *output.Writer, session string) error {
	if _, err := exec.LookPath("tmux"); err != nil {
		return clierrors.TmuxNotFound()
	}

	cmd := exec.CommandContext(ctx, "tmux", "attach-session", "-t", session)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return clierrors.Wrap(clierrors.ExitGeneral, "Failed to start tmux", err)
	}
	defer func() { _ = ptmx.Close() }()

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, unix.SIGWINCH)
	defer signal.Stop(winch)

	go func() {
		for range winch {
			_ = pty.InheritSize(os.Stdin, ptmx)
		}
	}()
	winch <- unix.SIGWINCH // initial size

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return clierrors.Wrap(clierrors.ExitGeneral, "Failed to enter raw mode", err)
	}
	defer func() {
		_ = term.Restore(int(os.Stdin.Fd()), oldState)
		restoreScreen()
		out.Println()
	}()

	go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
	_, _ = io.Copy(os.Stdout, ptmx)

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return clierrors.New(clierrors.ExitGeneral, "tmux exited with an error").
				WithHint("Check that the session exists with 'tmux ls'")
		}

		return err
	}

	return nil
}
