package main

import (
	"github.com/spf13/cobra"

	"github.com/moor-dev/moor/internal/agent"
	"github.com/moor-dev/moor/internal/config"
	clierrors "github.com/moor-dev/moor/internal/errors"
	"github.com/moor-dev/moor/internal/output"
	"github.com/moor-dev/moor/internal/prompt"
)

func newAttachCmd() *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "attach [host] [session]",
		Short: "Attach to a tmux session on a host",
		Long: `Attach the current terminal to a tmux session on an agent host. The
session's grid is negotiated against the local terminal size, keystrokes
are forwarded to the session, and output streams back until detach
(Ctrl-]) or the stream ends.

With --local the named session is attached through the local tmux binary
instead of the agent.`,
		Example: `  moor attach pi dev
  moor attach pi
  moor attach --local dev`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if local {
				session := ""
				if len(args) > 0 {
					session = args[len(args)-1]
				}
				if session == "" {
					return clierrors.New(clierrors.ExitUsage, "A session name is required with --local").
						WithHint("Run 'moor attach --local <session>'")
				}

				return runLocalAttach(cmd.Context(), out, session)
			}

			hostName := ""
			if len(args) > 0 {
				hostName = args[0]
			}

			if hostName == "" {
				picked, err := pickHost(out)
				if err != nil {
					return err
				}
				if picked == nil {
					return nil // canceled
				}
				hostName = picked.Name
			}

			host, c, err := newAgentClient(hostName)
			if err != nil {
				return err
			}

			session := ""
			if len(args) > 1 {
				session = args[1]
			}

			if session == "" {
				session, err = pickSession(cmd, c, out)
				if err != nil {
					return err
				}
				if session == "" {
					return nil // canceled
				}
			}

			return runAttach(cmd.Context(), out, host, c, session)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Attach via the local tmux binary")

	return cmd
}

// pickHost resolves the target host without an explicit name: the configured
// default, a sole inventory entry, or an interactive selection. Returns nil
// when the user cancels.
func pickHost(out *output.Writer) (*config.Host, error) {
	if host, err := resolveHost(""); err == nil {
		return &host, nil
	}

	hosts, err := inventoryHosts()
	if err != nil {
		return nil, err
	}

	if len(hosts) == 0 {
		return nil, clierrors.NoHosts()
	}

	p := prompt.New(out)
	if !p.CanPrompt() {
		return nil, clierrors.HostRequired()
	}

	host, err := prompt.SelectHost(hosts, nil, out)
	if err != nil {
		if prompt.IsCanceled(err) {
			out.Muted("Canceled.")
			return nil, nil
		}

		return nil, err
	}

	return host, nil
}

// pickSession lists the host's sessions and prompts for one. Returns an
// empty name when the user cancels.
func pickSession(cmd *cobra.Command, c *agent.Client, out *output.Writer) (string, error) {
	sessions, err := c.ListSessions(cmd.Context(), agent.SessionsOptions{})
	if err != nil {
		return "", err
	}

	if len(sessions) == 0 {
		return "", clierrors.New(clierrors.ExitAgent, "The host has no tmux sessions").
			WithHint("Start one on the host first, e.g. 'tmux new -s dev'")
	}

	if len(sessions) == 1 {
		return sessions[0].Name, nil
	}

	p := prompt.New(out)
	if !p.CanPrompt() {
		return "", clierrors.New(clierrors.ExitUsage, "Multiple sessions available; name one explicitly").
			WithHint("Run 'moor sessions' to list them")
	}

	names := make([]string, 0, len(sessions))
	for _, s := range sessions {
		names = append(names, s.Name)
	}

	name, err := prompt.SelectSession(names, out)
	if err != nil {
		if prompt.IsCanceled(err) {
			out.Muted("Canceled.")
			return "", nil
		}

		return "", err
	}

	return name, nil
}
