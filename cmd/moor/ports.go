package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/moor-dev/moor/internal/agent"
	clierrors "github.com/moor-dev/moor/internal/errors"
	"github.com/moor-dev/moor/internal/output"
	"github.com/moor-dev/moor/internal/prompt"
)

func newPortsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports",
		Short: "Inspect listening ports on a host",
	}

	cmd.AddCommand(newPortsListCmd())
	cmd.AddCommand(newPortsKillCmd())

	return cmd
}

func newPortsListCmd() *cobra.Command {
	var hostFlag string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List listening ports",
		Long:    `List the listening ports on one host with their owning processes.`,
		Example: `  moor ports list --host pi`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			host, c, err := newAgentClient(hostFlag)
			if err != nil {
				return err
			}

			sp := out.Spinner("Fetching ports from " + host.Name)
			sp.Start()

			ports, err := c.ListPorts(cmd.Context())
			if err != nil {
				sp.Stop()
				return err
			}

			sp.Stop()

			if out.JSON {
				return out.PrintJSON(ports)
			}

			if len(ports) == 0 {
				out.Muted("%s", "No listening ports reported by "+host.Name+".")
				return nil
			}

			sort.Slice(ports, func(i, j int) bool { return ports[i].Port < ports[j].Port })

			for _, p := range ports {
				proto := p.Proto
				if proto == "" {
					proto = "tcp"
				}
				out.Print("%5d/%-4s pid %-8d %s\n", p.Port, proto, p.PID, p.Process)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&hostFlag, "host", "", "Host name (default from config)")

	return cmd
}

func newPortsKillCmd() *cobra.Command {
	var (
		hostFlag string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "kill <port...>",
		Short: "Kill the processes listening on ports",
		Long: `Look up the processes listening on the given ports and ask the agent
to terminate them. Prompts for confirmation unless --yes is given.`,
		Example: `  moor ports kill 3000 --host pi
  moor ports kill 3000 8080 --host pi --yes`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			wanted := make(map[int]bool, len(args))
			for _, arg := range args {
				port, err := strconv.Atoi(arg)
				if err != nil || port < 1 || port > 65535 {
					return clierrors.New(clierrors.ExitUsage, fmt.Sprintf("Invalid port %q", arg))
				}
				wanted[port] = true
			}

			host, c, err := newAgentClient(hostFlag)
			if err != nil {
				return err
			}

			ports, err := c.ListPorts(cmd.Context())
			if err != nil {
				return err
			}

			var (
				pids    []int
				matched []agent.Port
			)

			seen := make(map[int]bool)
			for _, p := range ports {
				if wanted[p.Port] && !seen[p.PID] {
					seen[p.PID] = true
					pids = append(pids, p.PID)
					matched = append(matched, p)
				}
			}

			if len(pids) == 0 {
				out.Muted("Nothing is listening on the requested port(s).")
				return nil
			}

			for _, p := range matched {
				out.Print("  %5d  pid %-8d %s\n", p.Port, p.PID, p.Process)
			}

			if !yes {
				p := prompt.New(out)
				if !p.CanPrompt() {
					return clierrors.New(clierrors.ExitUsage, "Refusing to kill processes without confirmation").
						WithHint("Re-run with --yes in non-interactive environments")
				}

				ok, err := p.Confirm(fmt.Sprintf("Kill %d process(es) on %s?", len(pids), host.Name), false)
				if err != nil {
					if prompt.IsCanceled(err) {
						out.Muted("Canceled.")
						return nil
					}
					return err
				}

				if !ok {
					out.Muted("Canceled.")
					return nil
				}
			}

			if err := c.KillPorts(cmd.Context(), pids); err != nil {
				return clierrors.Wrap(clierrors.ExitAgent, "Agent failed to kill the processes", err)
			}

			out.Success("Killed %d process(es) on %s", len(pids), host.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&hostFlag, "host", "", "Host name (default from config)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
