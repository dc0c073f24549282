package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moor-dev/moor/internal/agent"
	"github.com/moor-dev/moor/internal/auth"
	"github.com/moor-dev/moor/internal/config"
	clierrors "github.com/moor-dev/moor/internal/errors"
	"github.com/moor-dev/moor/internal/output"
)

func newHostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hosts",
		Short: "Manage the agent host inventory",
		Long: `Add, list, probe, and remove the agent hosts Moor talks to.
The inventory lives in hosts.yaml under the config directory.`,
	}

	cmd.AddCommand(newHostsAddCmd())
	cmd.AddCommand(newHostsListCmd())
	cmd.AddCommand(newHostsRemoveCmd())
	cmd.AddCommand(newHostsProbeCmd())

	return cmd
}

func newHostsAddCmd() *cobra.Command {
	var (
		port int
		tls  bool
	)

	cmd := &cobra.Command{
		Use:   "add <name> <address>",
		Short: "Add a host to the inventory",
		Long: `Add an agent host to the inventory, or update it if the name already
exists. The address can be an IP or a DNS name.`,
		Example: `  moor hosts add pi 192.168.1.20
  moor hosts add build build.example.com --port 9022 --tls`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			name, address := args[0], args[1]
			if strings.ContainsAny(name, " /") {
				return clierrors.New(clierrors.ExitUsage, fmt.Sprintf("Invalid host name %q", name)).
					WithHint("Host names cannot contain spaces or slashes")
			}

			inv, err := config.LoadInventory()
			if err != nil {
				return clierrors.ConfigFailed("read host inventory", err)
			}

			_, existed := inv.Get(name)

			inv.Add(config.Host{
				Name:    name,
				Address: address,
				Port:    port,
				TLS:     tls,
			})

			if err := inv.Save(); err != nil {
				return clierrors.ConfigFailed("save host inventory", err)
			}

			host, _ := inv.Get(name)

			if existed {
				out.Success("Updated host %s (%s)", name, host.BaseURL())
			} else {
				out.Success("Added host %s (%s)", name, host.BaseURL())
				out.Info("Run 'moor auth login %s' to store its agent token", name)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, fmt.Sprintf("Agent port (default %d)", config.DefaultAgentPort))
	cmd.Flags().BoolVar(&tls, "tls", false, "Connect over HTTPS")

	return cmd
}

// hostEntryJSON is one inventory row for JSON output.
type hostEntryJSON struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Default bool   `json:"default,omitempty"`
}

func newHostsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured hosts",
		Long: `List the hosts in the inventory with their agent URLs. The configured
default host is marked with an asterisk.`,
		Example: `  moor hosts list
  moor hosts list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			hosts, err := inventoryHosts()
			if err != nil {
				return err
			}

			defaultHost := config.Load().DefaultHost()

			if out.JSON {
				entries := make([]hostEntryJSON, 0, len(hosts))
				for _, h := range hosts {
					entries = append(entries, hostEntryJSON{
						Name:    h.Name,
						URL:     h.BaseURL(),
						Default: h.Name == defaultHost,
					})
				}

				return out.PrintJSON(entries)
			}

			if len(hosts) == 0 {
				out.Muted("No hosts configured. Run 'moor hosts add <name> <address>' first.")
				return nil
			}

			for _, h := range hosts {
				marker := " "
				if h.Name == defaultHost {
					marker = "*"
				}
				out.Print("%s %-20s %s\n", marker, h.Name, h.BaseURL())
			}

			if defaultHost != "" {
				out.Println()
				out.Muted("* default host")
			}

			return nil
		},
	}
}

func newHostsRemoveCmd() *cobra.Command {
	var keepToken bool

	cmd := &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a host from the inventory",
		Long: `Remove a host from the inventory and delete its stored token unless
--keep-token is given.`,
		Example: `  moor hosts remove pi`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			name := args[0]

			inv, err := config.LoadInventory()
			if err != nil {
				return clierrors.ConfigFailed("read host inventory", err)
			}

			if !inv.Remove(name) {
				return clierrors.HostNotFound(name)
			}

			if err := inv.Save(); err != nil {
				return clierrors.ConfigFailed("save host inventory", err)
			}

			if !keepToken {
				// Best effort; the token may never have been stored.
				_ = auth.DeleteToken(name)
			}

			out.Success("Removed host %s", name)

			return nil
		},
	}

	cmd.Flags().BoolVar(&keepToken, "keep-token", false, "Leave the stored token in place")

	return cmd
}

// probeResultJSON is one probe outcome for JSON output.
type probeResultJSON struct {
	Host    string `json:"host"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Tmux    string `json:"tmuxVersion,omitempty"`
}

func newHostsProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe [host]",
		Short: "Check whether agents are reachable",
		Long: `Probe each configured host's agent (or just the named host) and
report reachability without failing the command. The exit code is zero
even when hosts are down; use --json and inspect the statuses to script
against the result.`,
		Example: `  moor hosts probe
  moor hosts probe pi`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			var hosts []config.Host
			if len(args) == 1 {
				host, err := resolveHost(args[0])
				if err != nil {
					return err
				}
				hosts = []config.Host{host}
			} else {
				var err error
				hosts, err = inventoryHosts()
				if err != nil {
					return err
				}
				if len(hosts) == 0 {
					return clierrors.NoHosts()
				}
			}

			sp := out.Spinner("Probing " + strconv.Itoa(len(hosts)) + " host(s)")
			sp.Start()

			results := make([]probeResultJSON, 0, len(hosts))

			for _, h := range hosts {
				_, token := auth.GetToken(h.Name)
				outcome := agent.ProbeAddress(cmd.Context(), h.BaseURL(), token, 0)

				r := probeResultJSON{
					Host:    h.Name,
					URL:     h.BaseURL(),
					Status:  string(outcome.Status),
					Message: outcome.Message,
				}
				if outcome.Health != nil {
					r.Tmux = outcome.Health.TmuxVersion
				}

				results = append(results, r)
			}

			sp.Stop()

			if out.JSON {
				return out.PrintJSON(results)
			}

			for _, r := range results {
				switch agent.ProbeStatus(r.Status) {
				case agent.ProbeOK:
					if r.Tmux != "" {
						out.Success("%-20s online (tmux %s)", r.Host, r.Tmux)
					} else {
						out.Success("%-20s online", r.Host)
					}
				case agent.ProbeUnauthorized:
					out.Warning("%-20s online, token rejected (run 'moor auth login %s')", r.Host, r.Host)
				case agent.ProbeNotFound, agent.ProbeInvalidResponse:
					out.Failure("%-20s %s is not a moor agent", r.Host, r.URL)
				default:
					out.Failure("%-20s unreachable", r.Host)
				}
			}

			return nil
		},
	}
}
