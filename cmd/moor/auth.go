package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/moor-dev/moor/internal/agent"
	"github.com/moor-dev/moor/internal/auth"
	clierrors "github.com/moor-dev/moor/internal/errors"
	"github.com/moor-dev/moor/internal/output"
	"github.com/moor-dev/moor/internal/prompt"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage agent tokens",
		Long:  `Store, inspect, and remove the per-host tokens used to talk to agents.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "login [host]",
		Short: "Store the token for a host's agent",
		Long: `Prompt for an agent token, verify it against the host, and store it
in the system keyring (with a file fallback under the config directory).`,
		Example: `  moor auth login pi
  moor auth login pi --token "$AGENT_TOKEN"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			host, err := resolveHost(name)
			if err != nil {
				return err
			}

			token := tokenFlag
			if token == "" {
				p := prompt.New(out)
				if !p.CanPrompt() {
					return clierrors.CannotPrompt("MOOR_TOKEN")
				}

				token, err = p.Token(fmt.Sprintf("Agent token for %s", host.Name))
				if err != nil {
					if prompt.IsCanceled(err) {
						out.Muted("Canceled.")
						return nil
					}

					return err
				}
			}

			if token == "" {
				return clierrors.TokenEmpty()
			}

			// Verify before storing so a typo'd token never lands in the keyring.
			sp := out.Spinner(fmt.Sprintf("Verifying token with %s", host.Name))
			sp.Start()

			outcome := agent.ProbeAddress(cmd.Context(), host.BaseURL(), token, 0)

			switch outcome.Status {
			case agent.ProbeOK:
				sp.Stop()
			case agent.ProbeUnauthorized:
				sp.StopWithFailure("Agent rejected the token")
				return clierrors.AuthFailed(host.Name, nil)
			case agent.ProbeUnreachable:
				sp.StopWithWarning(fmt.Sprintf("Could not reach %s; storing token unverified", host.BaseURL()))
			default:
				sp.StopWithWarning(fmt.Sprintf("Unexpected agent response (%s); storing token unverified", outcome.Status))
			}

			if err := auth.StoreToken(host.Name, token); err != nil {
				return clierrors.Wrap(clierrors.ExitGeneral, "Failed to store token", err)
			}

			out.Success("Token stored for %s", host.Name)

			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "Token value (skips the interactive prompt)")

	return cmd
}

// authStatusEntry is one host's auth state for JSON output.
type authStatusEntry struct {
	Host   string `json:"host"`
	Source string `json:"source"`
	Valid  *bool  `json:"valid,omitempty"`
}

func newAuthStatusCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which hosts have tokens",
		Long: `Show, for each configured host, whether a token is stored and where it
came from. With --check each token is verified against its agent.`,
		Example: `  moor auth status
  moor auth status --check`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			hosts, err := inventoryHosts()
			if err != nil {
				return err
			}

			entries := make([]authStatusEntry, 0, len(hosts))

			for _, h := range hosts {
				source, token := auth.GetToken(h.Name)

				entry := authStatusEntry{Host: h.Name, Source: string(source)}
				if token == "" {
					entry.Source = "none"
				} else if check {
					outcome := agent.ProbeAddress(cmd.Context(), h.BaseURL(), token, 0)
					if outcome.Status == agent.ProbeOK || outcome.Status == agent.ProbeUnauthorized {
						valid := outcome.Status == agent.ProbeOK
						entry.Valid = &valid
					}
				}

				entries = append(entries, entry)
			}

			if out.JSON {
				return out.PrintJSON(entries)
			}

			if len(entries) == 0 {
				out.Muted("No hosts configured. Run 'moor hosts add <name> <address>' first.")
				return nil
			}

			for _, e := range entries {
				switch {
				case e.Source == "none":
					out.Warning("%-20s no token (run 'moor auth login %s')", e.Host, e.Host)
				case e.Valid != nil && !*e.Valid:
					out.Failure("%-20s token from %s rejected by agent", e.Host, e.Source)
				case e.Valid != nil:
					out.Success("%-20s token from %s (verified)", e.Host, e.Source)
				default:
					out.Success("%-20s token from %s", e.Host, e.Source)
				}
			}

			if os.Getenv(auth.EnvVarName) != "" {
				out.Println()
				out.Muted(auth.EnvVarName + " is set and overrides stored tokens for all hosts.")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Verify each token against its agent")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout <host>",
		Short: "Remove the stored token for a host",
		Long: `Delete the stored agent token for a host from the keyring and the file
fallback. The host itself stays in the inventory.`,
		Example: `  moor auth logout pi`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			host, err := resolveHost(args[0])
			if err != nil {
				return err
			}

			if err := auth.DeleteToken(host.Name); err != nil {
				return clierrors.Wrap(clierrors.ExitGeneral, "Failed to remove token", err)
			}

			out.Success("Token removed for %s", host.Name)

			if os.Getenv(auth.EnvVarName) != "" {
				out.Muted(auth.EnvVarName + " is still set in the environment.")
			}

			return nil
		},
	}
}
