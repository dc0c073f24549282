package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/moor-dev/moor/internal/config"
	clierrors "github.com/moor-dev/moor/internal/errors"
	"github.com/moor-dev/moor/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long: `View and edit Moor's configuration file.

Available keys:
  default_host     Host used when a command omits the host argument
  poll.interval    Status poll interval in seconds (default 10)
  preview.lines    Pane preview lines in session listings (default 8)`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all configuration values",
		Long: `Show every configuration value, including defaults for keys that have
not been set explicitly.`,
		Example: `  moor config list
  moor config list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()

			all := cfg.All()

			if out.JSON {
				return out.PrintJSON(all)
			}

			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			for _, k := range keys {
				out.Print("%s = %v\n", k, all[k])
			}

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Get a configuration value",
		Long:    `Print the current value of a single configuration key.`,
		Example: `  moor config get default_host`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()

			value := cfg.Get(args[0])
			if value == nil {
				return clierrors.New(clierrors.ExitUsage, fmt.Sprintf("Unknown configuration key %q", args[0])).
					WithHint("Run 'moor config list' to see available keys")
			}

			if out.JSON {
				return out.PrintJSON(map[string]interface{}{args[0]: value})
			}

			out.Print("%v\n", value)

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value and persist it to the config file. Setting
default_host validates that the host exists in the inventory.`,
		Example: `  moor config set default_host pi
  moor config set poll.interval 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key, value := args[0], args[1]

			// default_host must name a configured host, or clearing it is fine.
			if key == "default_host" && value != "" {
				inv, err := config.LoadInventory()
				if err != nil {
					return clierrors.ConfigFailed("read host inventory", err)
				}

				if _, ok := inv.Get(value); !ok {
					return clierrors.HostNotFound(value)
				}
			}

			cfg := config.Load()
			if err := cfg.Set(key, value); err != nil {
				return clierrors.ConfigFailed("write config", err)
			}

			out.Success("Set %s = %s", key, value)

			return nil
		},
	}
}
