package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/moor-dev/moor/internal/agent"
	clierrors "github.com/moor-dev/moor/internal/errors"
	"github.com/moor-dev/moor/internal/output"
)

func newDockerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docker",
		Short: "Manage Docker containers on a host",
	}

	cmd.AddCommand(newDockerListCmd())
	cmd.AddCommand(newDockerActionCmd())

	return cmd
}

func newDockerListCmd() *cobra.Command {
	var (
		hostFlag string
		all      bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "ps"},
		Short:   "List containers",
		Long: `List the Docker containers on one host. Stopped containers are hidden
unless --all is given.`,
		Example: `  moor docker list --host pi
  moor docker list --host pi --all`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			host, c, err := newAgentClient(hostFlag)
			if err != nil {
				return err
			}

			sp := out.Spinner("Fetching containers from " + host.Name)
			sp.Start()

			containers, err := c.ListContainers(cmd.Context())
			if err != nil {
				sp.Stop()
				return err
			}

			sp.Stop()

			if !all {
				running := containers[:0]
				for _, ct := range containers {
					if ct.Running() {
						running = append(running, ct)
					}
				}
				containers = running
			}

			if out.JSON {
				return out.PrintJSON(containers)
			}

			if len(containers) == 0 {
				if all {
					out.Muted("%s", "No containers on "+host.Name+".")
				} else {
					out.Muted("%s", "No running containers on "+host.Name+". Use --all to include stopped ones.")
				}
				return nil
			}

			for _, ct := range containers {
				ports := ""
				if len(ct.Ports) > 0 {
					ports = "  " + strings.Join(ct.Ports, ", ")
				}

				if ct.Running() {
					out.Success("%-24s %-30s %s%s", ct.Name, ct.Image, ct.Status, ports)
				} else {
					out.Muted("%s %-24s %-30s %s", output.XMark, ct.Name, ct.Image, ct.Status)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&hostFlag, "host", "", "Host name (default from config)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include stopped containers")

	return cmd
}

func newDockerActionCmd() *cobra.Command {
	var hostFlag string

	supported := []string{
		string(agent.ActionStart), string(agent.ActionStop), string(agent.ActionRestart),
		string(agent.ActionPause), string(agent.ActionUnpause), string(agent.ActionKill),
	}

	cmd := &cobra.Command{
		Use:   "action <action> <container>",
		Short: "Apply a lifecycle action to a container",
		Long: `Apply one of the supported lifecycle actions to a container by name
or id: ` + strings.Join(supported, ", ") + `.`,
		Example: `  moor docker action restart web --host pi
  moor docker action stop db --host pi`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			action := agent.ContainerAction(strings.ToLower(args[0]))
			container := args[1]

			if !agent.ValidAction(action) {
				return clierrors.InvalidContainerAction(args[0], supported)
			}

			host, c, err := newAgentClient(hostFlag)
			if err != nil {
				return err
			}

			sp := out.Spinner(fmt.Sprintf("Applying %s to %s on %s", action, container, host.Name))
			sp.Start()

			if err := c.ApplyContainerAction(cmd.Context(), container, action); err != nil {
				sp.Stop()
				return clierrors.ContainerActionFailed(string(action), container, err)
			}

			sp.StopWithSuccess(fmt.Sprintf("%s %s", action, container))

			return nil
		},
	}

	cmd.Flags().StringVar(&hostFlag, "host", "", "Host name (default from config)")

	return cmd
}
