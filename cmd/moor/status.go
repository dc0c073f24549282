package main

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/moor-dev/moor/internal/agent"
	"github.com/moor-dev/moor/internal/ansi"
	"github.com/moor-dev/moor/internal/auth"
	"github.com/moor-dev/moor/internal/config"
	clierrors "github.com/moor-dev/moor/internal/errors"
	"github.com/moor-dev/moor/internal/livestate"
	"github.com/moor-dev/moor/internal/output"
)

func newStatusCmd() *cobra.Command {
	var (
		watch      bool
		interval   int
		noDocker   bool
		noSessions bool
	)

	cmd := &cobra.Command{
		Use:   "status [host...]",
		Short: "Show live state across hosts",
		Long: `Poll the configured hosts (or just the named ones) and show their
sessions, containers, and host metrics. With --watch the view refreshes
continuously until interrupted.`,
		Example: `  moor status
  moor status pi build
  moor status --watch
  moor status --watch --interval 5`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			hosts, err := selectHosts(args)
			if err != nil {
				return err
			}

			clients := make(map[string]livestate.HostClient, len(hosts))
			for _, h := range hosts {
				_, token := auth.GetToken(h.Name)
				clients[h.Name] = agent.New(h.BaseURL(), token)
			}

			cfg := config.Load()
			if interval <= 0 {
				interval = cfg.PollInterval()
			}

			agg := livestate.NewAggregator(livestate.Config{
				Clients: clients,
				Features: livestate.Features{
					Sessions: !noSessions,
					Host:     true,
					Docker:   !noDocker,
				},
				Interval:            time.Duration(interval) * time.Second,
				SessionPreviewLines: cfg.PreviewLines(),
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			agg.Enable(ctx)
			defer agg.Disable()

			if err := waitForFirstPoll(ctx, agg); err != nil {
				return err
			}

			if !watch {
				return renderStatus(out, agg, hosts)
			}

			// Watch mode: re-render on every tick until interrupted. The
			// cursor stays hidden between repaints so it does not flicker
			// across the screen.
			out.Print(ansi.HideCursor)
			defer out.Print(ansi.ShowCursor)

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

			for {
				out.ClearScreen()

				if err := renderStatus(out, agg, hosts); err != nil {
					return err
				}

				out.Println()
				out.Muted("Refreshing every %ds. Press Ctrl-C to exit.", interval)

				select {
				case <-ctx.Done():
					out.Println()
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh continuously")
	cmd.Flags().IntVar(&interval, "interval", 0, "Poll interval in seconds (default from config)")
	cmd.Flags().BoolVar(&noDocker, "no-docker", false, "Skip container listings")
	cmd.Flags().BoolVar(&noSessions, "no-sessions", false, "Skip session listings")

	return cmd
}

// selectHosts resolves positional host names, or the whole inventory when
// none are given.
func selectHosts(names []string) ([]config.Host, error) {
	if len(names) == 0 {
		hosts, err := inventoryHosts()
		if err != nil {
			return nil, err
		}

		if len(hosts) == 0 {
			return nil, clierrors.NoHosts()
		}

		return hosts, nil
	}

	hosts := make([]config.Host, 0, len(names))

	for _, name := range names {
		host, err := resolveHost(name)
		if err != nil {
			return nil, err
		}

		hosts = append(hosts, host)
	}

	return hosts, nil
}

// waitForFirstPoll blocks until every host has left the checking state, so
// one-shot output never shows a half-populated table. Bounded at 15s in case
// a host's probe hangs on a black-holed address.
func waitForFirstPoll(ctx context.Context, agg *livestate.Aggregator) error {
	deadline := time.After(15 * time.Second)

	for {
		settled := true
		for _, st := range agg.Snapshot() {
			if st.Status == livestate.StatusChecking {
				settled = false
				break
			}
		}

		if settled {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return nil
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// statusReport is the JSON shape of a status snapshot.
type statusReport struct {
	Hosts  map[string]livestate.HostState `json:"hosts"`
	Totals livestate.Totals               `json:"totals"`
}

func renderStatus(out *output.Writer, agg *livestate.Aggregator, hosts []config.Host) error {
	snapshot := agg.Snapshot()
	totals := agg.Totals()

	if out.JSON {
		return out.PrintJSON(statusReport{Hosts: snapshot, Totals: totals})
	}

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		st := snapshot[name]
		renderHost(out, name, st)
	}

	out.Println()
	out.Print("%d online, %d offline · %d sessions · %d/%d containers running\n",
		totals.HostsOnline, totals.HostsOffline, totals.Sessions,
		totals.ContainersRunning, totals.ContainersTotal)

	return nil
}

func renderHost(out *output.Writer, name string, st livestate.HostState) {
	switch st.Status {
	case livestate.StatusOnline:
		out.Success("%s", name)
	case livestate.StatusOffline:
		out.Failure("%s  (offline)", name)
		if st.Err != "" {
			out.Muted("    %s", st.Err)
		}
		return
	default:
		out.Info("%s  (checking)", name)
		return
	}

	if st.Err != "" {
		out.Warning("    partial data: %s", st.Err)
	}

	if info := st.HostInfo; info != nil {
		line := fmt.Sprintf("    up %s", formatUptime(info.UptimeSeconds))
		if len(info.LoadAvg) > 0 {
			line += fmt.Sprintf(" · load %.2f", info.LoadAvg[0])
		}
		if info.MemoryTotal > 0 {
			used := info.MemoryTotal - info.MemoryFree
			line += fmt.Sprintf(" · mem %d%%", used*100/info.MemoryTotal)
		}
		out.Muted("%s", line)
	}

	for _, s := range st.Sessions {
		attached := ""
		if s.Attached {
			attached = " (attached)"
		}
		out.Print("    session %-20s %d window(s)%s\n", s.Name, s.Windows, attached)

		if len(s.Preview) > 0 {
			pr := out.PreviewRenderer()
			for _, line := range s.Preview {
				pr.Line(line)
			}
		}
	}

	running := 0
	for _, c := range st.Docker {
		if c.Running() {
			running++
		}
	}
	if len(st.Docker) > 0 {
		out.Print("    docker  %d/%d running\n", running, len(st.Docker))
	}
}

// formatUptime renders seconds as a compact "3d 4h" style duration.
func formatUptime(seconds int64) string {
	d := time.Duration(seconds) * time.Second

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
