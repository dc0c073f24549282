package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/moor-dev/moor/internal/agent"
	"github.com/moor-dev/moor/internal/config"
	"github.com/moor-dev/moor/internal/output"
)

func newSessionsCmd() *cobra.Command {
	var (
		hostFlag string
		preview  bool
		lines    int
		insights bool
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List tmux sessions on a host",
		Long: `List the tmux sessions on one host, optionally with trailing pane
content (--preview) or usage analytics (--insights).`,
		Example: `  moor sessions
  moor sessions --host pi --preview
  moor sessions --host pi --insights`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			host, c, err := newAgentClient(hostFlag)
			if err != nil {
				return err
			}

			if preview && lines <= 0 {
				lines = config.Load().PreviewLines()
			}

			sp := out.Spinner("Fetching sessions from " + host.Name)
			sp.Start()

			sessions, err := c.ListSessions(cmd.Context(), agent.SessionsOptions{
				Preview:  preview,
				Lines:    lines,
				Insights: insights,
			})
			if err != nil {
				sp.Stop()
				return err
			}

			sp.Stop()

			if out.JSON {
				return out.PrintJSON(sessions)
			}

			if len(sessions) == 0 {
				out.Muted("%s", "No tmux sessions on "+host.Name+".")
				return nil
			}

			for _, s := range sessions {
				renderSession(out, s)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&hostFlag, "host", "", "Host name (default from config)")
	cmd.Flags().BoolVar(&preview, "preview", false, "Include trailing pane content")
	cmd.Flags().IntVar(&lines, "lines", 0, "Preview lines per session")
	cmd.Flags().BoolVar(&insights, "insights", false, "Include usage analytics (slower)")

	return cmd
}

func renderSession(out *output.Writer, s agent.Session) {
	attached := ""
	if s.Attached {
		attached = " (attached)"
	}

	out.Print("%s  %d window(s)%s\n", s.Name, s.Windows, attached)

	if s.Activity > 0 {
		out.Muted("  last activity %s", time.Unix(s.Activity, 0).Format("2006-01-02 15:04"))
	}

	if ins := s.Insights; ins != nil {
		if ins.Summary != "" {
			out.Muted("  %s", ins.Summary)
		}
		if ins.TokensUsed > 0 {
			out.Print("  %d tokens · $%.2f\n", ins.TokensUsed, ins.CostUSD)
		}
	}

	if len(s.Preview) > 0 {
		pr := out.PreviewRenderer()
		for _, line := range s.Preview {
			pr.Line(line)
		}
	}
}
