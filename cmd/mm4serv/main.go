// Command mm4serv runs one match of the simulation core: it loads
// config, waits for every team (and an optional observer/dashboard) to
// connect, then drives the turn loop to completion. Structured as a
// single cobra root with a "serve" subcommand, grounded on the pack's
// wingthing CLI (cobra root + subcommand + graceful shutdown via
// signal.NotifyContext), rather than the teacher's own flat main.go
// (which has no subcommands to imitate).
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mechmania/internal/config"
	"mechmania/internal/devview"
	"mechmania/internal/model"
	"mechmania/internal/serialize"
	"mechmania/internal/sim"
	"mechmania/internal/transport"
)

func main() {
	root := &cobra.Command{
		Use:   "mm4serv",
		Short: "mechmania match server",
		Long:  "Runs the authoritative simulation core: team/observer TCP protocol, physics, collisions, and the developer dashboard.",
	}
	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var configPath string
	var port int
	var numTeams int
	var devAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a match and block until it completes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			if port != 0 {
				cfg.Port = port
			}
			if numTeams != 0 {
				cfg.NumTeams = numTeams
			}

			runID := uuid.New().String()
			fmt.Printf("match run %s: starting on port %d\n", runID, cfg.Port)

			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
			if err != nil {
				return fmt.Errorf("listen on port %d: %w", cfg.Port, err)
			}
			defer lis.Close()

			dash := devview.NewServer(devAddr)
			go func() {
				if err := dash.Serve(); err != nil {
					fmt.Fprintln(os.Stderr, "dashboard server:", err)
				}
			}()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := sim.NewWorld(cfg)
			tr := &dashboardTransport{
				Server:   transport.NewServer(cfg, lis),
				dash:     dash,
				numTeams: cfg.NumTeams,
			}

			errCh := make(chan error, 1)
			go func() { errCh <- sim.RunMatch(w, tr) }()

			fmt.Printf("mm4serv listening on :%d (dashboard on %s)\n", cfg.Port, devAddr)

			select {
			case <-ctx.Done():
				return fmt.Errorf("interrupted")
			case err := <-errCh:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file overlaying the defaults")
	cmd.Flags().IntVar(&port, "port", 0, "team/observer listen port (overrides config)")
	cmd.Flags().IntVar(&numTeams, "numteams", 0, "number of teams to wait for (overrides config)")
	cmd.Flags().StringVar(&devAddr, "dev-addr", ":8090", "developer dashboard listen address")

	return cmd
}

// dashboardTransport wraps a transport.Server so every broadcast also
// feeds the read-only developer dashboard, without internal/sim or
// internal/transport needing to know the dashboard exists.
type dashboardTransport struct {
	*transport.Server
	dash     *devview.Server
	numTeams int
}

func (d *dashboardTransport) Broadcast(snapshot []byte) error {
	err := d.Server.Broadcast(snapshot)

	if decoded, _, decErr := serialize.UnpackWorld(snapshot, d.numTeams); decErr == nil {
		d.dash.Publish(toDevviewSnapshot(decoded))
	}
	return err
}

func toDevviewSnapshot(ws serialize.WorldSnapshot) devview.Snapshot {
	snap := devview.Snapshot{
		GameTime:  ws.GameTime,
		Announcer: ws.Announcer,
		Things:    make([]devview.ThingView, 0, len(ws.Things)),
		Teams:     make([]devview.TeamView, 0, len(ws.TeamOrders)),
	}
	for _, t := range ws.Things {
		view := devview.ThingView{
			ID:     t.ID,
			Kind:   t.Kind.String(),
			Name:   t.Name,
			TeamID: t.TeamID,
			X:      t.Pos.X,
			Y:      t.Pos.Y,
			Orient: t.Orient,
			Size:   t.Size,
		}
		if t.Kind == model.KindShip && t.Ship != nil {
			view.LaserReach = t.Ship.LaserReach
		}
		snap.Things = append(snap.Things, view)
	}
	for i, wallClock := range ws.TeamWallClocks {
		snap.Teams = append(snap.Teams, devview.TeamView{
			Number:    i,
			ThinkTime: wallClock,
		})
	}
	return snap
}
