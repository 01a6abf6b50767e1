package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/gorustyt/crowdnav/common/logger"
	"github.com/gorustyt/crowdnav/config"
	"github.com/gorustyt/crowdnav/crowd"
	"github.com/gorustyt/crowdnav/navmesh"
	"github.com/gorustyt/crowdnav/trace"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func RunCmd() *cobra.Command {
	var (
		configFile string
		ticks      int
		traceDir   string
	)
	c := &cobra.Command{
		Use:   "run",
		Short: "spawn agents and simulate",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ticks") {
				cfg.Sim.Ticks = ticks
			}
			if traceDir != "" {
				cfg.Trace.Dir = traceDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			runID := uuid.NewString()
			log = log.With(zap.String("run", runID))

			mesh, err := meshFor(cfg.Sim)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			s, err := simulate(ctx, cfg, mesh, runID, log)
			if err != nil {
				return err
			}
			s.print(cmd.OutOrStdout())
			return nil
		},
	}
	c.Flags().StringVar(&configFile, "config", "", "config file, defaults when empty")
	c.Flags().IntVar(&ticks, "ticks", 0, "override sim.ticks, 0 runs until interrupted")
	c.Flags().StringVar(&traceDir, "trace-dir", "", "override trace.dir")
	return c
}

func meshFor(sim config.Sim) (*navmesh.NavMesh, error) {
	if sim.Mesh == "" {
		return defaultGrid.build(sim.MeshCellSize)
	}
	return loadMesh(sim.Mesh, sim.MeshCellSize)
}

type summary struct {
	Ticks     int64
	Agents    int32
	States    map[crowd.AgentState]int
	WallHits  int
	MeanStuck float32
	Elapsed   time.Duration
	TracePath string
}

func summarize(c *crowd.Crowd) summary {
	a := c.Agents()
	s := summary{Ticks: c.Frame(), States: map[crowd.AgentState]int{}}
	for i := int32(0); i < a.Count(); i++ {
		if !a.Alive[i] {
			continue
		}
		s.Agents++
		s.States[a.States[i]]++
		if a.WallContacts[i] {
			s.WallHits++
		}
		s.MeanStuck += a.StuckRatings[i]
	}
	if s.Agents > 0 {
		s.MeanStuck /= float32(s.Agents)
	}
	return s
}

func (s summary) print(w io.Writer) {
	fmt.Fprintf(w, "ticks %d, agents %d (standing %d, traveling %d, escaping %d), wall contacts %d, mean stuck %.2f, %v\n",
		s.Ticks, s.Agents, s.States[crowd.Standing], s.States[crowd.Traveling], s.States[crowd.Escaping],
		s.WallHits, s.MeanStuck, s.Elapsed.Round(time.Millisecond))
	if s.TracePath != "" {
		fmt.Fprintf(w, "trace %s\n", s.TracePath)
	}
}

// simulate runs cfg.Sim.Ticks ticks, or until ctx is done when Ticks is 0.
func simulate(ctx context.Context, cfg config.Config, mesh *navmesh.NavMesh, runID string, log *zap.Logger) (s summary, err error) {
	log = logger.OrNop(log)
	c := crowd.New(mesh, cfg.Sim.Capacity, cfg.Crowd, cfg.Sim.Seed, log)
	ids := c.SpawnRandom(cfg.Sim.Agents)
	log.Info("crowd ready",
		zap.Int("agents", len(ids)), zap.Int32("capacity", cfg.Sim.Capacity),
		zap.Int32("triangles", mesh.TriangleCount()), zap.Int32("polygons", mesh.PolygonCount()),
		zap.Uint64("seed", cfg.Sim.Seed))

	var tw *trace.Writer
	if cfg.Trace.Dir != "" {
		tw, err = trace.Create(cfg.Trace.Dir, trace.Header{
			RunID:    runID,
			Seed:     cfg.Sim.Seed,
			Mesh:     cfg.Sim.Mesh,
			Capacity: cfg.Sim.Capacity,
			Dt:       cfg.Sim.Dt,
		})
		if err != nil {
			return s, fmt.Errorf("trace: %w", err)
		}
		defer func() {
			if cerr := tw.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("trace: %w", cerr)
			}
		}()
	}

	start := time.Now()
	a := c.Agents()
loop:
	for tick := 0; cfg.Sim.Ticks == 0 || tick < cfg.Sim.Ticks; tick++ {
		select {
		case <-ctx.Done():
			log.Warn("interrupted", zap.Int64("frame", c.Frame()))
			break loop
		default:
		}
		c.Update(cfg.Sim.Dt, a.Count())
		if tw != nil && tick%cfg.Trace.Every == 0 {
			if err := tw.WriteTick(c.Frame(), a, a.Count()); err != nil {
				return s, fmt.Errorf("trace: %w", err)
			}
		}
	}

	s = summarize(c)
	s.Elapsed = time.Since(start)
	if tw != nil {
		s.TracePath = tw.Path()
	}
	log.Info("simulation done",
		zap.Int64("ticks", s.Ticks), zap.Int32("agents", s.Agents),
		zap.Int("traveling", s.States[crowd.Traveling]), zap.Int("escaping", s.States[crowd.Escaping]),
		zap.Float32("meanStuck", s.MeanStuck), zap.Duration("elapsed", s.Elapsed))
	return s, nil
}
