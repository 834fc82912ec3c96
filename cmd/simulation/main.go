package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/viewer"
	golog "github.com/tochemey/goakt/v3/log"
)

func main() {
	configFile := flag.String("config", "", "JSON or TOML configuration file; built-in museum flocks when empty")
	schemaFile := flag.String("schema", "", "JSON schema used to validate -config; embedded schema when empty")
	headless := flag.Int("headless", 0, "run this many ticks without a window, then print a summary")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile, *schemaFile); err != nil {
			log.Fatal(err)
		}
	}

	ctx := context.Background()
	world, err := simulation.StartWorld(ctx, cfg, golog.DefaultLogger)
	if err != nil {
		log.Fatal(err)
	}
	defer world.Stop(ctx)

	if *headless > 0 {
		if err := runHeadless(ctx, world, cfg, *headless); err != nil {
			log.Fatal(err)
		}
		return
	}

	ebiten.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
	ebiten.SetWindowTitle("Boids 3D: actor world")
	ebiten.SetTPS(cfg.TickRate)
	if err := ebiten.RunGame(viewer.NewGame(world, cfg)); err != nil {
		log.Fatal(err)
	}
}

// runHeadless steps the world ticks times, waits for the flocks to catch
// up and logs where every flock ended.
func runHeadless(ctx context.Context, world *simulation.World, cfg *simulation.Config, ticks int) error {
	dt := 1 / float64(cfg.TickRate)
	start := time.Now()
	for i := 0; i < ticks; i++ {
		if err := world.Step(dt); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(10 * time.Second)
	var snap *simulation.Snapshot
	for {
		var err error
		if snap, err = world.Query(ctx); err != nil {
			return err
		}
		if caughtUp(snap, uint64(ticks)) || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	log.Printf("%d ticks of %d boids in %s", snap.Tick, snap.Len(), time.Since(start))
	for _, f := range snap.Flocks {
		var farthest float64
		for _, a := range f.Agents {
			farthest = max(farthest, a.Position.DistanceTo(f.Center))
		}
		log.Printf("  %-14s tick %d, %3d boids, farthest %.2f from center (radius %.2f)",
			f.Name, f.Tick, len(f.Agents), farthest, f.Radius)
	}
	return nil
}

// caughtUp reports whether every flock has processed tick.
func caughtUp(snap *simulation.Snapshot, tick uint64) bool {
	for _, f := range snap.Flocks {
		if f.Tick < tick {
			return false
		}
	}
	return snap.Tick >= tick
}
