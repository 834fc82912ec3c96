package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/viewer"
	golog "github.com/tochemey/goakt/v3/log"
)

func main() {
	configFile := flag.String("config", "", "JSON or TOML configuration file; built-in museum flocks when empty")
	flag.Parse()

	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(*configFile, ""); err != nil {
			log.Fatal(err)
		}
	}

	// Every flock updates in this goroutine, one tick per frame.
	aquarium, err := simulation.NewAquariumFromConfig(cfg, golog.DefaultLogger)
	if err != nil {
		log.Fatal(err)
	}
	defer aquarium.RemoveFlocks()

	ebiten.SetWindowSize(cfg.ScreenWidth, cfg.ScreenHeight)
	ebiten.SetWindowTitle("Boids 3D (top view)")
	ebiten.SetTPS(cfg.TickRate)
	if err := ebiten.RunGame(viewer.NewGame(aquarium, cfg)); err != nil {
		log.Fatal(err)
	}
}
