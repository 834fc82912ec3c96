package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/scene"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	systemName    = "BoidsWorld"
	worldName     = "world"
	snapshotQueue = 10 // Buffer to avoid blocking the world
	askTimeout    = 2 * time.Second
)

// World runs the flocks as actors. It is meant to be driven from a single
// goroutine, usually the game loop.
type World struct {
	ctx        context.Context
	system     actor.ActorSystem
	pid        *actor.PID
	snapshotCh chan *Snapshot
	latest     *Snapshot
	scene      *scene.Scene
	settings   behavior.Settings
	logger     golog.Logger
	stopped    bool
}

// StartWorld starts the actor system and spawns the world with one child
// actor per configured flock.
func StartWorld(ctx context.Context, cfg *Config, logger golog.Logger) (*World, error) {
	if logger == nil {
		logger = golog.DiscardLogger
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sc, err := NewScene(cfg.Obstacles)
	if err != nil {
		return nil, err
	}

	system, err := actor.NewActorSystem(systemName,
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}

	snapshotCh := make(chan *Snapshot, snapshotQueue)
	pid, err := system.Spawn(ctx, worldName, NewWorldActor(snapshotCh, cfg, sc))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	return &World{
		ctx:        ctx,
		system:     system,
		pid:        pid,
		snapshotCh: snapshotCh,
		latest:     &Snapshot{},
		scene:      sc,
		settings:   cfg.Settings,
		logger:     logger,
	}, nil
}

// Step asks every flock to advance by dt seconds. It does not wait for them.
func (w *World) Step(dt float64) error {
	if w.stopped {
		return ErrWorldStopped
	}
	return actor.Tell(w.ctx, w.pid, NewTick(dt))
}

// Update is Step for callers that cannot handle errors, such as the viewer.
func (w *World) Update(dt float64) {
	if err := w.Step(dt); err != nil {
		w.logger.Warnf("step: %v", err)
	}
}

// Latest returns the newest snapshot published by the world, without blocking.
func (w *World) Latest() *Snapshot {
	for {
		select {
		case snap := <-w.snapshotCh:
			w.latest = snap
		default:
			return w.latest
		}
	}
}

// Snapshot is Latest, so World and Aquarium can be drawn the same way.
func (w *World) Snapshot() *Snapshot { return w.Latest() }

// Snapshots exposes the snapshot channel for callers that want to wait.
func (w *World) Snapshots() <-chan *Snapshot { return w.snapshotCh }

// Query asks the world for its current state and waits for the answer.
func (w *World) Query(ctx context.Context) (*Snapshot, error) {
	if w.stopped {
		return nil, ErrWorldStopped
	}
	reply, err := actor.Ask(ctx, w.pid, &emptypb.Empty{}, askTimeout)
	if err != nil {
		return nil, fmt.Errorf("query world: %w", err)
	}
	st, ok := reply.(*structpb.Struct)
	if !ok {
		return nil, fmt.Errorf("query world: %w: %T", ErrMalformedMessage, reply)
	}
	return SnapshotFromProto(st)
}

// ApplySettings broadcasts s to every flock.
func (w *World) ApplySettings(s behavior.Settings) {
	if w.stopped {
		return
	}
	msg, err := SettingsToProto(s)
	if err != nil {
		w.logger.Errorf("apply settings: %v", err)
		return
	}
	if err := actor.Tell(w.ctx, w.pid, msg); err != nil {
		w.logger.Warnf("apply settings: %v", err)
		return
	}
	w.settings = s
}

// TuneSettings sends p to every flock, which changes only its keys. A flock
// that rejects p logs it and keeps its settings.
func (w *World) TuneSettings(p SettingsPatch) error {
	if w.stopped {
		return ErrWorldStopped
	}
	next := w.settings
	if err := p.Apply(&next); err != nil {
		return err
	}
	msg, err := p.ToProto()
	if err != nil {
		return err
	}
	if err := actor.Tell(w.ctx, w.pid, msg); err != nil {
		return fmt.Errorf("tune settings: %w", err)
	}
	w.settings = next
	return nil
}

func (w *World) Settings() behavior.Settings { return w.settings }

func (w *World) Scene() *scene.Scene { return w.scene }

// Stop shuts the actor system down, destroying every flock.
func (w *World) Stop(ctx context.Context) error {
	if w.stopped {
		return nil
	}
	w.stopped = true
	return w.system.Stop(ctx)
}
