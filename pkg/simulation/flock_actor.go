package simulation

import (
	"fmt"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// FlockActor owns one flock. Flocks never see each other, so every
// flock actor updates concurrently with the others.
type FlockActor struct {
	cfg        FlockConfig
	settings   behavior.Settings
	obstacles  behavior.ObstacleQuery
	directions []geometry.Vector3D
	rng        *rand.Rand

	flock *behavior.Flock
	tick  uint64
}

var _ actor.Actor = (*FlockActor)(nil)

// NewFlockActor creates the actor state. The flock itself is built in PreStart.
// obstacles is shared with other flock actors and must stay read-only.
func NewFlockActor(cfg FlockConfig, settings behavior.Settings, obstacles behavior.ObstacleQuery, directions []geometry.Vector3D, rng *rand.Rand) *FlockActor {
	if cfg.Settings != nil {
		settings = *cfg.Settings
	}
	return &FlockActor{
		cfg:        cfg,
		settings:   settings,
		obstacles:  obstacles,
		directions: directions,
		rng:        rng,
	}
}

func (f *FlockActor) PreStart(ctx *actor.Context) error {
	flock, err := behavior.NewFlock(f.cfg.Count, f.obstacles, f.cfg.Radius, f.cfg.Origin,
		behavior.WithSettings(f.settings),
		behavior.WithRand(f.rng),
		behavior.WithDirections(f.directions),
	)
	if err != nil {
		return fmt.Errorf("flock actor %s: %w", ctx.ActorName(), err)
	}
	f.flock = flock
	ctx.ActorSystem().Logger().Infof("Born: flock %s with %d boids around %s", ctx.ActorName(), flock.Len(), flock.Center())
	return nil
}

func (f *FlockActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Debugf("%s started", ctx.Self().Name())

	case *durationpb.Duration:
		f.flock.Update(msg.AsDuration().Seconds())
		f.tick++
		f.report(ctx)

	case *structpb.Struct:
		switch messageKind(msg) {
		case KindSettings:
			s, err := SettingsFromProto(msg)
			if err != nil {
				ctx.Logger().Warnf("%s: ignoring settings: %v", ctx.Self().Name(), err)
				return
			}
			f.flock.ApplySettings(s)
		case KindTune:
			p, err := SettingsPatchFromProto(msg)
			if err == nil {
				err = tuneFlock(f.flock, p)
			}
			if err != nil {
				ctx.Logger().Warnf("%s: ignoring tune: %v", ctx.Self().Name(), err)
			}
		default:
			ctx.Unhandled()
		}

	case *emptypb.Empty:
		state, err := f.state().ToProto()
		if err != nil {
			ctx.Err(err)
			return
		}
		ctx.Response(state)

	default:
		ctx.Unhandled()
	}
}

// report sends the new state back to whoever sent the tick, the world.
func (f *FlockActor) report(ctx *actor.ReceiveContext) {
	if ctx.Sender() == nil || ctx.Sender() == ctx.ActorSystem().NoSender() {
		return
	}
	state, err := f.state().ToProto()
	if err != nil {
		ctx.Logger().Errorf("%s: %v", ctx.Self().Name(), err)
		return
	}
	ctx.Tell(ctx.Sender(), state)
}

func (f *FlockActor) state() FlockState {
	return NewFlockState(f.cfg.Name, f.tick, f.flock)
}

func (f *FlockActor) PostStop(ctx *actor.Context) error {
	if f.flock != nil {
		f.flock.Destroy()
	}
	ctx.ActorSystem().Logger().Infof("Death: flock %s", ctx.ActorName())
	return nil
}
