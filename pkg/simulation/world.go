package simulation

import (
	"math/rand/v2"
	"time"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// WorldActor fans ticks and settings out to one FlockActor per flock and
// assembles their reports into snapshots for the UI.
type WorldActor struct {
	cfg       *Config
	obstacles behavior.ObstacleQuery

	names  []string // configuration order
	pids   map[string]*actor.PID
	states map[string]FlockState

	tick     uint64
	reported int // reports received for the current tick

	// Communication with UI
	snapshotCh chan<- *Snapshot

	// --- Benchmark Stats ---
	msgSentCount int
	msgRecvCount int
	lastLogTime  time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit. Snapshots are dropped when
// snapshotCh is full or nil.
func NewWorldActor(snapshotCh chan<- *Snapshot, cfg *Config, obstacles behavior.ObstacleQuery) *WorldActor {
	return &WorldActor{
		cfg:         cfg,
		obstacles:   obstacles,
		pids:        make(map[string]*actor.PID),
		states:      make(map[string]FlockState),
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is spawning %d flocks...", len(w.cfg.Flocks))
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		w.spawnFlocks(ctx)

	// The simulation step, driven by the game loop
	case *durationpb.Duration:
		w.logBenchmarks(ctx)
		w.tick++
		w.reported = 0
		w.broadcast(ctx, msg)
		if len(w.names) == 0 {
			w.pushSnapshot()
		}

	case *structpb.Struct:
		switch messageKind(msg) {
		case KindFlock:
			w.msgRecvCount++
			w.handleReport(ctx, msg)
		case KindSettings, KindTune:
			w.broadcast(ctx, msg)
		default:
			ctx.Unhandled()
		}

	case *emptypb.Empty:
		snapshot, err := w.buildSnapshot().ToProto()
		if err != nil {
			ctx.Err(err)
			return
		}
		ctx.Response(snapshot)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) spawnFlocks(ctx *actor.ReceiveContext) {
	directions := geometry.SphereDirections(w.cfg.AvoidanceDirections)
	seed := newRand(w.cfg.Seed)
	for _, fc := range w.cfg.Flocks {
		rng := rand.New(rand.NewPCG(seed.Uint64(), seed.Uint64()))
		pid := ctx.Spawn(fc.Name, NewFlockActor(fc, w.cfg.Settings, w.obstacles, directions, rng))
		if pid == nil {
			ctx.Logger().Errorf("failed to spawn flock %s", fc.Name)
			continue
		}
		w.names = append(w.names, fc.Name)
		w.pids[fc.Name] = pid
		w.states[fc.Name] = FlockState{Name: fc.Name, Radius: fc.Radius}
	}
	ctx.Logger().Infof("World Started with %d flocks", len(w.names))
}

func (w *WorldActor) broadcast(ctx *actor.ReceiveContext, msg proto.Message) {
	for _, name := range w.names {
		w.msgSentCount++
		ctx.Tell(w.pids[name], msg)
	}
}

// handleReport keeps the latest state of a flock and publishes a snapshot
// once every flock reported for the current tick.
func (w *WorldActor) handleReport(ctx *actor.ReceiveContext, msg *structpb.Struct) {
	state, err := FlockStateFromProto(msg)
	if err != nil {
		ctx.Logger().Warnf("dropping flock report: %v", err)
		return
	}
	if _, ok := w.pids[state.Name]; !ok {
		ctx.Logger().Warnf("report from unknown flock %s", state.Name)
		return
	}
	w.states[state.Name] = state
	if state.Tick != w.tick {
		return
	}
	w.reported++
	if w.reported == len(w.names) {
		w.pushSnapshot()
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		total := w.msgSentCount + w.msgRecvCount
		ctx.Logger().Infof("📊 MSG RATE: %d/sec (Sent: %d, Recv: %d) | Flocks: %d | Tick: %d",
			total, w.msgSentCount, w.msgRecvCount, len(w.names), w.tick)
		w.msgSentCount = 0
		w.msgRecvCount = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.buildSnapshot():
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) buildSnapshot() *Snapshot {
	s := &Snapshot{Tick: w.tick, Flocks: make([]FlockState, 0, len(w.names))}
	for _, name := range w.names {
		s.Flocks = append(s.Flocks, w.states[name])
	}
	return s
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}
