package simulation

import (
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
	"google.golang.org/protobuf/types/known/structpb"
)

// AgentState is what a renderer needs to draw one boid.
type AgentState struct {
	ID       string            `json:"id"`
	Position geometry.Vector3D `json:"position"`
	Velocity geometry.Vector3D `json:"velocity"`
	Heading  geometry.Vector3D `json:"heading"`
}

// FlockState is one flock at a given tick.
type FlockState struct {
	Name   string            `json:"name"`
	Tick   uint64            `json:"tick"`
	Center geometry.Vector3D `json:"center"`
	Radius float64           `json:"radius"`

	// Settings of the flock's first boid, the whole flock unless it was
	// tuned boid by boid.
	Settings behavior.Settings `json:"settings"`
	Agents   []AgentState      `json:"agents"`
}

// Snapshot is the whole world at a given tick, flocks in configuration order.
type Snapshot struct {
	Tick   uint64       `json:"tick"`
	Flocks []FlockState `json:"flocks"`
}

// NewFlockState copies the current state of f.
func NewFlockState(name string, tick uint64, f *behavior.Flock) FlockState {
	state := FlockState{
		Name:   name,
		Tick:   tick,
		Center: f.Center(),
		Radius: f.Radius(),
		Agents: make([]AgentState, 0, f.Len()),
	}
	if boids := f.Boids(); len(boids) > 0 {
		state.Settings = boids[0].Settings
	}
	for _, b := range f.Boids() {
		state.Agents = append(state.Agents, AgentState{
			ID:       b.ID(),
			Position: b.Position(),
			Velocity: b.Velocity(),
			Heading:  b.Heading(),
		})
	}
	return state
}

// Len is the total number of agents.
func (s *Snapshot) Len() int {
	n := 0
	for _, f := range s.Flocks {
		n += len(f.Agents)
	}
	return n
}

// Flock finds a flock by name.
func (s *Snapshot) Flock(name string) (FlockState, bool) {
	for _, f := range s.Flocks {
		if f.Name == name {
			return f, true
		}
	}
	return FlockState{}, false
}

func (s *Snapshot) ToProto() (*structpb.Struct, error) {
	return encodeMessage(KindSnapshot, s)
}

func SnapshotFromProto(st *structpb.Struct) (*Snapshot, error) {
	s := &Snapshot{}
	if err := decodeMessage(st, KindSnapshot, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (f FlockState) ToProto() (*structpb.Struct, error) {
	return encodeMessage(KindFlock, f)
}

func FlockStateFromProto(st *structpb.Struct) (FlockState, error) {
	var f FlockState
	err := decodeMessage(st, KindFlock, &f)
	return f, err
}
