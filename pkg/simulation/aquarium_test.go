package simulation

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

func smallConfig() *Config {
	cfg := DefaultConfig()
	cfg.Seed = 1234
	cfg.Flocks = []FlockConfig{
		{Name: "north", Count: 8, Radius: 5, Origin: geometry.NewVector(0, 0, 0)},
		{Name: "south", Count: 4, Radius: 3, Origin: geometry.NewVector(20, 1, 20)},
	}
	cfg.Obstacles = []ObstacleConfig{
		{Name: "rock", Kind: ObstacleSphere, Center: geometry.NewVector(0, 5, 0), Radius: 1},
	}
	return cfg
}

// overrideConfig is smallConfig with a south flock that clusters harder.
func overrideConfig() *Config {
	cfg := smallConfig()
	south := cfg.Settings
	south.CohesionWeight = 1.2
	cfg.Flocks[1].Settings = &south
	return cfg
}

func TestNewAquariumFromConfig(t *testing.T) {
	a, err := NewAquariumFromConfig(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewAquariumFromConfig: %v", err)
	}
	if got := len(a.FlockNames()); got != 12 {
		t.Errorf("flocks = %d, want 12", got)
	}
	if a.Len() != 235 {
		t.Errorf("boids = %d, want 235", a.Len())
	}
	if a.Scene().Len() != len(DefaultConfig().Obstacles) {
		t.Errorf("obstacles = %d", a.Scene().Len())
	}
	atrium, ok := a.Flock("atrium")
	if !ok {
		t.Fatal("atrium flock missing")
	}
	if !atrium.Center().Eq(geometry.NewVector(-30, 21, 0)) {
		t.Errorf("atrium center = %v", atrium.Center())
	}
}

func TestNewAquariumFromConfig_InvalidObstacle(t *testing.T) {
	cfg := smallConfig()
	cfg.Obstacles = append(cfg.Obstacles, ObstacleConfig{Name: "flat", Kind: ObstacleSphere, Radius: 0})
	if _, err := NewAquariumFromConfig(cfg, nil); err == nil {
		t.Error("expected an error for a zero radius sphere")
	}
}

func TestAquarium_AddFlock(t *testing.T) {
	a := NewAquarium(nil, behavior.DefaultSettings(), 1, nil)

	if _, err := a.AddFlock(FlockConfig{Name: "a", Count: 3, Radius: 2}); err != nil {
		t.Fatalf("AddFlock: %v", err)
	}
	if _, err := a.AddFlock(FlockConfig{Name: "a", Count: 1, Radius: 2}); !errors.Is(err, ErrDuplicateFlock) {
		t.Errorf("expected ErrDuplicateFlock, got %v", err)
	}
	if _, err := a.AddFlock(FlockConfig{Name: "b", Count: -1, Radius: 2}); !errors.Is(err, behavior.ErrInvalidCount) {
		t.Errorf("expected ErrInvalidCount, got %v", err)
	}
	if _, err := a.AddFlock(FlockConfig{Name: "c", Count: 1, Radius: 0}); !errors.Is(err, behavior.ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius, got %v", err)
	}
	if a.Len() != 3 || len(a.FlockNames()) != 1 {
		t.Errorf("failed adds must not leave flocks behind: %v", a.FlockNames())
	}

	custom := behavior.DefaultSettings()
	custom.MaxSpeed = 0.08
	f, err := a.AddFlock(FlockConfig{Name: "fast", Count: 2, Radius: 2, Settings: &custom})
	if err != nil {
		t.Fatalf("AddFlock: %v", err)
	}
	if f.Boids()[0].Settings.MaxSpeed != 0.08 {
		t.Errorf("flock settings override ignored: %+v", f.Boids()[0].Settings)
	}
}

func TestAquarium_ObserversRunInOrder(t *testing.T) {
	a, err := NewAquariumFromConfig(smallConfig(), nil)
	if err != nil {
		t.Fatalf("NewAquariumFromConfig: %v", err)
	}
	var calls []string
	a.Observe(ObserverFunc(func(a *Aquarium, dt float64) {
		calls = append(calls, "first")
		if a.Tick() == 0 {
			t.Error("observer ran before the update")
		}
	}))
	a.Observe(ObserverFunc(func(*Aquarium, float64) { calls = append(calls, "second") }))

	a.Update(0.016)
	a.Update(0.016)

	want := []string{"first", "second", "first", "second"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, calls[i], want[i])
		}
	}
	if a.Tick() != 2 {
		t.Errorf("Tick = %d, want 2", a.Tick())
	}
}

func TestAquarium_SettingsReachEveryBoid(t *testing.T) {
	a, err := NewAquariumFromConfig(smallConfig(), nil)
	if err != nil {
		t.Fatalf("NewAquariumFromConfig: %v", err)
	}

	s := behavior.DefaultSettings()
	s.VisionRange = 3
	a.ApplySettings(s)
	a.Tune(func(s *behavior.Settings) { s.AlignmentWeight = 1.25 })

	late, err := a.AddFlock(FlockConfig{Name: "late", Count: 2, Radius: 2, Origin: geometry.NewVector(50, 0, 50)})
	if err != nil {
		t.Fatalf("AddFlock: %v", err)
	}

	for _, name := range a.FlockNames() {
		f, _ := a.Flock(name)
		for i, b := range f.Boids() {
			if b.Settings.VisionRange != 3 || b.Settings.AlignmentWeight != 1.25 {
				t.Errorf("%s boid %d settings = %+v", name, i, b.Settings)
			}
		}
	}
	if late.Boids()[0].Settings.AlignmentWeight != 1.25 {
		t.Error("flocks added later should use the tuned settings")
	}
}

func TestAquarium_TuneSettingsKeepsFlockOverrides(t *testing.T) {
	a, err := NewAquariumFromConfig(overrideConfig(), nil)
	if err != nil {
		t.Fatalf("NewAquariumFromConfig: %v", err)
	}

	if err := a.TuneSettings(SettingsPatch{"visionRange": 2.0}); err != nil {
		t.Fatalf("TuneSettings: %v", err)
	}

	tests := []struct {
		flock    string
		cohesion float64
	}{
		{"north", 0.5},
		{"south", 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.flock, func(t *testing.T) {
			f, _ := a.Flock(tt.flock)
			for i, b := range f.Boids() {
				if b.Settings.VisionRange != 2 || b.Settings.CohesionWeight != tt.cohesion {
					t.Errorf("boid %d settings = %+v", i, b.Settings)
				}
			}
		})
	}
	if a.Settings().VisionRange != 2 || a.Settings().CohesionWeight != 0.5 {
		t.Errorf("aquarium settings = %+v", a.Settings())
	}
}

func TestAquarium_TuneSettingsRejectsBadPatch(t *testing.T) {
	a, err := NewAquariumFromConfig(overrideConfig(), nil)
	if err != nil {
		t.Fatalf("NewAquariumFromConfig: %v", err)
	}
	before := a.Snapshot()

	tests := []struct {
		name  string
		patch SettingsPatch
	}{
		{"Min above max", SettingsPatch{"minSpeed": 0.5}},
		{"Unknown key", SettingsPatch{"turnFactor": 0.2}},
		{"Wrong type", SettingsPatch{"visionRange": "far"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.TuneSettings(tt.patch); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if a.Settings() != smallConfig().Settings {
		t.Errorf("rejected patches changed the settings: %+v", a.Settings())
	}
	after := a.Snapshot()
	for i := range before.Flocks {
		if before.Flocks[i].Settings != after.Flocks[i].Settings {
			t.Errorf("flock %s settings changed to %+v", after.Flocks[i].Name, after.Flocks[i].Settings)
		}
	}
}

func TestAquarium_TuneSettingsShippedOverride(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "museum.toml"), "")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	a, err := NewAquariumFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewAquariumFromConfig: %v", err)
	}
	f, ok := a.Flock("entrance-low")
	if !ok {
		t.Fatal("entrance-low flock missing")
	}
	if got := f.Boids()[0].Settings.CohesionWeight; got != 1.2 {
		t.Fatalf("entrance-low cohesion = %v, want 1.2", got)
	}

	if err := a.TuneSettings(SettingsPatch{"visionRange": 2.0}); err != nil {
		t.Fatalf("TuneSettings: %v", err)
	}
	if s := f.Boids()[0].Settings; s.CohesionWeight != 1.2 || s.VisionRange != 2 {
		t.Errorf("entrance-low settings after a vision range edit = %+v", s)
	}
}

func TestAquarium_RemoveFlocks(t *testing.T) {
	a, err := NewAquariumFromConfig(smallConfig(), nil)
	if err != nil {
		t.Fatalf("NewAquariumFromConfig: %v", err)
	}
	north, _ := a.Flock("north")
	handle := north.Boids()[0].Handle().(*behavior.Transform)

	if err := a.RemoveFlock("north"); err != nil {
		t.Fatalf("RemoveFlock: %v", err)
	}
	if !handle.Disposed() {
		t.Error("removed flock handles should be disposed")
	}
	if err := a.RemoveFlock("north"); !errors.Is(err, ErrUnknownFlock) {
		t.Errorf("expected ErrUnknownFlock, got %v", err)
	}

	a.RemoveFlocks()
	a.RemoveFlocks()
	a.Update(0.016)
	if a.Len() != 0 || len(a.Snapshot().Flocks) != 0 {
		t.Errorf("expected an empty aquarium, got %d boids", a.Len())
	}
	if a.Scene().Len() != 1 {
		t.Error("RemoveFlocks should keep the scene")
	}
}

func TestAquarium_Snapshot(t *testing.T) {
	a, err := NewAquariumFromConfig(smallConfig(), nil)
	if err != nil {
		t.Fatalf("NewAquariumFromConfig: %v", err)
	}
	for i := 0; i < 5; i++ {
		a.Update(0.016)
	}

	snap := a.Snapshot()
	if snap.Tick != 5 || snap.Len() != 12 {
		t.Fatalf("snapshot tick %d with %d agents", snap.Tick, snap.Len())
	}
	south, ok := snap.Flock("south")
	if !ok {
		t.Fatal("south flock missing from snapshot")
	}
	f, _ := a.Flock("south")
	for i, agent := range south.Agents {
		b := f.Boids()[i]
		if agent.ID != b.ID() || !agent.Position.Eq(b.Position()) || !agent.Heading.Eq(b.Heading()) {
			t.Errorf("agent %d = %+v, boid at %v", i, agent, b.Position())
		}
	}
}

func TestAquarium_SeedIsDeterministic(t *testing.T) {
	run := func() *Snapshot {
		a, err := NewAquariumFromConfig(smallConfig(), nil)
		if err != nil {
			t.Fatalf("NewAquariumFromConfig: %v", err)
		}
		for i := 0; i < 20; i++ {
			a.Update(0.016)
		}
		return a.Snapshot()
	}
	first, second := run(), run()
	for i := range first.Flocks {
		for j := range first.Flocks[i].Agents {
			p, q := first.Flocks[i].Agents[j].Position, second.Flocks[i].Agents[j].Position
			if p != q {
				t.Fatalf("flock %d agent %d: %v != %v", i, j, p, q)
			}
		}
	}
}

func BenchmarkAquarium_Update(b *testing.B) {
	a, err := NewAquariumFromConfig(DefaultConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Update(0.016)
	}
}
