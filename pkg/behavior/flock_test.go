package behavior

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

func TestNewFlock_InvalidArguments(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		radius  float64
		wantErr error
	}{
		{"Negative count", -1, 10, ErrInvalidCount},
		{"Zero radius", 5, 0, ErrInvalidRadius},
		{"Negative radius", 5, -2, ErrInvalidRadius},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFlock(tt.count, nil, tt.radius, geometry.Zero)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if f != nil {
				t.Errorf("expected no flock, got %d boids", f.Len())
			}
		})
	}
}

func TestNewFlock_EmptyFlock(t *testing.T) {
	f, err := NewFlock(0, nil, 5, geometry.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.Update(dt)
	if f.Len() != 0 {
		t.Errorf("expected empty flock, got %d", f.Len())
	}
}

func TestNewFlock_Placement(t *testing.T) {
	origin := geometry.NewVector(-30, 1.5, 25)
	radius := 10.0
	var references []bool
	factory := func(p geometry.Vector3D, reference bool) Handle {
		references = append(references, reference)
		return NewTransform(p, nil)
	}

	f, err := NewFlock(20, nil, radius, origin,
		WithRand(rand.New(rand.NewPCG(3, 4))),
		WithHandleFactory(factory),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCenter := geometry.NewVector(-30, 11.5, 25)
	if !f.Center().Eq(wantCenter) {
		t.Errorf("center = %v, want %v", f.Center(), wantCenter)
	}
	if f.Len() != 20 {
		t.Fatalf("len = %d, want 20", f.Len())
	}
	if !f.Boids()[0].Position().Eq(wantCenter) {
		t.Errorf("reference boid at %v, want center %v", f.Boids()[0].Position(), wantCenter)
	}
	for i, b := range f.Boids() {
		if d := b.Position().DistanceTo(wantCenter); d > radius+geometry.Epsilon {
			t.Errorf("boid %d seeded %v away from the center", i, d)
		}
		if !b.BoundaryOrigin().Eq(wantCenter) || b.BoundaryRadius() != radius {
			t.Errorf("boid %d has boundary %v/%v", i, b.BoundaryOrigin(), b.BoundaryRadius())
		}
		v := b.Velocity()
		if v.X < -1 || v.X >= 1 || v.Y < -1 || v.Y >= 1 || v.Z < -1 || v.Z >= 1 {
			t.Errorf("boid %d initial velocity %v outside [-1,1)^3", i, v)
		}
	}
	if len(references) != 20 || !references[0] {
		t.Fatalf("expected the first handle only to be the reference, got %v", references)
	}
	for i, r := range references[1:] {
		if r {
			t.Errorf("handle %d flagged as reference", i+1)
		}
	}
}

func TestFlock_SingleBoidStaysNearSphere(t *testing.T) {
	f, err := NewFlock(1, nil, 10, geometry.Zero, WithRand(rand.New(rand.NewPCG(5, 6))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 100; i++ {
		f.Update(dt)
	}
	// Starts at the center with speed 0.03 per tick: 100 ticks cannot leave.
	if d := f.Boids()[0].Position().DistanceTo(f.Center()); d > f.Radius()+geometry.Epsilon {
		t.Errorf("single boid ended %v from the center", d)
	}
}

func TestFlock_UpdateKeepsSpeedBounds(t *testing.T) {
	obstacles := Obstacles{&testSphere{center: geometry.NewVector(0, 5, 0), radius: 1}}
	f, err := NewFlock(15, obstacles, 5, geometry.Zero, WithRand(rand.New(rand.NewPCG(8, 9))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := DefaultSettings()
	for i := 0; i < 300; i++ {
		f.Update(dt)
		for j, b := range f.Boids() {
			if !isFinite(b.Position()) {
				t.Fatalf("tick %d: boid %d at %v", i, j, b.Position())
			}
			if speed := b.Velocity().Len(); speed < s.MinSpeed-geometry.Epsilon || speed > s.MaxSpeed+geometry.Epsilon {
				t.Fatalf("tick %d: boid %d speed %v", i, j, speed)
			}
		}
	}
}

func TestFlock_ApplySettingsAndTune(t *testing.T) {
	f, err := NewFlock(5, nil, 5, geometry.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := DefaultSettings()
	s.MaxSpeed = 0.1
	f.ApplySettings(s)
	f.Tune(func(s *Settings) { s.CohesionWeight = 1.5 })

	for i, b := range f.Boids() {
		if b.Settings.MaxSpeed != 0.1 {
			t.Errorf("boid %d MaxSpeed = %v, want 0.1", i, b.Settings.MaxSpeed)
		}
		if b.Settings.CohesionWeight != 1.5 {
			t.Errorf("boid %d CohesionWeight = %v, want 1.5", i, b.Settings.CohesionWeight)
		}
	}
}

func TestFlock_Destroy(t *testing.T) {
	var disposed []string
	factory := func(p geometry.Vector3D, _ bool) Handle {
		return NewTransform(p, func(tr *Transform) { disposed = append(disposed, tr.ID()) })
	}
	f, err := NewFlock(4, nil, 5, geometry.Zero, WithHandleFactory(factory))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.Destroy()
	f.Destroy()
	f.Update(dt)

	if len(disposed) != 4 {
		t.Errorf("disposed %d handles, want 4", len(disposed))
	}
	if f.Len() != 0 {
		t.Errorf("expected no boids after Destroy, got %d", f.Len())
	}
}

func BenchmarkFlock_Update(b *testing.B) {
	obstacles := Obstacles{
		&testSphere{center: geometry.NewVector(3, 5, 0), radius: 1},
		&testSphere{center: geometry.NewVector(-3, 5, 2), radius: 2},
	}
	f, err := NewFlock(50, obstacles, 10, geometry.Zero, WithRand(rand.New(rand.NewPCG(1, 1))))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Update(dt)
	}
}
