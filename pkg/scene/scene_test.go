package scene

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

// countingSphere records how often the fine check runs.
type countingSphere struct {
	*SphereObstacle
	calls int
}

func (c *countingSphere) Raycast(ray geometry.Ray, maxDistance float64) (behavior.Intersection, bool) {
	c.calls++
	return c.SphereObstacle.Raycast(ray, maxDistance)
}

func mustSphere(t testing.TB, name string, center geometry.Vector3D, radius float64) *SphereObstacle {
	t.Helper()
	s, err := NewSphereObstacle(name, center, radius)
	if err != nil {
		t.Fatalf("NewSphereObstacle(%q): %v", name, err)
	}
	return s
}

func mustBox(t testing.TB, name string, a, b geometry.Vector3D) *BoxObstacle {
	t.Helper()
	box, err := NewBoxObstacle(name, a, b)
	if err != nil {
		t.Fatalf("NewBoxObstacle(%q): %v", name, err)
	}
	return box
}

func names(hits []behavior.Intersection) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.Obstacle.(Shape).Name()
	}
	return out
}

func TestScene_RaycastOrdersHits(t *testing.T) {
	s := New(
		mustSphere(t, "far", geometry.NewVector(6, 0, 0), 1),
		mustSphere(t, "near", geometry.NewVector(3, 0, 0), 1),
		mustBox(t, "wall", geometry.NewVector(8, -2, -2), geometry.NewVector(9, 2, 2)),
	)
	ray := geometry.NewRay(geometry.Zero, geometry.NewVector(1, 0, 0))

	tests := []struct {
		name        string
		maxDistance float64
		want        []string
		wantDist    []float64
	}{
		{"All in range", 20, []string{"near", "far", "wall"}, []float64{2, 5, 8}},
		{"Cut by distance", 6, []string{"near", "far"}, []float64{2, 5}},
		{"Nothing in range", 1, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := s.Raycast(ray, tt.maxDistance)
			got := names(hits)
			if len(got) != len(tt.want) {
				t.Fatalf("hits = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("hit %d = %s, want %s", i, got[i], tt.want[i])
				}
				if math.Abs(hits[i].Distance-tt.wantDist[i]) > geometry.Epsilon {
					t.Errorf("hit %d distance = %v, want %v", i, hits[i].Distance, tt.wantDist[i])
				}
			}
		})
	}
}

func TestScene_BroadPhasePrunesDistantShapes(t *testing.T) {
	onPath := &countingSphere{SphereObstacle: mustSphere(t, "onPath", geometry.NewVector(0, 0, 3), 1)}
	aside := &countingSphere{SphereObstacle: mustSphere(t, "aside", geometry.NewVector(0, 50, 0), 1)}
	s := New(onPath, aside)

	hits := s.Raycast(geometry.NewRay(geometry.Zero, geometry.NewVector(0, 0, 1)), 5)

	if len(hits) != 1 {
		t.Fatalf("expected one hit, got %v", names(hits))
	}
	if onPath.calls != 1 {
		t.Errorf("expected the shape on the path to be tested once, got %d", onPath.calls)
	}
	if aside.calls != 0 {
		t.Errorf("expected the distant shape to be pruned, got %d fine checks", aside.calls)
	}
}

func TestScene_AddAndLen(t *testing.T) {
	s := New()
	ray := geometry.NewRay(geometry.Zero, geometry.NewVector(0, 1, 0))
	if hits := s.Raycast(ray, 10); hits != nil {
		t.Errorf("empty scene returned %v", names(hits))
	}

	s.Add(mustBox(t, "ceiling", geometry.NewVector(-5, 4, -5), geometry.NewVector(5, 5, 5)))
	s.Add(nil)

	if s.Len() != 1 || len(s.Obstacles()) != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	hits := s.Raycast(ray, 10)
	if len(hits) != 1 || !hits[0].Point.Eq(geometry.NewVector(0, 4, 0)) {
		t.Errorf("expected the ceiling hit at y=4, got %v", hits)
	}
}

func TestScene_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	var shapes []Shape
	var brute behavior.Obstacles
	for i := 0; i < 30; i++ {
		center := geometry.RandomVectorInCube(rng, 20)
		var shape Shape
		if i%2 == 0 {
			shape = mustSphere(t, "sphere", center, 0.5+rng.Float64()*2)
		} else {
			half := geometry.NewVector(0.5+rng.Float64(), 0.5+rng.Float64(), 0.5+rng.Float64())
			shape = mustBox(t, "box", center.Sub(half), center.Add(half))
		}
		shapes = append(shapes, shape)
		brute = append(brute, shape)
	}
	s := New(shapes...)

	for i := 0; i < 500; i++ {
		origin := geometry.RandomVectorInCube(rng, 20)
		dir := geometry.RandomVectorInCube(rng, 1)
		if dir.IsZero() {
			continue
		}
		ray := geometry.NewRay(origin, dir)
		got := s.Raycast(ray, 15)
		want := brute.Raycast(ray, 15)
		if len(got) != len(want) {
			t.Fatalf("ray %d: scene found %d hits, brute force %d", i, len(got), len(want))
		}
		for j := range got {
			if got[j].Obstacle != want[j].Obstacle || math.Abs(got[j].Distance-want[j].Distance) > geometry.Epsilon {
				t.Fatalf("ray %d hit %d: %v != %v", i, j, got[j], want[j])
			}
		}
	}
}

func TestNewObstacles_InvalidShapes(t *testing.T) {
	if _, err := NewSphereObstacle("flat", geometry.Zero, 0); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("zero radius sphere: expected ErrInvalidShape, got %v", err)
	}
	if _, err := NewBoxObstacle("sheet", geometry.Zero, geometry.NewVector(1, 0, 1)); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("flat box: expected ErrInvalidShape, got %v", err)
	}
	box := mustBox(t, "swapped", geometry.NewVector(1, 1, 1), geometry.NewVector(-1, -1, -1))
	if !box.Min().Eq(geometry.NewVector(-1, -1, -1)) || !box.Max().Eq(geometry.NewVector(1, 1, 1)) {
		t.Errorf("corners not ordered: %v %v", box.Min(), box.Max())
	}
}

func TestScene_DrivesFlock(t *testing.T) {
	s := New(
		mustBox(t, "case", geometry.NewVector(-1, 0, -1), geometry.NewVector(1, 2, 1)),
		mustSphere(t, "rock", geometry.NewVector(2, 3, 0), 1),
	)
	settings := behavior.DefaultSettings()
	settings.VisionRange = 2
	f, err := behavior.NewFlock(12, s, 4, geometry.Zero,
		behavior.WithSettings(settings),
		behavior.WithRand(rand.New(rand.NewPCG(21, 22))),
	)
	if err != nil {
		t.Fatalf("NewFlock: %v", err)
	}
	for i := 0; i < 200; i++ {
		f.Update(0.016)
	}
	for i, b := range f.Boids() {
		p := b.Position()
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			t.Fatalf("boid %d at %v", i, p)
		}
		if speed := b.Velocity().Len(); math.Abs(speed-settings.MaxSpeed) > geometry.Epsilon {
			t.Errorf("boid %d speed %v, want %v", i, speed, settings.MaxSpeed)
		}
	}
}
