package behavior

import (
	"cmp"
	"slices"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

// Intersection is one hit of a ray against an obstacle.
type Intersection struct {
	Point    geometry.Vector3D
	Distance float64
	Obstacle Obstacle
}

// Obstacle is anything a ray can hit.
type Obstacle interface {
	// Raycast returns the nearest hit within maxDistance.
	Raycast(ray geometry.Ray, maxDistance float64) (Intersection, bool)
}

// ObstacleQuery answers ray queries against a set of obstacles.
// It is read-only during a tick and may be queried many times per tick.
type ObstacleQuery interface {
	// Raycast returns every hit within maxDistance, nearest first.
	Raycast(ray geometry.Ray, maxDistance float64) []Intersection
}

// Obstacles is an ObstacleQuery testing every obstacle in turn.
type Obstacles []Obstacle

var _ ObstacleQuery = Obstacles(nil)

func (o Obstacles) Raycast(ray geometry.Ray, maxDistance float64) []Intersection {
	var hits []Intersection
	for _, obstacle := range o {
		if obstacle == nil {
			continue
		}
		if hit, ok := obstacle.Raycast(ray, maxDistance); ok {
			hits = append(hits, hit)
		}
	}
	SortIntersections(hits)
	return hits
}

// SortIntersections orders hits nearest first.
func SortIntersections(hits []Intersection) {
	slices.SortStableFunc(hits, func(a, b Intersection) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
}
