package behavior

import "github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"

// velocityHistory keeps the last velocities of a boid, oldest first.
// Capacity is given on each push so it follows runtime tuning.
type velocityHistory struct {
	samples []geometry.Vector3D
}

func (h *velocityHistory) push(v geometry.Vector3D, capacity int) {
	h.samples = append(h.samples, v)
	if extra := len(h.samples) - capacity; extra > 0 {
		h.samples = append(h.samples[:0], h.samples[extra:]...)
	}
}

func (h *velocityHistory) len() int {
	return len(h.samples)
}

// average of whatever is present, zero when empty.
func (h *velocityHistory) average() geometry.Vector3D {
	if len(h.samples) == 0 {
		return geometry.Zero
	}
	var sum geometry.Vector3D
	for _, s := range h.samples {
		sum = sum.Add(s)
	}
	return sum.Mul(1 / float64(len(h.samples)))
}
