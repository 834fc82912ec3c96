package behavior

import (
	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-boids3d/pkg/geometry"
)

// Handle is the visual representation of a boid, owned by the rendering layer.
// A boid only writes its position and orientation to it, and asks for its
// release when destroyed. Shared geometry must not be freed by Dispose.
type Handle interface {
	ID() string
	Position() geometry.Vector3D
	SetPosition(p geometry.Vector3D)
	Quaternion() geometry.Quaternion
	// LookAt turns the handle so its local +Z axis faces target.
	LookAt(target geometry.Vector3D)
	Dispose()
}

// Up is the world up axis used by LookAt.
var Up = geometry.Vector3D{X: 0, Y: 1, Z: 0}

// Transform is a lightweight Handle holding only a position and an orientation.
type Transform struct {
	id         string
	position   geometry.Vector3D
	quaternion geometry.Quaternion
	disposed   bool
	onDispose  func(*Transform)
}

var _ Handle = (*Transform)(nil)

// NewTransform creates a transform at position. onDispose, when not nil, is
// called once on Dispose so the owner can release per-instance resources.
func NewTransform(position geometry.Vector3D, onDispose func(*Transform)) *Transform {
	return &Transform{
		id:         uuid.NewString(),
		position:   position,
		quaternion: geometry.IdentityQuaternion(),
		onDispose:  onDispose,
	}
}

func (t *Transform) ID() string { return t.id }
func (t *Transform) Position() geometry.Vector3D { return t.position }
func (t *Transform) SetPosition(p geometry.Vector3D) { t.position = p }
func (t *Transform) Quaternion() geometry.Quaternion { return t.quaternion }
func (t *Transform) SetQuaternion(q geometry.Quaternion) { t.quaternion = q.Normalize() }

func (t *Transform) LookAt(target geometry.Vector3D) {
	t.quaternion = geometry.LookAtQuaternion(t.position, target, Up)
}

// Dispose detaches the transform. Calling it again does nothing.
func (t *Transform) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	if t.onDispose != nil {
		t.onDispose(t)
	}
}

// Disposed reports whether Dispose was called.
func (t *Transform) Disposed() bool {
	return t.disposed
}
