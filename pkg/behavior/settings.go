package behavior

// Settings controls the steering constants of a boid.
// Every boid carries its own copy so it can be tuned at runtime;
// Flock.ApplySettings broadcasts one Settings value to a whole flock.
type Settings struct {
	MinSpeed float64 `json:"minSpeed" toml:"minSpeed"`
	MaxSpeed float64 `json:"maxSpeed" toml:"maxSpeed"`

	CohesionWeight   float64 `json:"cohesionWeight" toml:"cohesionWeight"`
	SeparationWeight float64 `json:"separationWeight" toml:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight" toml:"alignmentWeight"`

	VisionRange            float64 `json:"visionRange" toml:"visionRange"` // obstacle ray length
	NumSamplesForSmoothing int     `json:"numSamplesForSmoothing" toml:"numSamplesForSmoothing"`

	// Neighborhood radii. Separation is intentionally tighter.
	AlignmentRange  float64 `json:"alignmentRange" toml:"alignmentRange"`
	CohesionRange   float64 `json:"cohesionRange" toml:"cohesionRange"`
	SeparationRange float64 `json:"separationRange" toml:"separationRange"`

	// MaxForceFactor bounds every steering vector to dt*MaxForceFactor.
	MaxForceFactor float64 `json:"maxForceFactor" toml:"maxForceFactor"`
	// AvoidanceWeight scales flee and dodge forces so they override flocking.
	AvoidanceWeight float64 `json:"avoidanceWeight" toml:"avoidanceWeight"`
	// WanderWeight enables the wander behavior when > 0.
	WanderWeight float64 `json:"wanderWeight" toml:"wanderWeight"`
}

// DefaultSettings returns the tuning used by the museum fish schools.
func DefaultSettings() Settings {
	return Settings{
		MinSpeed:               0.03,
		MaxSpeed:               0.03,
		CohesionWeight:         0.5,
		SeparationWeight:       0.5,
		AlignmentWeight:        0.2,
		VisionRange:            0.5,
		NumSamplesForSmoothing: 10,
		AlignmentRange:         5,
		CohesionRange:          5,
		SeparationRange:        3,
		MaxForceFactor:         5,
		AvoidanceWeight:        100,
		WanderWeight:           0,
	}
}

// maxForce is the longest steering vector allowed for a tick of length dt.
func (s Settings) maxForce(dt float64) float64 {
	return dt * s.MaxForceFactor
}

// historySize is the effective capacity of the velocity history, never below one.
func (s Settings) historySize() int {
	if s.NumSamplesForSmoothing < 1 {
		return 1
	}
	return s.NumSamplesForSmoothing
}
