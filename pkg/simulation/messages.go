package simulation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/lao-tseu-is-alive/go-boids3d/pkg/behavior"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages exchanged by the world and flock actors. They are protobuf
// well-known types:
//
//	*durationpb.Duration  tick of the given length
//	*structpb.Struct      payload tagged by its "kind" field: settings,
//	                      tune (a SettingsPatch), flock or snapshot
//	*emptypb.Empty        ask for the current state
const (
	kindField    = "kind"
	KindSettings = "settings"
	KindTune     = "tune"
	KindFlock    = "flock"
	KindSnapshot = "snapshot"
)

// NewTick builds the tick message for a step of length dt seconds.
func NewTick(dt float64) *durationpb.Duration {
	return durationpb.New(time.Duration(math.Round(dt * float64(time.Second))))
}

// encodeMessage turns v into a Struct through its JSON form and tags it with kind.
func encodeMessage(kind string, v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	m := make(map[string]interface{})
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	m[kindField] = kind
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return st, nil
}

// decodeMessage fills v from a Struct that must carry the given kind.
func decodeMessage(st *structpb.Struct, kind string, v any) error {
	if got := messageKind(st); got != kind {
		return fmt.Errorf("%w: kind %q, want %q", ErrMalformedMessage, got, kind)
	}
	b, err := protojson.Marshal(st)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return nil
}

func messageKind(st *structpb.Struct) string {
	if st == nil {
		return ""
	}
	return st.GetFields()[kindField].GetStringValue()
}

// SettingsToProto builds the message broadcasting s to every flock.
func SettingsToProto(s behavior.Settings) (*structpb.Struct, error) {
	return encodeMessage(KindSettings, s)
}

func SettingsFromProto(st *structpb.Struct) (behavior.Settings, error) {
	var s behavior.Settings
	err := decodeMessage(st, KindSettings, &s)
	return s, err
}

// SettingsPatch changes some settings and leaves the others alone. Keys are
// the JSON names of behavior.Settings, e.g. {"visionRange": 2}.
type SettingsPatch map[string]any

// Apply sets the keys of p in s. On error s is unchanged: unknown keys,
// wrong types and a minSpeed above maxSpeed are rejected.
func (p SettingsPatch) Apply(s *behavior.Settings) error {
	doc, err := p.encode()
	if err != nil {
		return err
	}
	return applyPatch(doc, s)
}

func (p SettingsPatch) encode() ([]byte, error) {
	doc, err := json.Marshal(map[string]any(p))
	if err != nil {
		return nil, fmt.Errorf("settings patch: %w: %v", ErrInvalidConfig, err)
	}
	return doc, nil
}

func applyPatch(doc []byte, s *behavior.Settings) error {
	next := *s
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return fmt.Errorf("settings patch: %w: %v", ErrInvalidConfig, err)
	}
	if err := validateSettings(next); err != nil {
		return err
	}
	*s = next
	return nil
}

// tuneFlock applies p to every boid of f, stopping at the first boid
// that rejects it.
func tuneFlock(f *behavior.Flock, p SettingsPatch) error {
	doc, err := p.encode()
	if err != nil {
		return err
	}
	var tuneErr error
	f.Tune(func(s *behavior.Settings) {
		if tuneErr == nil {
			tuneErr = applyPatch(doc, s)
		}
	})
	return tuneErr
}

func (p SettingsPatch) ToProto() (*structpb.Struct, error) {
	return encodeMessage(KindTune, map[string]any(p))
}

func SettingsPatchFromProto(st *structpb.Struct) (SettingsPatch, error) {
	p := SettingsPatch{}
	if err := decodeMessage(st, KindTune, &p); err != nil {
		return nil, err
	}
	delete(p, kindField)
	return p, nil
}
