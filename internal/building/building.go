// Package building defines the building footprints the window pipeline is fed
// with, and loads scenes of them from YAML.
package building

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/snjsomnath/threejsEditor-sub001/internal/geom"
)

// ErrInvalid marks a building that cannot carry windows at all.
var ErrInvalid = errors.New("invalid building")

// ID uniquely identifies a building across the instance pool.
type ID string

// Point is a footprint vertex on the ground plane.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Z float64 `yaml:"z" json:"z"`
}

// Building is a closed footprint extruded by floors.
type Building struct {
	ID                  ID      `yaml:"id" json:"id"`
	Points              []Point `yaml:"points" json:"points"`
	Floors              int     `yaml:"floors" json:"floors"`
	FloorHeight         float64 `yaml:"floorHeight" json:"floorHeight"`
	WindowToWallRatio   float64 `yaml:"window_to_wall_ratio" json:"window_to_wall_ratio"`
	WindowOverhang      bool    `yaml:"window_overhang,omitempty" json:"window_overhang,omitempty"`
	WindowOverhangDepth float64 `yaml:"window_overhang_depth,omitempty" json:"window_overhang_depth,omitempty"`
}

// Scene is the on-disk list of buildings.
type Scene struct {
	Buildings []Building `yaml:"buildings" json:"buildings"`
}

// Footprint returns the points in geom coordinates (Y carries world z).
func (b Building) Footprint() []geom.Point {
	out := make([]geom.Point, len(b.Points))
	for i, p := range b.Points {
		out[i] = geom.MakePoint(p.X, p.Z)
	}
	return out
}

// Height is the total extruded height.
func (b Building) Height() float64 {
	return float64(b.Floors) * b.FloorHeight
}

// Validate checks the parts of a definition that would make placement
// meaningless. Fewer than three points is not an error: a footprint being
// drawn is a valid editing state and simply gets no windows.
func (b Building) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalid)
	}
	if b.Floors < 1 {
		return fmt.Errorf("%w %s: floors must be >= 1, got %d", ErrInvalid, b.ID, b.Floors)
	}
	if b.FloorHeight <= 0 {
		return fmt.Errorf("%w %s: floorHeight must be positive, got %v", ErrInvalid, b.ID, b.FloorHeight)
	}
	if b.WindowToWallRatio < 0 || b.WindowToWallRatio > 1 {
		return fmt.Errorf("%w %s: window_to_wall_ratio must be within [0,1], got %v", ErrInvalid, b.ID, b.WindowToWallRatio)
	}
	if b.WindowOverhangDepth < 0 {
		return fmt.Errorf("%w %s: window_overhang_depth must be non-negative", ErrInvalid, b.ID)
	}
	return nil
}

// NewID returns a fresh random building id.
func NewID() ID {
	return ID(uuid.NewString())
}

// Clone returns a deep copy with a fresh id, offset on the ground plane.
func (b Building) Clone(dx, dz float64) Building {
	out := b
	out.ID = NewID()
	out.Points = make([]Point, len(b.Points))
	for i, p := range b.Points {
		out.Points[i] = Point{X: p.X + dx, Z: p.Z + dz}
	}
	return out
}

// Load reads a scene from a YAML file, assigning ids to buildings that have
// none and rejecting duplicates.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML scene.
func Parse(data []byte) (*Scene, error) {
	var scene Scene
	if err := yaml.Unmarshal(data, &scene); err != nil {
		return nil, fmt.Errorf("parsing scene YAML: %w", err)
	}

	seen := make(map[ID]bool, len(scene.Buildings))
	for i := range scene.Buildings {
		b := &scene.Buildings[i]
		if b.ID == "" {
			b.ID = NewID()
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalid, b.ID)
		}
		seen[b.ID] = true
		if err := b.Validate(); err != nil {
			return nil, err
		}
	}
	return &scene, nil
}
