package main

import (
	"fmt"

	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
)

const demoBlockSpacing = 40.0

// demoScene is a 3x3 block of varied footprints used when no scene file is
// given.
func demoScene() *building.Scene {
	shapes := [][]building.Point{
		{{X: 0, Z: 0}, {X: 20, Z: 0}, {X: 20, Z: 20}, {X: 0, Z: 20}},
		{{X: 0, Z: 0}, {X: 24, Z: 0}, {X: 24, Z: 10}, {X: 10, Z: 10}, {X: 10, Z: 22}, {X: 0, Z: 22}},
		{{X: 0, Z: 0}, {X: 22, Z: 0}, {X: 11, Z: 18}},
		{{X: 0, Z: 0}, {X: 30, Z: 0}, {X: 30, Z: 12}, {X: 0, Z: 12}},
		{{X: 6, Z: 0}, {X: 18, Z: 0}, {X: 24, Z: 10}, {X: 18, Z: 20}, {X: 6, Z: 20}, {X: 0, Z: 10}},
	}

	scene := &building.Scene{}
	for i := range 9 {
		row, col := i/3, i%3
		ox, oz := float64(col)*demoBlockSpacing, float64(row)*demoBlockSpacing
		shape := shapes[i%len(shapes)]
		points := make([]building.Point, len(shape))
		for j, p := range shape {
			points[j] = building.Point{X: p.X + ox, Z: p.Z + oz}
		}
		scene.Buildings = append(scene.Buildings, building.Building{
			ID:                building.ID(fmt.Sprintf("block-%d", i+1)),
			Points:            points,
			Floors:            3 + (i*5)%9,
			FloorHeight:       3.2,
			WindowToWallRatio: 0.25 + 0.05*float64(i%6),
			WindowOverhang:    i%2 == 0,
		})
	}
	return scene
}
