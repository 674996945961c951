package diff

import (
	"testing"

	"github.com/itsdrike/rickchurch-go/internal/canvasclient"
	"github.com/itsdrike/rickchurch-go/internal/pixel"
	"github.com/itsdrike/rickchurch-go/internal/project"
)

func solidGrid(w, h int, c pixel.RGB) *pixel.Grid {
	g := &pixel.Grid{Width: w, Height: h, Pixels: make([]pixel.RGB, w*h)}
	for i := range g.Pixels {
		g.Pixels[i] = c
	}
	return g
}

func blankSnapshot(w, h int, c pixel.RGB) *canvasclient.Snapshot {
	px := make([]pixel.RGB, w*h)
	for i := range px {
		px[i] = c
	}
	return &canvasclient.Snapshot{Width: w, Height: h, Pixels: px}
}

func TestComputeUnitsBasic(t *testing.T) {
	red := pixel.RGB{R: 0xff}
	black := pixel.RGB{}

	p := project.Project{Name: "p", X: 10, Y: 10, Priority: 1, Image: solidGrid(1, 1, red)}
	snap := blankSnapshot(20, 20, black)

	units := ComputeUnits([]project.Project{p}, snap)
	if len(units) != 1 {
		t.Fatalf("len(units) = %d, want 1", len(units))
	}
	want := Unit{Coord: pixel.Coord{X: 10, Y: 10}, RGB: red, Project: "p"}
	if _, ok := units[want]; !ok {
		t.Fatalf("units = %+v, want to contain %+v", units, want)
	}
}

func TestComputeUnitsSkipsAlreadyCorrectPixels(t *testing.T) {
	red := pixel.RGB{R: 0xff}
	p := project.Project{Name: "p", X: 0, Y: 0, Priority: 1, Image: solidGrid(1, 1, red)}
	snap := blankSnapshot(5, 5, red) // canvas already matches

	units := ComputeUnits([]project.Project{p}, snap)
	if len(units) != 0 {
		t.Fatalf("len(units) = %d, want 0", len(units))
	}
}

func TestComputeUnitsSkipsOutOfBounds(t *testing.T) {
	red := pixel.RGB{R: 0xff}
	p := project.Project{Name: "p", X: 100, Y: 100, Priority: 1, Image: solidGrid(1, 1, red)}
	snap := blankSnapshot(5, 5, pixel.RGB{})

	units := ComputeUnits([]project.Project{p}, snap)
	if len(units) != 0 {
		t.Fatalf("len(units) = %d, want 0 for out-of-bounds project", len(units))
	}
}

func TestComputeUnitsOverlapSameTargetDeduplicates(t *testing.T) {
	red := pixel.RGB{R: 0xff}
	p1 := project.Project{Name: "a", X: 0, Y: 0, Priority: 1, Image: solidGrid(1, 1, red)}
	p2 := project.Project{Name: "b", X: 0, Y: 0, Priority: 2, Image: solidGrid(1, 1, red)}
	snap := blankSnapshot(5, 5, pixel.RGB{})

	units := ComputeUnits([]project.Project{p1, p2}, snap)
	if len(units) != 1 {
		t.Fatalf("len(units) = %d, want 1 (same target color collapses)", len(units))
	}
}

func TestComputeUnitsOverlapDifferentTargetKeepsBoth(t *testing.T) {
	red := pixel.RGB{R: 0xff}
	blue := pixel.RGB{B: 0xff}
	p1 := project.Project{Name: "a", X: 0, Y: 0, Priority: 1, Image: solidGrid(1, 1, red)}
	p2 := project.Project{Name: "b", X: 0, Y: 0, Priority: 2, Image: solidGrid(1, 1, blue)}
	snap := blankSnapshot(5, 5, pixel.RGB{})

	units := ComputeUnits([]project.Project{p1, p2}, snap)
	if len(units) != 2 {
		t.Fatalf("len(units) = %d, want 2 (different target colors are distinct candidates)", len(units))
	}
}

func TestComputeUnitsDeterministic(t *testing.T) {
	red := pixel.RGB{R: 0xff}
	green := pixel.RGB{G: 0xff}
	projects := []project.Project{
		{Name: "z", X: 0, Y: 0, Priority: 5, Image: solidGrid(2, 2, red)},
		{Name: "a", X: 5, Y: 5, Priority: 1, Image: solidGrid(2, 2, green)},
	}
	snap := blankSnapshot(20, 20, pixel.RGB{})

	u1 := ComputeUnits(projects, snap)
	u2 := ComputeUnits(projects, snap)
	if len(u1) != len(u2) {
		t.Fatalf("nondeterministic unit count: %d vs %d", len(u1), len(u2))
	}
	for u := range u1 {
		if _, ok := u2[u]; !ok {
			t.Fatalf("unit %+v present in first run but not second", u)
		}
	}
}
