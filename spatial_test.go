package main

import "testing"

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestSpatialGridQuery(t *testing.T) {
	g := NewSpatialGrid(1000, 1000)
	g.InsertCircle(100, 100, 20, "a")
	g.InsertCircle(900, 900, 20, "b")

	near := g.Query(110, 110, 50)
	if !containsID(near, "a") {
		t.Error("query near a should find a")
	}
	if containsID(near, "b") {
		t.Error("query near a should not find b")
	}
}

func TestSpatialGridSpanningCells(t *testing.T) {
	g := NewSpatialGrid(1000, 1000)
	// Centered on a cell corner: lands in four cells.
	g.InsertCircle(160, 160, 30, "big")

	for _, probe := range []Vec2{V(140, 140), V(180, 140), V(140, 180), V(180, 180)} {
		if !containsID(g.Query(probe.X, probe.Y, 10), "big") {
			t.Errorf("probe at %v should find the spanning circle", probe)
		}
	}
}

func TestSpatialGridOutOfBoundsClamped(t *testing.T) {
	g := NewSpatialGrid(1000, 1000)
	g.InsertCircle(-50, -50, 20, "edge")
	g.InsertCircle(2000, 2000, 20, "far")

	if !containsID(g.Query(0, 0, 30), "edge") {
		t.Error("out-of-bounds insert should clamp to the border cells")
	}
	if !containsID(g.Query(999, 999, 30), "far") {
		t.Error("far out-of-bounds insert should clamp to the last cell")
	}
}

func TestSpatialGridClear(t *testing.T) {
	g := NewSpatialGrid(1000, 1000)
	g.InsertCircle(100, 100, 20, "a")
	g.Clear()
	if len(g.Query(100, 100, 50)) != 0 {
		t.Error("cleared grid should return nothing")
	}
}

func TestWorldQueryCircleDedupes(t *testing.T) {
	w := newTestWorld(1)
	e := addTestPlayer(w, V(160, 160))
	e.Radius = 60 // spans multiple cells
	w.Step()

	found := w.QueryCircle(V(160, 160), 100)
	n := 0
	for _, got := range found {
		if got.ID == e.ID {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected the entity once, got %d copies", n)
	}
}
