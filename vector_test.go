package main

import (
	"math"
	"testing"
)

const vecEps = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < vecEps
}

func TestVec2AddSubScale(t *testing.T) {
	v := V(3, 4).Add(V(1, -2))
	if v.X != 4 || v.Y != 2 {
		t.Errorf("Add: got %v", v)
	}
	v = V(3, 4).Sub(V(1, 1))
	if v.X != 2 || v.Y != 3 {
		t.Errorf("Sub: got %v", v)
	}
	v = V(2, -3).Scale(2)
	if v.X != 4 || v.Y != -6 {
		t.Errorf("Scale: got %v", v)
	}
}

func TestVec2Len(t *testing.T) {
	if l := V(3, 4).Len(); l != 5 {
		t.Errorf("Len: expected 5, got %f", l)
	}
	if l := V(3, 4).LenSq(); l != 25 {
		t.Errorf("LenSq: expected 25, got %f", l)
	}
}

func TestVec2NormalizeZero(t *testing.T) {
	n := Vec2{}.Normalize()
	if !n.IsZero() {
		t.Errorf("normalizing zero vector should yield zero, got %v", n)
	}
	n = V(10, 0).Normalize()
	if !almostEqual(n.Len(), 1) {
		t.Errorf("normalized length: got %f", n.Len())
	}
}

func TestVec2Rotate(t *testing.T) {
	v := V(1, 0).Rotate(math.Pi / 2)
	if !almostEqual(v.X, 0) || !almostEqual(v.Y, 1) {
		t.Errorf("90° rotation of (1,0): got %v", v)
	}
}

func TestVec2Perp(t *testing.T) {
	v := V(1, 0).Perp()
	if v.X != 0 || v.Y != 1 {
		t.Errorf("Perp of (1,0): got %v", v)
	}
	if d := V(3, 7).Dot(V(3, 7).Perp()); !almostEqual(d, 0) {
		t.Errorf("vector should be orthogonal to its perp, dot = %f", d)
	}
}

func TestVec2Cross(t *testing.T) {
	if c := V(1, 0).Cross(V(0, 1)); c != 1 {
		t.Errorf("cross: expected 1, got %f", c)
	}
	if c := V(0, 1).Cross(V(1, 0)); c != -1 {
		t.Errorf("cross: expected -1, got %f", c)
	}
}

func TestVec2Lerp(t *testing.T) {
	v := V(0, 0).Lerp(V(10, 20), 0.5)
	if v.X != 5 || v.Y != 10 {
		t.Errorf("Lerp midpoint: got %v", v)
	}
}

func TestFromAngleRoundTrip(t *testing.T) {
	for _, a := range []float64{0, 0.7, math.Pi / 2, -math.Pi / 3} {
		v := FromAngle(a)
		if !almostEqual(v.Len(), 1) {
			t.Errorf("FromAngle(%f) not unit length", a)
		}
		if !almostEqual(NormalizeAngle(v.Angle()-a), 0) {
			t.Errorf("angle round trip failed for %f: got %f", a, v.Angle())
		}
	}
}

func TestVec2Distance(t *testing.T) {
	if d := V(0, 0).Distance(V(3, 4)); d != 5 {
		t.Errorf("Distance: expected 5, got %f", d)
	}
	if d := V(0, 0).DistanceSq(V(3, 4)); d != 25 {
		t.Errorf("DistanceSq: expected 25, got %f", d)
	}
}
