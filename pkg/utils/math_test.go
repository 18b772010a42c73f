package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if n := L2Norm(v); math.Abs(n-1.0) > 1e-6 {
		t.Errorf("norm after NormalizeL2 = %f, want 1.0", n)
	}

	zero := []float32{0, 0, 0}
	NormalizeL2(zero)
	for _, x := range zero {
		if x != 0 {
			t.Error("zero vector should be unchanged")
		}
	}
}

func TestDot(t *testing.T) {
	if d := Dot([]float32{1, 0}, []float32{1, 0}); math.Abs(d-1.0) > 1e-6 {
		t.Errorf("Dot identical unit vectors = %f, want 1.0", d)
	}
	if d := Dot([]float32{1, 0}, []float32{0, 1}); d != 0 {
		t.Errorf("Dot orthogonal = %f, want 0", d)
	}
	if d := Dot([]float32{1}, []float32{1, 2}); d != 0 {
		t.Error("mismatched lengths should yield 0")
	}
}
