package motion

import "testing"

func TestQ16FromFloat(t *testing.T) {
	v := q16FromFloat(0.5)
	if v != q16One/2 {
		t.Errorf("expected 0.5 -> %d, got %d", q16One/2, v)
	}
}

func TestQ16Ratio(t *testing.T) {
	v := q16Ratio(1, 2)
	if v != q16One/2 {
		t.Errorf("expected 1/2 -> %d, got %d", q16One/2, v)
	}
	if q16Ratio(5, 0) != 0 {
		t.Error("expected division by zero to saturate to 0, not panic")
	}
}

func TestQ16Mul(t *testing.T) {
	half := q16FromFloat(0.5)
	quarter := half.mul(half)
	if quarter != q16One/4 {
		t.Errorf("expected 0.5*0.5 -> %d, got %d", q16One/4, quarter)
	}
}

func TestQ16MulUint8(t *testing.T) {
	half := q16FromFloat(0.5)
	if got := half.mulUint8(200); got != 100 {
		t.Errorf("expected 0.5*200 -> 100, got %d", got)
	}
	if got := q16One.mulUint8(255); got != 255 {
		t.Errorf("expected 1.0*255 -> 255, got %d", got)
	}
}

func TestQ16Sub(t *testing.T) {
	if q16One.sub(q16FromFloat(1.5)) != 0 {
		t.Error("expected saturating subtraction to clamp at 0")
	}
	half := q16FromFloat(0.5)
	if q16One.sub(half) != half {
		t.Errorf("expected 1.0-0.5 == 0.5, got %d vs %d", q16One.sub(half), half)
	}
}
