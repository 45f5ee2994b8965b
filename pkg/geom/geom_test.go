package geom

import (
	"math"
	"testing"
)

func TestRectEdges(t *testing.T) {
	r := NewRect(10, 20, 100, 50)
	if r.Right() != 110 {
		t.Errorf("Right() = %v, want 110", r.Right())
	}
	if r.Bottom() != 70 {
		t.Errorf("Bottom() = %v, want 70", r.Bottom())
	}
	if r.IsEmpty() {
		t.Error("IsEmpty() = true, want false")
	}
	if !NewRect(0, 0, 0, 10).IsEmpty() {
		t.Error("zero-width rect should be empty")
	}
}

func TestSmallestIntegerContainer(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Bounds
	}{
		{"integral", NewRect(10, 20, 100, 50), NewBounds(10, 20, 100, 50)},
		{"fractional origin", NewRect(10.5, 20.25, 10, 10), NewBounds(10, 20, 11, 11)},
		{"fractional size", NewRect(0, 0, 10.1, 0.9), NewBounds(0, 0, 11, 1)},
		{"negative origin", NewRect(-1.5, -0.5, 1, 1), NewBounds(-2, -1, 2, 2)},
		{"empty", Rect{}, Bounds{}},
		{"infinite width", NewRect(0, 0, math.Inf(1), 1), NewBounds(0, 0, MaxCoordinate, 1)},
		{"infinite origin", NewRect(math.Inf(-1), 0, 10, 1), NewBounds(-MaxCoordinate, 0, 0, 1)},
		{"beyond range", NewRect(0, 0, 1e300, 1e19), NewBounds(0, 0, MaxCoordinate, MaxCoordinate)},
		{"nan", NewRect(math.NaN(), 0, 5, 5), NewBounds(0, 0, 0, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.SmallestIntegerContainer(); got != tt.want {
				t.Errorf("SmallestIntegerContainer() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApproxEqual(t *testing.T) {
	a := NewRect(1, 2, 3, 4)
	if !a.ApproxEqual(NewRect(1.0000001, 2, 3, 4), 1e-6) {
		t.Error("ApproxEqual should tolerate tiny differences")
	}
	if a.ApproxEqual(NewRect(1.1, 2, 3, 4), 1e-6) {
		t.Error("ApproxEqual should reject large differences")
	}
}

func TestBounds(t *testing.T) {
	b := NewBounds(5, 6, 7, 8)
	if b.Right() != 12 || b.Bottom() != 14 {
		t.Errorf("edges = (%d, %d), want (12, 14)", b.Right(), b.Bottom())
	}
	if got := b.ToRect(); got != NewRect(5, 6, 7, 8) {
		t.Errorf("ToRect() = %v", got)
	}
	if got := b.Translate(1, -1); got != NewBounds(6, 5, 7, 8) {
		t.Errorf("Translate() = %v", got)
	}
	if got := b.String(); got != "5, 6, 7, 8" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		in      string
		want    Bounds
		wantErr bool
	}{
		{"1,2,3,4", NewBounds(1, 2, 3, 4), false},
		{" -10, 0 , 200, 50 ", NewBounds(-10, 0, 200, 50), false},
		{"1,2,3", Bounds{}, true},
		{"1,2,three,4", Bounds{}, true},
		{"1,2,-3,4", Bounds{}, true},
		{"1.5,2,3,4", Bounds{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBounds(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBounds(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBounds(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
