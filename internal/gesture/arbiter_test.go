// Copyright (c) 2024-2025 Wayra Labs S.A. / RutaViva
// SPDX-License-Identifier: AGPL-3.0-or-later

package gesture

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestQuickStillPressIsClick(t *testing.T) {
	a := New()
	a.Press(Point{X: 40, Y: 10}, t0)
	if d := a.Release(t0.Add(80 * time.Millisecond)); d != DecisionNone {
		t.Fatalf("Release = %v, want pending resolution", d)
	}
	if d := a.ResolveClick(t0.Add(81 * time.Millisecond)); d != DecisionClick {
		t.Errorf("ResolveClick = %v, want click", d)
	}
}

func TestSmallWiggleStaysClick(t *testing.T) {
	a := New()
	a.Press(Point{X: 40, Y: 10}, t0)
	if a.Move(Point{X: 43, Y: 11}, t0.Add(30*time.Millisecond)) {
		t.Error("sub-threshold move must not start a drag")
	}
	a.Release(t0.Add(100 * time.Millisecond))
	if d := a.ResolveClick(t0.Add(101 * time.Millisecond)); d != DecisionClick {
		t.Errorf("ResolveClick = %v, want click for displacement under threshold", d)
	}
}

func TestDisplacementPastThresholdIsDragRegardlessOfDuration(t *testing.T) {
	a := New()
	a.Press(Point{X: 40, Y: 10}, t0)
	if !a.Move(Point{X: 49, Y: 10}, t0.Add(10*time.Millisecond)) {
		t.Fatal("9-cell move must start a drag")
	}
	if d := a.Release(t0.Add(20 * time.Millisecond)); d != DecisionDrag {
		t.Errorf("Release = %v, want drag even for a 20ms gesture", d)
	}
	if d := a.ResolveClick(t0.Add(21 * time.Millisecond)); d != DecisionDrag {
		t.Errorf("trailing click after a drag = %v, want suppressed", d)
	}
}

func TestDiagonalDistanceIsEuclidean(t *testing.T) {
	a := New()
	a.Press(Point{X: 0, Y: 0}, t0)
	// 6,6 is ~8.49 cells away: past the threshold even though neither
	// axis moved 8 on its own.
	if !a.Move(Point{X: 6, Y: 6}, t0.Add(10*time.Millisecond)) {
		t.Error("diagonal displacement past threshold must drag")
	}
}

func TestSlowPressWithRecentWiggleIsDrag(t *testing.T) {
	a := New()
	a.Press(Point{X: 40, Y: 10}, t0)
	a.Move(Point{X: 42, Y: 10}, t0.Add(300*time.Millisecond))
	a.Release(t0.Add(400 * time.Millisecond))
	if d := a.ResolveClick(t0.Add(410 * time.Millisecond)); d != DecisionDrag {
		t.Errorf("slow press with recent movement = %v, want drag", d)
	}
}

func TestSlowStillPressIsClick(t *testing.T) {
	a := New()
	a.Press(Point{X: 40, Y: 10}, t0)
	a.Release(t0.Add(2 * time.Second))
	if d := a.ResolveClick(t0.Add(2*time.Second + time.Millisecond)); d != DecisionClick {
		t.Errorf("long press with no movement = %v, want click", d)
	}
}

func TestMovedResetsOnlyOnNextPress(t *testing.T) {
	a := New()
	a.Press(Point{X: 0, Y: 0}, t0)
	a.Move(Point{X: 20, Y: 0}, t0.Add(50*time.Millisecond))
	a.Release(t0.Add(100 * time.Millisecond))

	// Still suppressed long after the release.
	if d := a.ResolveClick(t0.Add(5 * time.Second)); d != DecisionDrag {
		t.Errorf("click after drag release = %v, want suppressed", d)
	}

	// A fresh press clears the flag and the next quick release clicks.
	a.Press(Point{X: 20, Y: 0}, t0.Add(6*time.Second))
	a.Release(t0.Add(6*time.Second + 50*time.Millisecond))
	if d := a.ResolveClick(t0.Add(6*time.Second + 51*time.Millisecond)); d != DecisionClick {
		t.Errorf("fresh quick press = %v, want click", d)
	}
}

func TestSecondPressIgnoredWhilePressed(t *testing.T) {
	a := New()
	a.Press(Point{X: 0, Y: 0}, t0)
	a.Press(Point{X: 50, Y: 20}, t0.Add(10*time.Millisecond))
	// Movement is still measured against the first press.
	if !a.Move(Point{X: 10, Y: 0}, t0.Add(20*time.Millisecond)) {
		t.Error("displacement from the first press must count")
	}
}

func TestMoveWithoutPressIsIgnored(t *testing.T) {
	a := New()
	if a.Move(Point{X: 100, Y: 100}, t0) {
		t.Error("move without a press must not drag")
	}
	if d := a.Release(t0); d != DecisionNone {
		t.Errorf("release without a press = %v, want none", d)
	}
}

func TestClampToViewport(t *testing.T) {
	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{"inside", Point{X: 40, Y: 12}, Point{X: 40, Y: 12}},
		{"past right edge", Point{X: 200, Y: 12}, Point{X: 71, Y: 12}},
		{"past bottom left", Point{X: -3, Y: 99}, Point{X: 8, Y: 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampToViewport(tt.in, 80, 24, DefaultViewportMargin)
			if got != tt.want {
				t.Errorf("ClampToViewport(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSnapToCorner(t *testing.T) {
	tests := []struct {
		name string
		in   Point
		want Point
	}{
		{"near bottom right", Point{X: 70, Y: 20}, Point{X: 63, Y: 19}},
		{"near top left", Point{X: 20, Y: 3}, Point{X: 16, Y: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapToCorner(tt.in, 80, 24, DefaultSnapMarginX, DefaultSnapMarginY)
			if got != tt.want {
				t.Errorf("SnapToCorner(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
