package domain

import (
	"errors"
	"testing"
)

func TestDefaultSelection(t *testing.T) {
	sel := DefaultSelection()
	if sel.Angle != AngleLeftSide || sel.Shot != ShotCloseUp || sel.Level != LevelEye {
		t.Fatalf("unexpected default selection: %#v", sel)
	}
}

func TestOptionListsKeepDisplayStrings(t *testing.T) {
	wantAngles := []string{"Left Side", "Right Side", "Front View"}
	for i, a := range CameraAngles {
		if string(a) != wantAngles[i] {
			t.Fatalf("CameraAngles[%d] = %q, want %q", i, a, wantAngles[i])
		}
	}
	wantShots := []string{"Close-up Shot", "Medium Shot", "Full Shot", "Drone Shot"}
	for i, s := range CameraShots {
		if string(s) != wantShots[i] {
			t.Fatalf("CameraShots[%d] = %q, want %q", i, s, wantShots[i])
		}
	}
	wantLevels := []string{"Eye-level", "Low-angle", "High-angle"}
	for i, l := range CameraLevels {
		if string(l) != wantLevels[i] {
			t.Fatalf("CameraLevels[%d] = %q, want %q", i, l, wantLevels[i])
		}
	}
}

func TestParseOptions(t *testing.T) {
	if got, err := ParseCameraAngle("front view"); err != nil || got != AngleFront {
		t.Fatalf("ParseCameraAngle = %q, %v", got, err)
	}
	if got, err := ParseCameraShot(" Drone Shot "); err != nil || got != ShotDrone {
		t.Fatalf("ParseCameraShot = %q, %v", got, err)
	}
	if got, err := ParseCameraLevel("LOW-ANGLE"); err != nil || got != LevelLow {
		t.Fatalf("ParseCameraLevel = %q, %v", got, err)
	}
	if got, err := ParseCameraAngle("\t front VIEW \n"); err != nil || string(got) != "Front View" {
		t.Fatalf("lenient input must return the canonical value, got %q, %v", got, err)
	}
	if _, err := ParseCameraAngle("Back View"); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
	if _, err := ParseCameraLevel(""); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption for empty value, got %v", err)
	}
}
