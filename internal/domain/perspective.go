package domain

import (
	"fmt"
	"strings"
)

// CameraAngle is the horizontal position of the virtual camera.
type CameraAngle string

const (
	AngleLeftSide  CameraAngle = "Left Side"
	AngleRightSide CameraAngle = "Right Side"
	AngleFront     CameraAngle = "Front View"
)

// CameraShot is the framing (shot size) of the virtual camera.
type CameraShot string

const (
	ShotCloseUp CameraShot = "Close-up Shot"
	ShotMedium  CameraShot = "Medium Shot"
	ShotFull    CameraShot = "Full Shot"
	ShotDrone   CameraShot = "Drone Shot"
)

// CameraLevel is the vertical position of the virtual camera.
type CameraLevel string

const (
	LevelEye  CameraLevel = "Eye-level"
	LevelLow  CameraLevel = "Low-angle"
	LevelHigh CameraLevel = "High-angle"
)

// The display strings are sent verbatim to the model, so these lists double as
// the closed vocabulary accepted from clients. Order is display order.
var (
	CameraAngles = []CameraAngle{AngleLeftSide, AngleRightSide, AngleFront}
	CameraShots  = []CameraShot{ShotCloseUp, ShotMedium, ShotFull, ShotDrone}
	CameraLevels = []CameraLevel{LevelEye, LevelLow, LevelHigh}
)

// Selection is the active perspective, one value per axis.
type Selection struct {
	Angle CameraAngle `json:"angle"`
	Shot  CameraShot  `json:"shot"`
	Level CameraLevel `json:"level"`
}

// DefaultSelection returns the perspective a new session starts with.
func DefaultSelection() Selection {
	return Selection{
		Angle: AngleLeftSide,
		Shot:  ShotCloseUp,
		Level: LevelEye,
	}
}

func ParseCameraAngle(s string) (CameraAngle, error) {
	return parseOption(s, CameraAngles)
}

func ParseCameraShot(s string) (CameraShot, error) {
	return parseOption(s, CameraShots)
}

func ParseCameraLevel(s string) (CameraLevel, error) {
	return parseOption(s, CameraLevels)
}

// parseOption matches s against the closed set ignoring case and surrounding
// whitespace and returns the canonical display value.
func parseOption[T ~string](s string, options []T) (T, error) {
	needle := strings.TrimSpace(s)
	for _, opt := range options {
		if strings.EqualFold(string(opt), needle) {
			return opt, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %q", ErrInvalidOption, s)
}
