package domain

import "testing"

func TestComposePrompt(t *testing.T) {
	tests := []struct {
		name       string
		sel        Selection
		additional string
		want       string
	}{
		{
			name: "no additional text",
			sel:  Selection{Angle: AngleFront, Shot: ShotCloseUp, Level: LevelEye},
			want: "Combine the provided images into a single cohesive image, viewed from a new perspective: Close-up Shot, Front View, Eye-level.",
		},
		{
			name:       "additional text appended after one space",
			sel:        Selection{Angle: AngleRightSide, Shot: ShotDrone, Level: LevelHigh},
			additional: "Golden hour lighting.",
			want:       "Combine the provided images into a single cohesive image, viewed from a new perspective: Drone Shot, Right Side, High-angle. Golden hour lighting.",
		},
		{
			name:       "whitespace is kept as typed",
			sel:        DefaultSelection(),
			additional: "  soft light ",
			want:       "Combine the provided images into a single cohesive image, viewed from a new perspective: Close-up Shot, Left Side, Eye-level.   soft light ",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComposePrompt(tc.sel, tc.additional)
			if got != tc.want {
				t.Fatalf("ComposePrompt() = %q, want %q", got, tc.want)
			}
			if again := ComposePrompt(tc.sel, tc.additional); again != got {
				t.Fatalf("ComposePrompt not deterministic: %q vs %q", again, got)
			}
		})
	}
}
