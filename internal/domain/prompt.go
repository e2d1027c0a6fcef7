package domain

import "fmt"

const promptTemplate = "Combine the provided images into a single cohesive image, viewed from a new perspective: %s, %s, %s."

// ComposePrompt builds the instruction sent alongside the source images. The
// perspective terms are always ordered shot, angle, level. Additional text is
// appended after a single space only when it is non-empty; it is not trimmed.
func ComposePrompt(sel Selection, additional string) string {
	base := fmt.Sprintf(promptTemplate, sel.Shot, sel.Angle, sel.Level)
	if additional == "" {
		return base
	}
	return base + " " + additional
}
