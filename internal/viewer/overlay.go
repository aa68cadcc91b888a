package viewer

import (
	"fmt"
	"math/big"
	"strings"
)

const unknownModel = "Unknown Model"

// ModelName returns the last path segment of source.
func ModelName(source string) string {
	name := source[strings.LastIndex(source, "/")+1:]
	if name == "" {
		return unknownModel
	}
	return name
}

// FormatCount renders a count in thousands with one decimal, e.g. 12.3K.
// The quotient is rounded half away from zero on its exact binary value, so
// 1250 gives 1.3K while 1150, stored just under 1.15, gives 1.1K.
func FormatCount(n int) string {
	return new(big.Rat).SetFloat64(float64(n)/1000).FloatString(1) + "K"
}

// ModelName returns the display name of the active source.
func (s *Session) ModelName() string {
	return ModelName(s.source)
}

// ClipLabel names the playing clip, or "" without animation.
func (s *Session) ClipLabel() string {
	if len(s.clips) == 0 {
		return ""
	}
	if s.clips[0].Name == "" {
		return "Main Clip"
	}
	return s.clips[0].Name
}

// Overlay returns the one-line status shown over the view.
func (s *Session) Overlay() string {
	name := s.ModelName()
	if s.loading {
		return "Loading: " + name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s | Vertices %s | Triangles %s | Sub-Meshes %d",
		name, FormatCount(s.stats.Vertices), FormatCount(s.stats.Triangles), s.stats.Meshes)
	if label := s.ClipLabel(); label != "" {
		status := "paused"
		if s.playing {
			status = "playing"
		}
		fmt.Fprintf(&b, " | %s (%s)", label, status)
	}
	return b.String()
}
