package model

import (
	"fmt"
	"math/rand/v2"
)

// gradientPalettes are the two-stop gradients a generated cover picks from.
var gradientPalettes = [][2]string{
	{"#667eea", "#764ba2"},
	{"#f093fb", "#f5576c"},
	{"#4facfe", "#00f2fe"},
	{"#43e97b", "#38f9d7"},
	{"#fa709a", "#fee140"},
	{"#a8edea", "#fed6e3"},
	{"#d299c2", "#fef9d7"},
	{"#89f7fe", "#66a6ff"},
	{"#cd9cf2", "#f6f3ff"},
	{"#ffecd2", "#fcb69f"},
	{"#a1c4fd", "#c2e9fb"},
	{"#667db6", "#0082c8"},
	{"#ff9a9e", "#fecfef"},
	{"#96fbc4", "#f9f586"},
	{"#30cfd0", "#330867"},
}

// solidColors are the flat colors a generated cover picks from.
var solidColors = []string{
	"#6366f1", // indigo
	"#8b5cf6", // violet
	"#ec4899", // pink
	"#f43f5e", // rose
	"#f97316", // orange
	"#eab308", // yellow
	"#22c55e", // green
	"#14b8a6", // teal
	"#06b6d4", // cyan
	"#3b82f6", // blue
}

// gradientShare is the probability that NewCover produces a gradient.
const gradientShare = 0.7

// NewCover picks a CSS-renderable cover: a linear gradient from the curated
// palette with a uniformly random angle (70%), or a solid color (30%).
// A nil r uses the package-level random source.
func NewCover(r *rand.Rand) (string, CoverType) {
	float := rand.Float64
	intN := rand.IntN
	if r != nil {
		float = r.Float64
		intN = r.IntN
	}

	if float() < gradientShare {
		p := gradientPalettes[intN(len(gradientPalettes))]
		angle := intN(360)
		return fmt.Sprintf("linear-gradient(%ddeg, %s, %s)", angle, p[0], p[1]), CoverGradient
	}
	return solidColors[intN(len(solidColors))], CoverColor
}

// PlaceholderCover returns the generated image URL used for cards created
// without an explicit cover.
func PlaceholderCover(seed string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/400/300", seed)
}
