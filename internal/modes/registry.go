// Package modes holds the fixed, process-wide mode registry: the persona
// directive, one instruction per mode, and the display descriptors shown
// next to each mode.
package modes

import (
	"fmt"
	"strings"

	"dzine-mind/internal/domain"
)

// Example is a canned prompt offered for a mode.
type Example struct {
	Label  string `json:"label"`
	Prompt string `json:"prompt"`
}

// Attributes is the persona's cognitive profile for a mode, in percent.
type Attributes struct {
	Entropy int `json:"entropy"`
	Rigor   int `json:"rigor"`
	Depth   int `json:"depth"`
}

// Descriptor carries display-only information about a mode.
type Descriptor struct {
	Mode       domain.Mode `json:"mode"`
	Label      string      `json:"label"`
	Examples   []Example   `json:"examples"`
	Attributes Attributes  `json:"attributes"`
}

type entry struct {
	instruction string
	descriptor  Descriptor
}

var order = [...]domain.Mode{
	domain.ModeCritic,
	domain.ModeCreative,
	domain.ModeAdvisor,
	domain.ModeTrends,
}

var registry = map[domain.Mode]entry{
	domain.ModeCritic: {
		instruction: criticInstruction,
		descriptor: Descriptor{
			Mode:  domain.ModeCritic,
			Label: "Design Critic",
			Examples: []Example{
				{Label: "VISUAL HIERARCHY", Prompt: "Analyze this logo or layout for visual hierarchy and cognitive load. Where does the eye go first?"},
				{Label: "ACCESSIBILITY", Prompt: "Critique the color contrast and inclusive design principles of this interface snippet."},
				{Label: "TYPOGRAPHY", Prompt: "Evaluate the font pairings here. Do they align with a 'premium' brand positioning?"},
			},
			Attributes: Attributes{Entropy: 20, Rigor: 95, Depth: 80},
		},
	},
	domain.ModeCreative: {
		instruction: creativeInstruction,
		descriptor: Descriptor{
			Mode:  domain.ModeCreative,
			Label: "Creative Thought",
			Examples: []Example{
				{Label: "AESTHETIC PIVOT", Prompt: "Propose an alternative aesthetic for this button or component that feels 'brutalist' yet functional."},
				{Label: "BRAND METAPHOR", Prompt: "Suggest a novel visual metaphor for a 'decentralized' financial tool that avoids typical grid lines."},
				{Label: "IMAGE EDIT", Prompt: "Add a retro, analog-film filter to this image and emphasize the shadows."},
			},
			Attributes: Attributes{Entropy: 90, Rigor: 40, Depth: 70},
		},
	},
	domain.ModeAdvisor: {
		instruction: advisorInstruction,
		descriptor: Descriptor{
			Mode:  domain.ModeAdvisor,
			Label: "Future Advisor",
			Examples: []Example{
				{Label: "FUTURE PROOFING", Prompt: "How will this design system age over the next 5 years of spatial computing trends?"},
				{Label: "CAREER LOGIC", Prompt: "What design skills should I cultivate if I want to transition from UI to Strategic Product Design?"},
				{Label: "AI INTEGRATION", Prompt: "How can I integrate AI into my workflow without sacrificing my unique creative voice?"},
			},
			Attributes: Attributes{Entropy: 30, Rigor: 70, Depth: 95},
		},
	},
	domain.ModeTrends: {
		instruction: trendsInstruction,
		descriptor: Descriptor{
			Mode:  domain.ModeTrends,
			Label: "Trend Intelligence",
			Examples: []Example{
				{Label: "BENTO ANALYSIS", Prompt: "Deconstruct the 'Bento Box' UI trend. Is it a structural improvement or just a temporary aesthetic?"},
				{Label: "SKEUOMORPHISM", Prompt: "Predict the return of 'Neumorphism'. What would a more sophisticated, modern version look like?"},
				{Label: "COLOR CYCLES", Prompt: "Why are we seeing a resurgence of high-saturation gradients in B2B SaaS branding?"},
			},
			Attributes: Attributes{Entropy: 60, Rigor: 60, Depth: 85},
		},
	},
}

// Instruction returns the instruction string for m. Unknown modes fall back
// to the default mode so the lookup is total.
func Instruction(m domain.Mode) string {
	e, ok := registry[m]
	if !ok {
		return registry[domain.DefaultMode].instruction
	}
	return e.instruction
}

// Describe returns the display descriptor for m.
func Describe(m domain.Mode) Descriptor {
	e, ok := registry[m]
	if !ok {
		e = registry[domain.DefaultMode]
	}
	d := e.descriptor
	d.Examples = append([]Example(nil), d.Examples...)
	return d
}

// All returns every mode in display order.
func All() []domain.Mode {
	out := make([]domain.Mode, len(order))
	copy(out, order[:])
	return out
}

// Descriptors returns the descriptors of every mode in display order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(order))
	for _, m := range order {
		out = append(out, Describe(m))
	}
	return out
}

// Parse resolves a mode from its identifier or display label,
// case-insensitively.
func Parse(s string) (domain.Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, m := range order {
		if key == string(m) || key == strings.ToLower(registry[m].descriptor.Label) {
			return m, nil
		}
	}
	return "", fmt.Errorf("modes: unknown mode %q", s)
}
