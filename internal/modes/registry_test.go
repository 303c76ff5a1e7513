package modes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dzine-mind/internal/domain"
)

func TestInstruction_IsTotalAndDistinct(t *testing.T) {
	seen := map[string]domain.Mode{}
	for _, m := range All() {
		instr := Instruction(m)
		require.NotEmpty(t, instr, "mode=%s", m)
		prev, dup := seen[instr]
		require.False(t, dup, "modes %s and %s share an instruction", prev, m)
		seen[instr] = m
	}
	require.Len(t, seen, 4)
}

func TestInstruction_UnknownFallsBackToDefault(t *testing.T) {
	require.Equal(t, Instruction(domain.DefaultMode), Instruction(domain.Mode("bogus")))
}

func TestDescribe_ReturnsCopies(t *testing.T) {
	d := Describe(domain.ModeCreative)
	require.Equal(t, "Creative Thought", d.Label)
	require.Len(t, d.Examples, 3)

	d.Examples[0].Prompt = "mutated"
	require.NotEqual(t, "mutated", Describe(domain.ModeCreative).Examples[0].Prompt)
}

func TestDescriptors_Order(t *testing.T) {
	ds := Descriptors()
	require.Len(t, ds, 4)
	require.Equal(t, domain.ModeCritic, ds[0].Mode)
	require.Equal(t, domain.ModeTrends, ds[3].Mode)
	require.Equal(t, Attributes{Entropy: 90, Rigor: 40, Depth: 70}, ds[1].Attributes)
}

func TestParse(t *testing.T) {
	cases := map[string]domain.Mode{
		"critic":             domain.ModeCritic,
		" CREATIVE ":         domain.ModeCreative,
		"Future Advisor":     domain.ModeAdvisor,
		"trend intelligence": domain.ModeTrends,
	}
	for in, want := range cases {
		got, err := Parse(in)
		require.NoError(t, err, "in=%q", in)
		require.Equal(t, want, got)
	}

	_, err := Parse("brutalism")
	require.Error(t, err)
}

func TestSystemInstruction_ListsDirectives(t *testing.T) {
	sys := SystemInstruction()
	require.Contains(t, sys, "DZINE MIND™")
	for _, d := range CoreDirectives() {
		require.Contains(t, sys, d)
	}
	require.Contains(t, DirectiveList(), "5. Value longevity over novelty")
}

func TestCoreDirectives_ReturnsCopy(t *testing.T) {
	d := CoreDirectives()
	d[0] = "mutated"
	require.Equal(t, "Prioritize logic over aesthetics", CoreDirectives()[0])
}
