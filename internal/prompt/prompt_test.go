package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(input), &out), &out
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"maybe\ny\n", false, true},
		{"yes", false, true},
	}
	for _, tc := range cases {
		p, _ := newPrompter(tc.input)
		got, err := p.Confirm("Add show?", tc.defaultYes)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got, tc.input)
	}
}

func TestConfirm_PrintsHint(t *testing.T) {
	p, out := newPrompter("y\n")
	_, err := p.Confirm("Remove 'Dark'?", false)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Remove 'Dark'? [y/N]")
}

func TestConfirm_GivesUp(t *testing.T) {
	p, _ := newPrompter("a\nb\nc\ny\n")
	_, err := p.Confirm("Sure?", false)
	assert.ErrorContains(t, err, "no valid answer")
}

func TestConfirm_EOFAborts(t *testing.T) {
	p, _ := newPrompter("")
	_, err := p.Confirm("Sure?", true)
	assert.ErrorIs(t, err, ErrAborted)
}

func TestChoose(t *testing.T) {
	p, out := newPrompter("0\n7\n2\n")
	idx, err := p.Choose("Which show?", []string{"Dark (Netflix)", "Dark Matter (Syfy)", "Darkwing Duck (ABC)"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	text := out.String()
	assert.Contains(t, text, "Which show?")
	assert.Contains(t, text, "Dark Matter (Syfy)")
	assert.Contains(t, text, "'7' is not a valid selection")
}

func TestChoose_Abort(t *testing.T) {
	for _, input := range []string{"\n", "q\n", "Q\n", ""} {
		p, _ := newPrompter(input)
		_, err := p.Choose("Which?", []string{"a", "b"})
		assert.ErrorIs(t, err, ErrAborted, "input %q", input)
	}
}

func TestChoose_NoOptions(t *testing.T) {
	p, _ := newPrompter("1\n")
	_, err := p.Choose("Which?", nil)
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	p, out := newPrompter("  S02E05 \n")
	got, err := p.String("Last watched episode:")
	require.NoError(t, err)
	assert.Equal(t, "S02E05", got)
	assert.Equal(t, "Last watched episode: ", out.String())
}
