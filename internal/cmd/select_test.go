package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSelector(t *testing.T) {
	candidates := []string{"/runs/a", "/runs/b", "/runs/c"}

	tests := []struct {
		name      string
		input     string
		want      int
		reprompts int
		wantErr   error
	}{
		{name: "first choice", input: "0\n", want: 0},
		{name: "last choice", input: " 2 \n", want: 2},
		{name: "not a number then valid", input: "b\n1\n", want: 1, reprompts: 1},
		{name: "out of range then valid", input: "3\n-1\n\n0\n", want: 0, reprompts: 3},
		{name: "input ends", input: "7\n", wantErr: ErrNoSelection, reprompts: 1},
		{name: "empty input", input: "", wantErr: ErrNoSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := newRunSelector(strings.NewReader(tt.input), &out, candidates).Run()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.reprompts, strings.Count(out.String(), "Please select number from [0, 1, 2]\n"))
		})
	}
}

func TestRunSelector_ListsCandidates(t *testing.T) {
	var out bytes.Buffer
	_, err := newRunSelector(strings.NewReader("1\n"), &out, []string{"x", "y"}).Run()
	require.NoError(t, err)

	assert.Equal(t,
		"More than one possible output directory found, please choose a path from the following:\n0: x\n1: y\n",
		out.String())
}
