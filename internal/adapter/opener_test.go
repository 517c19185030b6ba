package adapter

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type startCall struct {
	name string
	args []string
}

func recordingOpener(command string, args []string) (*Opener, *[]startCall) {
	var calls []startCall
	o := NewOpener(command, args, NullLogger())
	o.start = func(name string, args ...string) error {
		calls = append(calls, startCall{name: name, args: args})
		return nil
	}
	return o, &calls
}

func Test_Opener_ConfiguredCommand(t *testing.T) {
	o, calls := recordingOpener("feh", []string{"--scale-down"})

	require.NoError(t, o.Open("https://image.example/p.jpg"))
	assert.Equal(t, []startCall{{name: "feh", args: []string{"--scale-down", "https://image.example/p.jpg"}}}, *calls)
}

func Test_Opener_EmptyURL(t *testing.T) {
	o, calls := recordingOpener("", nil)

	assert.Error(t, o.Open(""))
	assert.Empty(t, *calls)
}

func Test_Opener_FallsBackToSystemDefault(t *testing.T) {
	defaults := map[string]string{"darwin": "open", "windows": "cmd"}
	want, ok := defaults[runtime.GOOS]
	if !ok {
		want = "xdg-open"
	}

	// Every candidate viewer is missing
	o, calls := recordingOpener("", nil)
	o.start = func(name string, args ...string) error {
		*calls = append(*calls, startCall{name: name, args: args})
		if len(args) > 1 && args[0] == "-a" {
			return errors.New("no app")
		}
		if name != want {
			return errors.New("not found")
		}
		return nil
	}

	require.NoError(t, o.Open("https://image.example/p.jpg"))
	last := (*calls)[len(*calls)-1]
	assert.Equal(t, want, last.name)
	assert.Equal(t, "https://image.example/p.jpg", last.args[len(last.args)-1])
}
