// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package serial

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlow(t *testing.T) {
	for s, want := range map[string]Flow{"none": FlowNone, "Hardware": FlowHardware, "software": FlowSoftware} {
		f, err := ParseFlow(s)
		require.NoError(t, err)
		assert.Equal(t, want, f)
	}
	_, err := ParseFlow("xon")
	assert.ErrorIs(t, err, ErrSettings)
	assert.Equal(t, "hardware", FlowHardware.String())
}

func TestParseBaud(t *testing.T) {
	b, err := ParseBaud("115200")
	require.NoError(t, err)
	assert.Equal(t, 115200, b)

	_, err = ParseBaud("115201")
	assert.ErrorIs(t, err, ErrSettings)
	_, err = ParseBaud("fast")
	assert.ErrorIs(t, err, ErrSettings)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	for _, mutate := range []func(*Settings){
		func(s *Settings) { s.Baud = 1 },
		func(s *Settings) { s.CharSize = 9 },
		func(s *Settings) { s.StopBits = 3 },
		func(s *Settings) { s.Flow = 7 },
		func(s *Settings) { s.Timeout = -time.Second },
	} {
		s := Default()
		mutate(&s)
		assert.ErrorIs(t, s.Validate(), ErrSettings)
	}
}

func TestDeciseconds(t *testing.T) {
	for d, want := range map[time.Duration]uint8{
		0:                       0,
		50 * time.Millisecond:   1,
		time.Second:             10,
		10 * time.Second:        100,
		time.Minute:             255,
		1234 * time.Millisecond: 13,
	} {
		assert.Equal(t, want, Settings{Timeout: d}.deciseconds(), "%v", d)
	}
}

// expired is what a raw tty with VTIME set returns once the timer runs out.
type expired struct{}

func (expired) Read([]byte) (int, error) { return 0, io.EOF }

func TestReadTimeout(t *testing.T) {
	b := make([]byte, 1)

	_, err := (&Port{in: expired{}, timed: true}).Read(b)
	assert.ErrorIs(t, err, ErrTimeout)

	_, err = (&Port{in: expired{}}).Read(b)
	assert.ErrorIs(t, err, io.EOF, "without a timeout EOF is a hangup")

	n, err := (&Port{in: strings.NewReader("x"), timed: true}).Read(b)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
