// Copyright 2021-2024 Sebastian Lederer. See the file LICENSE.md for details

package shell

import (
	"errors"
	"strings"

	"github.com/IITGN-Operating-Systems/oxidation-exit-0-team/stackvec"
)

// MaxArgs is how many words one command line may have, path included.
const MaxArgs = 64

var (
	ErrEmpty       = errors.New("empty command")
	ErrTooManyArgs = errors.New("too many arguments")
)

// Command is a parsed command line. The first argument is the path.
type Command struct {
	args *stackvec.StackVec[string]
}

// Parse splits s on spaces, storing the words in buf. Runs of spaces count
// as one separator.
func Parse(s string, buf []string) (Command, error) {
	args := stackvec.New(buf)
	for _, a := range strings.Split(s, " ") {
		if a == "" {
			continue
		}
		if err := args.Push(a); err != nil {
			return Command{}, ErrTooManyArgs
		}
	}
	if args.IsEmpty() {
		return Command{}, ErrEmpty
	}
	return Command{args: args}, nil
}

func (c Command) Path() string { return c.args.At(0) }

// Args returns the arguments after the path.
func (c Command) Args() []string { return c.args.Slice()[1:] }
