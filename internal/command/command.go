package command

import (
	"errors"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

const (
	backgroundToken = "&"
	inputToken      = "<"
	outputToken     = ">"
	pidToken        = "$$"
	commentPrefix   = "#"
)

var (
	ErrMissingInputPath  = errors.New("missing path after <")
	ErrMissingOutputPath = errors.New("missing path after >")
)

// Redirect is a standard stream rebinding. Set without a Path means the
// operator was the last token on the line.
type Redirect struct {
	Path string
	Set  bool
}

type Command struct {
	Argv       []string
	Input      Redirect
	Output     Redirect
	Background bool
}

// Parse turns one input line into a Command. It reports false for blank
// lines, comments and lines that leave no program name after the shell
// operators are consumed.
func Parse(line string, pid int) (Command, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" || strings.HasPrefix(line, commentPrefix) {
		return Command{}, false
	}

	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{}, false
	}

	self := strconv.Itoa(pid)
	for i, tok := range tokens {
		tokens[i] = strings.ReplaceAll(tok, pidToken, self)
	}

	var cmd Command
	if tokens[len(tokens)-1] == backgroundToken {
		cmd.Background = true
		tokens = tokens[:len(tokens)-1]
	}

	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case inputToken:
			cmd.Input.Set = true
			if i+1 < len(tokens) {
				cmd.Input.Path = tokens[i+1]
				i++
			}
		case outputToken:
			cmd.Output.Set = true
			if i+1 < len(tokens) {
				cmd.Output.Path = tokens[i+1]
				i++
			}
		default:
			cmd.Argv = append(cmd.Argv, tokens[i])
		}
	}

	if len(cmd.Argv) == 0 {
		return Command{}, false
	}
	return cmd, true
}

// Name returns argv[0], or "" for an empty command.
func (c Command) Name() string {
	if len(c.Argv) == 0 {
		return ""
	}
	return c.Argv[0]
}

func (c Command) Validate() error {
	if c.Input.Set && c.Input.Path == "" {
		return ErrMissingInputPath
	}
	if c.Output.Set && c.Output.Path == "" {
		return ErrMissingOutputPath
	}
	return nil
}

// String renders the command back into shell syntax, quoting arguments
// where needed.
func (c Command) String() string {
	parts := []string{shellquote.Join(c.Argv...)}
	if c.Input.Set {
		parts = append(parts, inputToken, shellquote.Join(c.Input.Path))
	}
	if c.Output.Set {
		parts = append(parts, outputToken, shellquote.Join(c.Output.Path))
	}
	if c.Background {
		parts = append(parts, backgroundToken)
	}
	return strings.Join(parts, " ")
}
