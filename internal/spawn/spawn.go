package spawn

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"
)

// Command is the argument that selects the child entry point when the shell
// binary re-invokes itself.
const Command = "__spawn"

const outputPerm = 0o644

var ErrNoProgram = errors.New("no program given")

// Request describes the job a child process turns into.
type Request struct {
	Argv       []string
	Input      string
	Output     string
	Background bool
	// DevNull is the input of a background job without input redirection.
	DevNull string
}

// Args builds the argument vector that starts bin as the child for r.
func (r Request) Args(bin string) []string {
	args := []string{bin, Command}
	if r.Input != "" {
		args = append(args, "--in", r.Input)
	}
	if r.Output != "" {
		args = append(args, "--out", r.Output)
	}
	if r.Background {
		args = append(args, "--background")
	}
	if r.DevNull != "" {
		args = append(args, "--dev-null", r.DevNull)
	}
	args = append(args, "--")
	return append(args, r.Argv...)
}

// ParseArgs is the inverse of Args. args excludes the binary and Command.
func ParseArgs(args []string) (Request, error) {
	var r Request
	fs := pflag.NewFlagSet(Command, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(false)
	fs.StringVar(&r.Input, "in", "", "input redirection")
	fs.StringVar(&r.Output, "out", "", "output redirection")
	fs.BoolVar(&r.Background, "background", false, "run as a background job")
	fs.StringVar(&r.DevNull, "dev-null", os.DevNull, "input for background jobs")

	if err := fs.Parse(args); err != nil {
		return Request{}, fmt.Errorf("error parsing child arguments: %w", err)
	}
	r.Argv = fs.Args()
	if len(r.Argv) == 0 {
		return Request{}, ErrNoProgram
	}
	return r, nil
}

// Main is the child entry point. It only returns if the process image could
// not be replaced, with the status the child must exit with.
func Main(args []string) int {
	r, err := ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return Exec(r, os.Stderr)
}

// Exec prepares the current process for r and replaces it with r.Argv.
func Exec(r Request, stderr io.Writer) int {
	if len(r.Argv) == 0 {
		fmt.Fprintln(stderr, ErrNoProgram)
		return 1
	}
	setDispositions(r.Background)

	if r.Input != "" {
		if err := redirect(r.Input, unix.O_RDONLY, 0, unix.Stdin); err != nil {
			fmt.Fprintf(stderr, "cannot open %s for input\n", r.Input)
			return 1
		}
	} else if r.Background {
		if err := redirect(r.DevNull, unix.O_RDONLY, 0, unix.Stdin); err != nil {
			fmt.Fprintf(stderr, "cannot open %s for input\n", r.DevNull)
			return 1
		}
	}

	if r.Output != "" {
		flags := unix.O_WRONLY | unix.O_CREAT | unix.O_TRUNC
		if err := redirect(r.Output, flags, outputPerm, unix.Stdout); err != nil {
			fmt.Fprintf(stderr, "cannot open %s for output\n", r.Output)
			return 1
		}
	}

	name := r.Argv[0]
	path, err := exec.LookPath(name)
	// A match through a "." or empty PATH entry still runs, as with execvp.
	if errors.Is(err, exec.ErrDot) {
		err = nil
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", name, cause(err))
		return 1
	}

	err = unix.Exec(path, r.Argv, os.Environ())
	fmt.Fprintf(stderr, "%s: %v\n", name, err)
	return 1
}

// setDispositions leaves the toggle signal ignored and the interrupt signal
// at its default action for foreground jobs. A caught signal is reset to the
// default action by execve, an ignored one stays ignored.
func setDispositions(background bool) {
	signal.Ignore(unix.SIGTSTP)
	if background {
		signal.Ignore(unix.SIGINT)
		return
	}
	signal.Notify(make(chan os.Signal, 1), unix.SIGINT)
}

func redirect(path string, flags int, perm uint32, target int) error {
	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, perm)
	if err != nil {
		return err
	}
	if err := dup2(fd, target); err != nil {
		unix.Close(fd)
		return err
	}
	return unix.Close(fd)
}

func cause(err error) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return execErr.Err
	}
	return err
}
