package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/mattn/go-isatty"

	"smallsh/internal/command"
	"smallsh/internal/config"
)

const prompt = ": "

// ErrExit is returned by the exit built-in to end the prompt loop.
var ErrExit = errors.New("exit")

// State is everything the shell remembers between prompt cycles. It is only
// touched by the prompt loop; the mode flag lives in the ModeController.
type State struct {
	last ExitOutcome
	jobs map[int]struct{}
}

func newState() *State {
	return &State{jobs: make(map[int]struct{})}
}

// LastForeground is the outcome of the most recent foreground job.
func (st *State) LastForeground() ExitOutcome {
	return st.last
}

// BackgroundJobs returns the pids of background jobs not yet reaped.
func (st *State) BackgroundJobs() []int {
	pids := make([]int, 0, len(st.jobs))
	for pid := range st.jobs {
		pids = append(pids, pid)
	}
	return pids
}

type Shell struct {
	config   *config.Config
	state    *State
	mode     *ModeController
	logger   *slog.Logger
	pid      int
	stdin    *os.File
	stdout   *os.File
	stderr   *os.File
	reader   *bufio.Reader
	terminal bool
}

type Option func(*Shell)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

// WithStdio replaces the standard streams the shell reads, writes and hands
// to its jobs.
func WithStdio(stdin, stdout, stderr *os.File) Option {
	return func(s *Shell) {
		s.stdin = stdin
		s.stdout = stdout
		s.stderr = stderr
	}
}

func New(cfg *config.Config, opts ...Option) (*Shell, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.SpawnBinary == "" {
		return nil, fmt.Errorf("error initializing shell: %w", config.ErrNoSpawnBinary)
	}

	s := &Shell{
		config: cfg,
		state:  newState(),
		logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)})),
		pid:    os.Getpid(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.reader = bufio.NewReader(s.stdin)
	s.terminal = isatty.IsTerminal(s.stdin.Fd())
	s.mode = NewModeController(int(s.stdout.Fd()))
	return s, nil
}

func (s *Shell) State() *State {
	return s.state
}

func (s *Shell) Mode() *ModeController {
	return s.mode
}

// Run is the prompt loop. It returns nil when the user exits or input ends,
// and an error only when the shell cannot go on.
func (s *Shell) Run() error {
	s.mode.Start()
	defer s.mode.Stop()

	for {
		s.reapFinished()
		fmt.Fprint(s.stdout, prompt)

		line, err := s.reader.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				if s.terminal {
					fmt.Fprintln(s.stdout)
				}
				s.logger.Debug("end of input")
				return nil
			}
			return fmt.Errorf("error reading input: %w", err)
		}

		if err := s.Execute(line); err != nil {
			if errors.Is(err, ErrExit) {
				return nil
			}
			return err
		}
	}
}

// Execute runs one input line. Only errors that end the shell are returned.
func (s *Shell) Execute(line string) error {
	cmd, ok := command.Parse(line, s.pid)
	if !ok {
		return nil
	}
	if handled, err := s.executeBuiltin(cmd); handled {
		return err
	}
	return s.runExternal(cmd)
}
