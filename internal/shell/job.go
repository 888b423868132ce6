package shell

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"smallsh/internal/command"
	"smallsh/internal/spawn"
)

// ErrSpawn wraps a failure to create a child process. The shell cannot
// continue after it.
var ErrSpawn = errors.New("cannot create child process")

// Job is a spawned program from start until it is reaped.
type Job struct {
	Pid        int
	Background bool
}

func (s *Shell) runExternal(cmd command.Command) error {
	if len(cmd.Argv) == 0 {
		return nil
	}
	if err := cmd.Validate(); err != nil {
		fmt.Fprintf(s.stderr, "%s: %v\n", cmd.Name(), err)
		s.state.last = Exited(1)
		return nil
	}

	background := cmd.Background
	if background && s.mode.ForegroundOnly() {
		s.logger.Debug("foreground-only mode, running in foreground", "command", cmd.String())
		background = false
	}

	job, err := s.startJob(cmd, background)
	if err != nil {
		s.logger.Error("spawn failed", "command", cmd.String(), "error", err)
		fmt.Fprintf(s.stderr, "%s: %v\n", cmd, err)
		return err
	}

	if job.Background {
		s.state.jobs[job.Pid] = struct{}{}
		fmt.Fprintf(s.stdout, "background pid is %d\n", job.Pid)
	} else {
		s.waitForeground(job)
	}

	s.reapFinished()
	return nil
}

func (s *Shell) startJob(cmd command.Command, background bool) (Job, error) {
	req := spawn.Request{
		Argv:       cmd.Argv,
		Input:      cmd.Input.Path,
		Output:     cmd.Output.Path,
		Background: background,
		DevNull:    s.config.DevNull,
	}

	proc, err := os.StartProcess(s.config.SpawnBinary, req.Args(s.config.SpawnBinary), &os.ProcAttr{
		Files: []*os.File{s.stdin, s.stdout, s.stderr},
	})
	if err != nil {
		return Job{}, fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	job := Job{Pid: proc.Pid, Background: background}
	// Jobs are waited for by pid with wait4 so the reap pass sees them.
	if err := proc.Release(); err != nil {
		s.logger.Warn("releasing process handle", "pid", job.Pid, "error", err)
	}

	s.logger.Info("job started", "pid", job.Pid, "background", background, "command", cmd.String())
	return job, nil
}

func (s *Shell) waitForeground(job Job) {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(job.Pid, &ws, 0, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			s.logger.Error("waiting for foreground job", "pid", job.Pid, "error", err)
			return
		}
		break
	}

	s.state.last = outcomeOf(ws)
	s.logger.Info("foreground job finished", "pid", job.Pid, "outcome", s.state.last.String())
	if s.state.last.Terminated() {
		fmt.Fprintln(s.stdout, s.state.last)
	}
}
