package shell

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// reapFinished collects every child that has already ended without
// blocking, and reports the ones that were background jobs.
func (s *Shell) reapFinished() {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, unix.WNOHANG, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || pid <= 0 {
			return
		}

		outcome := outcomeOf(ws)
		if _, ok := s.state.jobs[pid]; !ok {
			s.logger.Debug("reaped untracked child", "pid", pid, "outcome", outcome.String())
			continue
		}
		delete(s.state.jobs, pid)
		s.logger.Info("background job finished", "pid", pid, "outcome", outcome.String())
		fmt.Fprintf(s.stdout, "background pid %d is done: %s\n", pid, outcome)
	}
}
