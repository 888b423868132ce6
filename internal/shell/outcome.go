package shell

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// ExitOutcome is how a job ended: with an exit code or killed by a signal.
// The zero value is a successful exit.
type ExitOutcome struct {
	signaled bool
	value    int
}

func Exited(code int) ExitOutcome {
	return ExitOutcome{value: code}
}

func Signaled(sig int) ExitOutcome {
	return ExitOutcome{signaled: true, value: sig}
}

func outcomeOf(ws unix.WaitStatus) ExitOutcome {
	if ws.Signaled() {
		return Signaled(int(ws.Signal()))
	}
	return Exited(ws.ExitStatus())
}

// Terminated reports whether the job was killed by a signal.
func (o ExitOutcome) Terminated() bool {
	return o.signaled
}

func (o ExitOutcome) String() string {
	if o.signaled {
		return fmt.Sprintf("terminated by signal %d", o.value)
	}
	return fmt.Sprintf("exit value %d", o.value)
}
