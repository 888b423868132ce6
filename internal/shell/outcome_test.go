package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestExitOutcomeString(t *testing.T) {
	assert.Equal(t, "exit value 0", ExitOutcome{}.String())
	assert.Equal(t, "exit value 2", Exited(2).String())
	assert.Equal(t, "terminated by signal 15", Signaled(15).String())
	assert.False(t, Exited(1).Terminated())
	assert.True(t, Signaled(2).Terminated())
}

func TestOutcomeOfWaitStatus(t *testing.T) {
	assert.Equal(t, Exited(3), outcomeOf(unix.WaitStatus(3<<8)))
	assert.Equal(t, Signaled(int(unix.SIGKILL)), outcomeOf(unix.WaitStatus(unix.SIGKILL)))
}
