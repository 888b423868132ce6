package shell

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

var (
	enterForegroundOnly = []byte("\nEntering foreground-only mode (& is now ignored)\n" + prompt)
	exitForegroundOnly  = []byte("\nExiting foreground-only mode\n" + prompt)
)

// ModeController owns the shell's signal dispositions. SIGINT is ignored by
// the shell for its whole life; SIGTSTP flips foreground-only mode.
type ModeController struct {
	foregroundOnly atomic.Bool
	fd             int
	sigCh          chan os.Signal
	done           chan struct{}
	stopOnce       sync.Once
}

// NewModeController returns a controller that reports mode changes on the
// file descriptor fd.
func NewModeController(fd int) *ModeController {
	return &ModeController{
		fd:    fd,
		sigCh: make(chan os.Signal, 1),
		done:  make(chan struct{}),
	}
}

func (c *ModeController) Start() {
	signal.Ignore(unix.SIGINT)
	signal.Notify(c.sigCh, unix.SIGTSTP)
	go c.handleSignals()
}

func (c *ModeController) Stop() {
	c.stopOnce.Do(func() {
		signal.Stop(c.sigCh)
		signal.Reset(unix.SIGINT, unix.SIGTSTP)
		close(c.done)
	})
}

func (c *ModeController) handleSignals() {
	for {
		select {
		case <-c.sigCh:
			c.Toggle()
		case <-c.done:
			return
		}
	}
}

// Toggle flips foreground-only mode and announces the new mode with a single
// unbuffered write. It returns the new mode.
func (c *ModeController) Toggle() bool {
	for {
		old := c.foregroundOnly.Load()
		if !c.foregroundOnly.CompareAndSwap(old, !old) {
			continue
		}
		msg := enterForegroundOnly
		if old {
			msg = exitForegroundOnly
		}
		writeAll(c.fd, msg)
		return !old
	}
}

func (c *ModeController) ForegroundOnly() bool {
	return c.foregroundOnly.Load()
}

func writeAll(fd int, b []byte) {
	for len(b) > 0 {
		n, err := unix.Write(fd, b)
		if err == unix.EINTR {
			continue
		}
		if err != nil || n <= 0 {
			return
		}
		b = b[n:]
	}
}
