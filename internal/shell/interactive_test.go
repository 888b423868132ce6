package shell

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// terminal drives a shell process through a pseudo terminal, so that the
// terminal's interrupt and suspend keys generate real signals.
type terminal struct {
	t    *testing.T
	ptmx *os.File
	cmd  *exec.Cmd

	mu  sync.Mutex
	buf bytes.Buffer
}

func startTerminal(t *testing.T) *terminal {
	t.Helper()
	if testing.Short() {
		t.Skip("interactive test")
	}

	cmd := exec.Command(os.Args[0])
	cmd.Env = append(os.Environ(), interactiveEnv+"=1")
	cmd.Dir = t.TempDir()
	ptmx, err := pty.Start(cmd)
	if err != nil {
		t.Skipf("no pseudo terminal available: %v", err)
	}

	term := &terminal{t: t, ptmx: ptmx, cmd: cmd}
	go func() {
		chunk := make([]byte, 1024)
		for {
			n, err := ptmx.Read(chunk)
			term.mu.Lock()
			term.buf.Write(chunk[:n])
			term.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()
	t.Cleanup(func() {
		cmd.Process.Kill()
		cmd.Wait()
		ptmx.Close()
	})
	return term
}

func (term *terminal) send(s string) {
	term.t.Helper()
	_, err := io.WriteString(term.ptmx, s)
	require.NoError(term.t, err)
}

// expect waits until want has been printed n times in total.
func (term *terminal) expect(want string, n int) {
	term.t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		term.mu.Lock()
		got := strings.Count(term.buf.String(), want)
		term.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	term.mu.Lock()
	defer term.mu.Unlock()
	term.t.Fatalf("timed out waiting for %d x %q, terminal shows:\n%s", n, want, term.buf.String())
}

func TestInteractiveSignals(t *testing.T) {
	term := startTerminal(t)
	term.expect(": ", 1)

	// Interrupt at the prompt leaves the shell alone.
	term.send("\x03")
	time.Sleep(200 * time.Millisecond)
	term.send("echo alive\n")
	// Once for the echoed input line, once for the output.
	term.expect("alive\r\n", 2)

	// Interrupt during a foreground job kills the job only.
	term.send("sleep 30\n")
	time.Sleep(time.Second)
	term.send("\x03")
	term.expect("terminated by signal 2\r\n", 1)
	term.send("status\n")
	term.expect("terminated by signal 2\r\n", 2)

	// Suspend toggles foreground-only mode.
	term.send("\x1a")
	term.expect("Entering foreground-only mode (& is now ignored)", 1)
	term.send("echo fg &\n")
	term.expect("fg\r\n", 1)
	term.send("\x1a")
	term.expect("Exiting foreground-only mode", 1)

	term.send("exit\n")
	done := make(chan error, 1)
	go func() { done <- term.cmd.Wait() }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("shell did not exit")
	}
}
