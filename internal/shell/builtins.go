package shell

import (
	"fmt"
	"os"

	"smallsh/internal/command"
)

func (s *Shell) executeBuiltin(cmd command.Command) (bool, error) {
	switch cmd.Name() {
	case "cd":
		s.changeDirectory(cmd.Argv[1:])
		return true, nil
	case "exit":
		s.logger.Debug("exit requested", "background_jobs", len(s.state.jobs))
		return true, ErrExit
	case "status":
		s.showStatus()
		return true, nil
	default:
		return false, nil
	}
}

func (s *Shell) changeDirectory(args []string) {
	var dir string
	if len(args) == 0 {
		dir = os.Getenv("HOME")
	} else {
		dir = args[0]
	}

	if err := os.Chdir(dir); err != nil {
		s.logger.Debug("cd failed", "dir", dir, "error", err)
		fmt.Fprintln(s.stdout, "no such file or directory.")
	}
}

func (s *Shell) showStatus() {
	fmt.Fprintln(s.stdout, s.state.last)
}
