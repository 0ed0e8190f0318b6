// Package ptyshell spawns and manages the PTY-hosted child process whose
// output the window confines: PTY allocation, sizing, and the exit-watcher
// goroutine that notices the child has gone away.
package ptyshell

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// Session manages a pseudo-terminal connection to a single child command.
type Session struct {
	cmd *exec.Cmd
	pty *os.File

	mu       sync.Mutex
	exitedMu sync.Mutex
	exited   bool
	exitErr  error
}

// Start spawns command (or the user's login shell if command is empty)
// attached to a PTY of the given size.
func Start(command string, cols, rows uint16) (*Session, error) {
	shell := command
	if shell == "" {
		shell = findShell()
	}

	cmd := exec.Command(shell)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	cmd.Env = childEnv()

	if home, err := os.UserHomeDir(); err == nil {
		cmd.Dir = home
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("ptyshell: start %q: %w", shell, err)
	}

	s := &Session{cmd: cmd, pty: ptmx}

	go func() {
		err := cmd.Wait()
		s.exitedMu.Lock()
		s.exited = true
		s.exitErr = err
		s.exitedMu.Unlock()
	}()

	return s, nil
}

// findShell resolves the child command from $SHELL, falling back to
// /bin/sh, mirroring what a login session would run.
func findShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

func childEnv() []string {
	env := []string{
		"TERM=xterm-256color",
		"PATH=" + os.Getenv("PATH"),
	}
	if u, err := user.Current(); err == nil {
		env = append(env, "HOME="+u.HomeDir, "USER="+u.Username)
	}
	if lang := os.Getenv("LANG"); lang != "" {
		env = append(env, "LANG="+lang)
	}
	return env
}

// Fd returns the PTY master's file descriptor, for use in a select loop.
func (s *Session) Fd() uintptr { return s.pty.Fd() }

// Read reads child output from the PTY master.
func (s *Session) Read(buf []byte) (int, error) {
	return s.pty.Read(buf)
}

// Write sends input to the child through the PTY master.
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pty.Write(data)
}

// Resize updates the PTY's reported window size.
func (s *Session) Resize(cols, rows uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pty.Setsize(s.pty, &pty.Winsize{Cols: cols, Rows: rows})
}

// HasExited reports whether the child process has exited.
func (s *Session) HasExited() bool {
	s.exitedMu.Lock()
	defer s.exitedMu.Unlock()
	return s.exited
}

// ExitErr returns the error cmd.Wait returned, valid once HasExited is true.
func (s *Session) ExitErr() error {
	s.exitedMu.Lock()
	defer s.exitedMu.Unlock()
	return s.exitErr
}

// Close terminates the child process and releases the PTY.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	return s.pty.Close()
}
