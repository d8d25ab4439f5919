package utility

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Runner executes external commands. Shell is the production implementation.
type Runner interface {
	Execute(ctx context.Context, name string, args []string, opts *ExecOptions) (*Result, error)
}

// Shell provides command execution capabilities
type Shell struct {
	logger *Logger
}

// Result contains the output of a command execution
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
	Duration time.Duration
	Command  string
}

// ExecOptions configures command execution
type ExecOptions struct {
	Timeout        time.Duration
	StdoutCallback func(line string)
	StderrCallback func(line string)
	Env            map[string]string
	WorkDir        string
}

// NewShell creates a new Shell executor
func NewShell(logger *Logger) *Shell {
	return &Shell{logger: logger}
}

// Execute runs name with args directly (no shell interpolation), so monitor
// names and mode strings are passed through verbatim.
func (s *Shell) Execute(ctx context.Context, name string, args []string, opts *ExecOptions) (*Result, error) {
	if opts == nil {
		opts = &ExecOptions{}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	command := strings.TrimSpace(name + " " + strings.Join(args, " "))

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	startTime := time.Now()
	cmd := exec.CommandContext(execCtx, name, args...)

	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), envMapToSlice(opts.Env)...)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("exec: %s", command)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	var stdoutBuf bytes.Buffer
	stdoutDone := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(stdoutPipe)
		// hyprctl -j output for many monitors easily exceeds the 64K default
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			stdoutBuf.WriteString(line + "\n")
			if opts.StdoutCallback != nil {
				opts.StdoutCallback(line)
			}
		}
		close(stdoutDone)
	}()

	var stderrBuf bytes.Buffer
	stderrDone := make(chan struct{})
	go func() {
		scanner := bufio.NewScanner(stderrPipe)
		for scanner.Scan() {
			line := scanner.Text()
			stderrBuf.WriteString(line + "\n")
			if opts.StderrCallback != nil {
				opts.StderrCallback(line)
			}
		}
		close(stderrDone)
	}()

	<-stdoutDone
	<-stderrDone

	err = cmd.Wait()

	result := &Result{
		Stdout:   strings.TrimSpace(stdoutBuf.String()),
		Stderr:   strings.TrimSpace(stderrBuf.String()),
		Duration: time.Since(startTime),
		Command:  command,
	}

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
		result.ExitCode = -1
		return result, fmt.Errorf("command timed out after %v", timeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
			return result, fmt.Errorf("command failed: %w", err)
		}
	}

	return result, nil
}

// envMapToSlice converts a map of environment variables to a slice
func envMapToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for key, value := range env {
		result = append(result, fmt.Sprintf("%s=%s", key, value))
	}
	return result
}
