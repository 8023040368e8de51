package yarncommands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	cache "github.com/RobsonDevCode/lockaudit/internal/caching"
	cmdmodels "github.com/RobsonDevCode/lockaudit/internal/thirdPartyCommands/models"
)

var (
	// executable could not be found or started
	ErrProcessLaunch = errors.New("process launch failure")
	// calling context was cancelled while waiting on the process
	ErrProcessInterrupted = errors.New("process interrupted")
)

const probeCacheKey = "yarn-probe"

type YarnCommandService interface {
	RunAudit(dir string, skipDevDependencies bool, ctx context.Context) (cmdmodels.ProcessResult, error)
	Probe(ctx context.Context) (int, error)
}

type YarnCommandExecutor struct {
	cache *cache.Cache
}

func NewYarnCommandExecutor(cache *cache.Cache) *YarnCommandExecutor {
	return &YarnCommandExecutor{
		cache: cache,
	}
}

// RunAudit launches yarn's offline audit in the lockfile's directory. Offline
// audit always fails to reach the registry so the exit code is not
// authoritative, callers judge success by whether the audit request line can
// be recovered from stdout.
func (y *YarnCommandExecutor) RunAudit(dir string, skipDevDependencies bool, ctx context.Context) (cmdmodels.ProcessResult, error) {
	args := []string{"audit", "--offline"}
	if skipDevDependencies {
		args = append(args, "--groups", "dependencies")
	}
	args = append(args, "--json", "--verbose")

	return run("yarn", args, dir, ctx)
}

// Probe checks the yarn executable is present with a harmless help
// invocation. Concurrent scans share a single invocation through the cache.
func (y *YarnCommandExecutor) Probe(ctx context.Context) (int, error) {
	response, err := y.cache.GetOrCreate(probeCacheKey, time.Hour, func() (interface{}, error) {
		probe, err := run("yarn", []string{"--help"}, "", ctx)
		if err != nil {
			return nil, err
		}
		return probe.ExitCode, nil
	})
	if err != nil {
		return 0, err
	}

	exitCode, ok := response.(int)
	if !ok {
		return 0, fmt.Errorf("unexpected probe response type, could not map correctly")
	}

	return exitCode, nil
}

func run(name string, args []string, dir string, ctx context.Context) (cmdmodels.ProcessResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	cmd.Env = os.Environ()

	// separate writers so both pipes are drained concurrently and the child
	// can never block on a full buffer
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		// a context cancelled before the process starts is still a
		// cancellation, not a missing executable
		if ctx.Err() != nil {
			return cmdmodels.ProcessResult{}, fmt.Errorf("%w: %s: %w", ErrProcessInterrupted, name, ctx.Err())
		}
		return cmdmodels.ProcessResult{}, fmt.Errorf("%w: starting %s: %v", ErrProcessLaunch, name, err)
	}

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		// CommandContext has already killed the child, re-signal the
		// cancellation instead of swallowing it
		return cmdmodels.ProcessResult{}, fmt.Errorf("%w: %s: %w", ErrProcessInterrupted, name, ctx.Err())
	}

	exitCode := 0
	if waitErr != nil {
		var exitError *exec.ExitError
		if errors.As(waitErr, &exitError) {
			exitCode = exitError.ExitCode()
		} else {
			return cmdmodels.ProcessResult{}, fmt.Errorf("%w: waiting on %s: %v", ErrProcessLaunch, name, waitErr)
		}
	}

	return cmdmodels.ProcessResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
