package generation

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
)

// DefaultCommand is the binary CommandBackend invokes
const DefaultCommand = "ollama"

// CommandBackend runs `<command> run <model>` with the prompt on stdin.
// Temperature and token limits are not passed; the CLI uses model defaults.
type CommandBackend struct {
	command string
}

var _ interfaces.GenerationBackend = (*CommandBackend)(nil)

// NewCommandBackend creates a subprocess backend. An empty command means DefaultCommand.
func NewCommandBackend(command string) *CommandBackend {
	if command == "" {
		command = DefaultCommand
	}
	return &CommandBackend{command: command}
}

// Name returns the backend name
func (b *CommandBackend) Name() string {
	return "command"
}

// Generate runs the subprocess and returns its trimmed stdout
func (b *CommandBackend) Generate(ctx context.Context, prompt string, params model.GenerateParams) (string, error) {
	path, err := exec.LookPath(b.command)
	if err != nil {
		return "", goerr.Wrap(ErrUnavailable, "generation command not found",
			goerr.V("command", b.command),
			goerr.V("cause", err.Error()))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "run", params.Model)
	cmd.Stdin = strings.NewReader(prompt)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", goerr.Wrap(ctxErr, "generation command aborted", goerr.V("model", params.Model))
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", goerr.Wrap(ErrExit, strings.TrimSpace(stderr.String()),
				goerr.V("model", params.Model),
				goerr.V("exit_code", exitErr.ExitCode()))
		}
		return "", goerr.Wrap(err, "failed to run generation command", goerr.V("model", params.Model))
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", goerr.Wrap(ErrEmptyOutput, "generation command printed nothing", goerr.V("model", params.Model))
	}
	return text, nil
}
