package autoscaler

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ComposeDriver reconciles a local docker-compose worker service.
// ListWorkers counts running containers whose name contains "worker";
// ScaleTo invokes `compose up -d --scale worker=n`.
type ComposeDriver struct {
	ComposeFile    string
	ComposeProject string
	ServiceName    string
}

// NewComposeDriver builds a ComposeDriver for the given compose file
// and project name. ServiceName defaults to "worker".
func NewComposeDriver(composeFile, composeProject string) *ComposeDriver {
	return &ComposeDriver{
		ComposeFile:    composeFile,
		ComposeProject: composeProject,
		ServiceName:    "worker",
	}
}

func (d *ComposeDriver) baseArgs() []string {
	var args []string
	if d.ComposeFile != "" {
		args = append(args, "-f", d.ComposeFile)
	}
	if d.ComposeProject != "" {
		args = append(args, "-p", d.ComposeProject)
	}
	return args
}

// ListWorkers shells out to `docker compose ps` and counts lines
// whose container name contains "worker".
func (d *ComposeDriver) ListWorkers(ctx context.Context) (int, error) {
	args := append(d.baseArgs(), "ps", "--format", "{{.Name}}")
	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("compose ps: %w", err)
	}

	count := 0
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.Contains(line, d.ServiceName) {
			count++
		}
	}
	return count, nil
}

// ScaleTo runs `docker compose up -d --scale worker=n`.
func (d *ComposeDriver) ScaleTo(ctx context.Context, n int) error {
	args := append(d.baseArgs(), "up", "-d", "--scale", fmt.Sprintf("%s=%d", d.ServiceName, n))
	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("compose scale: %w: %s", err, out.String())
	}
	return nil
}
