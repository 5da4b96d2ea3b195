// Package sonoscli implements the catalog port by shelling out to the
// sonos command line tool's track search.
package sonoscli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/ewilliams-labs/trackfinder/internal/core/ports"
)

const defaultTimeout = 30 * time.Second

// DefaultCommand is the search command; query words are appended as arguments.
var DefaultCommand = []string{"sonos", "searchtrack"}

var (
	transientMarkers = []string{"AuthTokenExpired"}
	malformedMarkers = []string{"string indices must be integers"}
)

// Client runs searches through an external command.
type Client struct {
	command []string
	timeout time.Duration
	run     runFunc
}

type runFunc func(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)

var _ ports.CatalogSearcher = (*Client)(nil)

// NewClient builds a Client. An empty command uses DefaultCommand and a
// non-positive timeout uses 30s.
func NewClient(command []string, timeout time.Duration) *Client {
	if len(command) == 0 {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		command: append([]string(nil), command...),
		timeout: timeout,
		run:     execRun,
	}
}

// Search implements ports.CatalogSearcher.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return "", fmt.Errorf("sonoscli: empty query")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := append(append([]string(nil), c.command[1:]...), words...)
	stdout, stderr, err := c.run(ctx, c.command[0], args...)
	output := string(stdout) + string(stderr)

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("sonoscli: search %q timed out after %s", query, c.timeout)
		}
		return "", classify(query, output, err)
	}

	// The tool sometimes prints a traceback and still exits zero.
	if containsAny(output, transientMarkers) || containsAny(output, malformedMarkers) {
		return "", classify(query, output, errors.New(firstLine(output)))
	}

	return string(stdout), nil
}

func classify(query, output string, err error) error {
	detail := strings.TrimSpace(output)
	if detail == "" {
		detail = err.Error()
	}
	switch {
	case containsAny(output, transientMarkers):
		return &ports.TransientAuthError{Query: query, Err: errors.New(detail)}
	case containsAny(output, malformedMarkers):
		return &ports.MalformedResponseError{Query: query, Err: errors.New(detail)}
	default:
		return fmt.Errorf("sonoscli: search %q failed: %s: %w", query, detail, err)
	}
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- command comes from operator config
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
