package tui

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const binDir = "bin"

// "Inserted:        12" style lines printed by the ingester's report
var reportLine = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*):\s+(\d+)$`)

// builds ./cmd/<name> into bin/ unless a binary is already there
func ensureBinary(name string) (string, error) {
	path := filepath.Join(binDir, name)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	out, err := exec.Command("go", "build", "-o", path, "./cmd/"+name).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to build %s: %w: %s", name, err, lastLine(out))
	}

	return path, nil
}

// launches the server in the background, logging to bin/server.log,
// and reports once it answers pings
func startServer(client *Client) tea.Cmd {
	return func() tea.Msg {
		path, err := ensureBinary("server")
		if err != nil {
			return ServerStartedMsg{err: err}
		}

		logFile, err := os.Create(filepath.Join(binDir, "server.log"))
		if err != nil {
			return ServerStartedMsg{err: fmt.Errorf("failed to create server log: %w", err)}
		}

		cmd := exec.Command(path)
		cmd.Stdout = logFile
		cmd.Stderr = logFile

		if err := cmd.Start(); err != nil {
			logFile.Close() //nolint:errcheck,gosec
			return ServerStartedMsg{err: err}
		}

		exited := make(chan error, 1)
		go func() {
			exited <- cmd.Wait()
			logFile.Close() //nolint:errcheck,gosec
		}()

		ctx, cancel := context.WithTimeout(context.Background(), serverStartTimeout)
		defer cancel()

		ready := make(chan error, 1)
		go func() { ready <- client.WaitReady(ctx) }()

		select {
		case err := <-ready:
			return ServerStartedMsg{err: err}
		case err := <-exited:
			return ServerStartedMsg{err: fmt.Errorf("server exited (%v), see %s", err, logFile.Name())}
		}
	}
}

// runs a one-shot pgAdmin history ingestion and summarizes its report
func runIngester() tea.Msg {
	path, err := ensureBinary("ingester")
	if err != nil {
		return IngesterCompleteMsg{err: err}
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.Command(path, "history", "--progress=false")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return IngesterCompleteMsg{err: fmt.Errorf("%w: %s", err, lastLine(stderr.Bytes()))}
	}

	return IngesterCompleteMsg{summary: summarizeReport(stdout.String())}
}

// compacts the ingester's report into one line
func summarizeReport(out string) string {
	var parts []string

	for _, line := range strings.Split(out, "\n") {
		m := reportLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		parts = append(parts, strings.ToLower(m[1])+" "+m[2])
	}

	if len(parts) == 0 {
		return "done"
	}

	return strings.Join(parts, ", ")
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
