package depotdownloader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/marcus-crane/depotfinder/config"
	"github.com/marcus-crane/depotfinder/credentials"
	"github.com/marcus-crane/depotfinder/shared"
)

type Request struct {
	AppID            string
	DepotID          string
	ManifestID       string
	Branch           string
	ManifestOnly     bool
	RememberPassword bool
	Credentials      credentials.Credentials
}

type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("DepotDownloader exited with code %d", e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

type Runner struct {
	Path   string
	Stdout io.Writer
	Logger *slog.Logger
}

func NewRunner(cfg config.Config) *Runner {
	return &Runner{
		Path:   resolvePath(cfg.DepotDownloader.Path),
		Stdout: os.Stdout,
		Logger: slog.Default(),
	}
}

// resolvePath prefers the configured location and otherwise looks for
// DepotDownloader on PATH.
func resolvePath(configured string) string {
	if _, err := os.Stat(configured); err == nil {
		return configured
	}
	if found, err := exec.LookPath("DepotDownloader"); err == nil {
		return found
	}
	return configured
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func Args(req Request) []string {
	args := []string{
		"-app", req.AppID,
		"-depot", req.DepotID,
	}
	if req.ManifestID != "" {
		args = append(args, "-manifest", req.ManifestID)
	}
	if req.ManifestOnly {
		args = append(args, "-manifest-only")
	}
	args = append(args,
		"-username", req.Credentials.Username,
		"-password", req.Credentials.Password,
	)
	if req.Branch != "" {
		args = append(args, "-beta", req.Branch)
	}
	if req.RememberPassword {
		args = append(args, "-remember-password")
	}
	return args
}

func redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i < len(out)-1; i++ {
		if out[i] == "-password" {
			out[i+1] = "********"
		}
	}
	return out
}

// Download runs DepotDownloader, copying each line of its output to r.Stdout
// as soon as it is printed.
func (r *Runner) Download(ctx context.Context, req Request) error {
	return r.run(ctx, req, r.Stdout)
}

// FetchManifest asks DepotDownloader for the manifest of a depot on a branch
// without downloading any content, returning everything it printed.
func (r *Runner) FetchManifest(ctx context.Context, appID, depotID, branch string, creds credentials.Credentials) (string, error) {
	if branch == "" {
		branch = shared.DEFAULT_BRANCH
	}
	var out bytes.Buffer
	err := r.run(ctx, Request{
		AppID:        appID,
		DepotID:      depotID,
		Branch:       branch,
		ManifestOnly: true,
		Credentials:  creds,
	}, &out)
	if err != nil {
		return out.String(), err
	}
	r.logger().Info("Manifest fetched",
		slog.String("app_id", appID),
		slog.String("depot_id", depotID),
		slog.String("branch", branch),
	)
	return out.String(), nil
}

func (r *Runner) run(ctx context.Context, req Request, stdout io.Writer) error {
	args := Args(req)
	log := r.logger().With(
		slog.String("app_id", req.AppID),
		slog.String("depot_id", req.DepotID),
	)
	log.Debug("Starting DepotDownloader",
		slog.String("path", r.Path),
		slog.String("args", strings.Join(redact(args), " ")),
	)

	cmd := exec.CommandContext(ctx, r.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start DepotDownloader at %s: %w", r.Path, err)
	}

	if stdout == nil {
		stdout = io.Discard
	}
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fmt.Fprintln(stdout, scanner.Text())
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// Keep draining so the process can't block on a full pipe
		io.Copy(stdout, pipe)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Error("DepotDownloader failed",
				slog.Int("exit_code", exitErr.ExitCode()),
				slog.String("stderr", strings.TrimSpace(stderr.String())),
			)
			return &ProcessError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String(), Err: err}
		}
		return err
	}
	if scanErr != nil {
		log.Warn("Failed to read all DepotDownloader output", slog.String("error", scanErr.Error()))
	}
	log.Debug("DepotDownloader finished")
	return nil
}
