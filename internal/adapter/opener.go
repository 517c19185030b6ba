package adapter

import (
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Opener shows poster and backdrop URLs in an external image viewer
type Opener struct {
	command string   // configured viewer command, empty for auto-detection
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// start runs a command without waiting for it
	start func(name string, args ...string) error
}

// viewerPath is one way to launch a viewer. "open-a:" paths go through
// macOS open -a.
type viewerPath struct {
	path string
}

// viewers registry: platform -> launch paths to try in order
var viewers = map[string][]viewerPath{
	"darwin":  {{path: "open-a:Preview"}},
	"linux":   {{path: "imv"}, {path: "feh"}, {path: "eog"}, {path: "sxiv"}},
	"windows": {},
}

// NewOpener creates an Opener. An empty command auto-detects a viewer and
// falls back to the system URL handler.
func NewOpener(command string, args []string, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command: command,
		args:    args,
		logger:  logger,
		start:   startCommand,
	}
}

func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

// Open shows url in the configured viewer, a detected viewer or the
// system default
func (o *Opener) Open(url string) error {
	if url == "" {
		return errors.New("no image for this movie")
	}

	if o.command != "" {
		args := append(append([]string{}, o.args...), url)
		o.logger.Info("opening with configured viewer", "command", o.command, "url", url)
		return o.start(o.command, args...)
	}

	if name, err := o.detectAndOpen(url); err == nil {
		o.logger.Info("opened with detected viewer", "viewer", name)
		return nil
	}

	return o.openDefault(url)
}

// detectAndOpen tries the platform's candidate viewers in order
func (o *Opener) detectAndOpen(url string) (string, error) {
	for _, vp := range viewers[runtime.GOOS] {
		var err error
		if app, ok := strings.CutPrefix(vp.path, "open-a:"); ok {
			err = o.start("open", "-a", app, url)
		} else {
			err = o.start(vp.path, url)
		}
		if err == nil {
			return filepath.Base(vp.path), nil
		}
		o.logger.Debug("viewer not available", "path", vp.path, "error", err)
	}
	return "", errors.New("no candidate viewers found")
}

// openDefault opens the URL using the system default handler
func (o *Opener) openDefault(url string) error {
	o.logger.Info("opening with system default", "os", runtime.GOOS, "url", url)

	switch runtime.GOOS {
	case "darwin":
		return o.start("open", url)
	case "windows":
		return o.start("cmd", "/c", "start", "", url)
	default:
		return o.start("xdg-open", url)
	}
}
