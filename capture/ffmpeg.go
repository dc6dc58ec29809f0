package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// MIMEWebmOpus is the container every recording is finalized with.
const MIMEWebmOpus = "audio/webm"

// FFmpegDevice records the system microphone by running ffmpeg with an audio
// grab input and streaming a webm/opus container from its stdout. Grab and
// Input select the platform capture source, e.g. ("pulse", "default") on
// Linux or ("avfoundation", ":0") on macOS.
type FFmpegDevice struct {
	Grab   string
	Input  string
	Logger *log.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	closed bool
}

func NewFFmpegDevice(grab, input string, logger *log.Logger) *FFmpegDevice {
	return &FFmpegDevice{Grab: grab, Input: input, Logger: logger}
}

// Open starts ffmpeg and blocks until it either produces its first container
// bytes (the grant) or exits before producing any (denial, missing device).
func (d *FFmpegDevice) Open(ctx context.Context) (<-chan Chunk, error) {
	d.mu.Lock()
	d.closed = false
	d.mu.Unlock()

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", d.Grab,
		"-i", d.Input,
		"-c:a", "libopus",
		"-b:a", "64k",
		"-f", "webm",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: ffmpeg is not installed", ErrDeviceNotFound)
		}
		return nil, err
	}

	d.mu.Lock()
	d.cmd = cmd
	d.mu.Unlock()

	// ffmpeg emits the container header as soon as the input device opens,
	// so the first read doubles as the permission grant.
	first := make([]byte, 4096)
	n, err := stdout.Read(first)
	if err != nil {
		cmd.Wait()
		return nil, classifyCaptureError(stderr.String())
	}

	chunks := make(chan Chunk, 16)
	chunks <- Chunk(append([]byte(nil), first[:n]...))

	go func() {
		defer close(chunks)
		buf := make([]byte, 4096)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				chunks <- Chunk(append([]byte(nil), buf[:n]...))
			}
			if err != nil {
				if err != io.EOF {
					d.Logger.Error("read capture stream", "error", err)
				}
				break
			}
		}
		if err := cmd.Wait(); err != nil && !d.wasClosed() {
			d.Logger.Error("ffmpeg exited", "error", err, "stderr", strings.TrimSpace(stderr.String()))
		}
	}()

	return chunks, nil
}

// Close interrupts ffmpeg, which flushes its buffered output and exits. The
// microphone is released as soon as the signal lands; remaining bytes drain
// through the chunk channel until EOF.
func (d *FFmpegDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cmd == nil || d.cmd.Process == nil || d.closed {
		return nil
	}
	d.closed = true
	return d.cmd.Process.Signal(os.Interrupt)
}

func (d *FFmpegDevice) wasClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// DefaultGrab picks the ffmpeg grab format and input for the host platform.
func DefaultGrab() (grab, input string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":0"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "pulse", "default"
	}
}

func classifyCaptureError(stderr string) error {
	msg := strings.TrimSpace(stderr)
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "permission denied"),
		strings.Contains(lower, "not allowed"):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, msg)
	case strings.Contains(lower, "no such"),
		strings.Contains(lower, "cannot find"),
		strings.Contains(lower, "device not found"):
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, msg)
	case msg == "":
		return errors.New("capture failed before any audio was produced")
	default:
		return fmt.Errorf("capture failed: %s", msg)
	}
}
