package capture

import (
	"bytes"
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// State is the observable recording state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateListening
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	default:
		return "idle"
	}
}

// Session drives one microphone at a time through Idle -> Starting ->
// Listening -> Idle. When a recording stops, the accumulated chunks are
// concatenated into a Clip and handed to the completion callback.
type Session struct {
	device Device
	mime   string
	logger *log.Logger
	onClip func(Clip)

	mu    sync.Mutex
	state State
	gen   uint64
}

func NewSession(
	device Device,
	mime string,
	logger *log.Logger,
	onClip func(Clip),
) *Session {
	return &Session{
		device: device,
		mime:   mime,
		logger: logger,
		onClip: onClip,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start requests the microphone and begins accumulating chunks. Calling it
// while already starting or listening is a no-op. Open may suspend on the
// permission prompt; each attempt carries a generation number, so a grant
// that resolves after the session has moved on (stopped, or stopped and
// restarted) is discarded and its stream closed instead of revived.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStarting
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	chunks, err := s.device.Open(ctx)

	s.mu.Lock()
	if s.gen != gen {
		// This grant was abandoned while pending. Whatever it opened must
		// not stay held, and its chunks never become a clip.
		s.mu.Unlock()
		if err == nil {
			s.device.Close()
			go s.drain(chunks)
		}
		return nil
	}
	if err != nil {
		s.state = StateIdle
		s.mu.Unlock()
		return err
	}
	s.state = StateListening
	s.mu.Unlock()

	s.logger.Debug("recording", "state", StateListening)
	go s.collect(chunks)
	return nil
}

// Stop releases the microphone unconditionally and returns the session to
// Idle. Chunk finalization continues in the background; the completion
// callback fires once the device has delivered everything it buffered.
func (s *Session) Stop() {
	s.mu.Lock()
	switch s.state {
	case StateIdle:
		s.mu.Unlock()
		return
	case StateStarting:
		// No active stream yet; advance the generation so the pending
		// grant finds itself abandoned when it resolves.
		s.gen++
		s.state = StateIdle
		s.mu.Unlock()
		return
	}
	s.gen++
	s.state = StateIdle
	s.mu.Unlock()

	if err := s.device.Close(); err != nil {
		s.logger.Error("release capture device", "error", err)
	}
}

// collect concatenates chunks in delivery order until the device closes the
// channel, then invokes the completion callback with the finalized clip.
func (s *Session) collect(chunks <-chan Chunk) {
	var buf bytes.Buffer
	for chunk := range chunks {
		buf.Write(chunk)
	}
	s.logger.Debug("recording finalized", "bytes", buf.Len())
	if s.onClip != nil {
		s.onClip(Clip{Data: buf.Bytes(), MIME: s.mime})
	}
}

// drain discards chunks from an abandoned grant so the device goroutine can
// finish. No clip is produced.
func (s *Session) drain(chunks <-chan Chunk) {
	for range chunks {
	}
}
