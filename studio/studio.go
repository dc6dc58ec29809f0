// Package studio is the session controller: it owns the one transcript and
// the one-slot error state, and every UI (terminal or web) drives it through
// the same named operations.
package studio

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"

	"vox.town/capture"
	"vox.town/stt"
	"vox.town/transcript"
	"vox.town/tts"
)

// PDFGenerator renders transcript text into PDF bytes. The backend client
// implements it; the Whisper provider does not, in which case PDF export is
// simply unavailable.
type PDFGenerator interface {
	GeneratePDF(ctx context.Context, text string) ([]byte, error)
}

// Options wires a Studio together.
type Options struct {
	Device   capture.Device
	Pipeline stt.Transcriber
	PDF      PDFGenerator
	Speaker  tts.Speaker
	Sink     ExportSink
	Logger   *log.Logger

	// OnChange fires after every state mutation, outside the state lock.
	// UIs use it to re-render or push updates.
	OnChange func()
}

// Studio holds all mutable session state. There is exactly one transcript
// and one error message slot; both are only ever touched through the
// operations below.
type Studio struct {
	session  *capture.Session
	pipeline stt.Transcriber
	pdf      PDFGenerator
	speaker  tts.Speaker
	sink     ExportSink
	logger   *log.Logger
	onChange func()

	mu          sync.Mutex
	transcript  transcript.Transcript
	errMsg      string
	inflight    int
	speakCtx    context.Context
	speakCancel context.CancelFunc
	lastClip    *capture.Clip

	now       func() time.Time
	writeClip func(string) error
}

func New(opts Options) *Studio {
	s := &Studio{
		pipeline:  opts.Pipeline,
		pdf:       opts.PDF,
		speaker:   opts.Speaker,
		sink:      opts.Sink,
		logger:    opts.Logger,
		onChange:  opts.OnChange,
		now:       time.Now,
		writeClip: clipboard.WriteAll,
	}
	s.session = capture.NewSession(
		opts.Device,
		capture.MIMEWebmOpus,
		opts.Logger,
		s.handleClip,
	)
	return s
}

// SetOnChange installs the change callback. Call it during wiring, before
// any recording or submission starts.
func (s *Studio) SetOnChange(f func()) {
	s.onChange = f
}

func (s *Studio) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// fail puts a failure into the error slot, superseding whatever was there.
func (s *Studio) fail(err error) {
	s.mu.Lock()
	s.errMsg = err.Error()
	s.mu.Unlock()
	s.logger.Error("studio", "error", err)
	s.notify()
}

// Text returns the flattened transcript text.
func (s *Studio) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Text()
}

// SetText replaces the display text after a manual edit. The segment list is
// deliberately untouched: caption exports keep reflecting the original
// transcription.
func (s *Studio) SetText(text string) {
	s.mu.Lock()
	s.transcript.SetText(text)
	s.mu.Unlock()
	s.notify()
}

// Segments returns a copy of the accumulated segment list.
func (s *Studio) Segments() []transcript.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Segments()
}

// Err returns the current error message, or "" when the slot is clear.
func (s *Studio) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// DismissError clears the error slot and nothing else.
func (s *Studio) DismissError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
}

// Loading reports whether any submission is in flight.
func (s *Studio) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// RecordingState exposes the capture state machine's observable state.
func (s *Studio) RecordingState() capture.State {
	return s.session.State()
}

// StartRecording requests the microphone. It blocks until the grant
// resolves, so UIs call it from their own goroutine or command. Failures
// land in the error slot and are returned.
func (s *Studio) StartRecording(ctx context.Context) error {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()

	if err := s.session.Start(ctx); err != nil {
		s.fail(err)
		return err
	}
	s.notify()
	return nil
}

// StopRecording releases the microphone immediately. The finalized clip is
// submitted to the pipeline once the capture facility delivers it.
func (s *Studio) StopRecording() {
	s.session.Stop()
	s.notify()
}

// handleClip receives the finalized recording and feeds it through the same
// upload path a hand-picked file takes.
func (s *Studio) handleClip(clip capture.Clip) {
	if len(clip.Data) == 0 {
		return
	}
	s.mu.Lock()
	s.lastClip = &clip
	name := fmt.Sprintf("recording_%d.webm", s.now().UnixMilli())
	s.mu.Unlock()

	go s.Submit(context.Background(), stt.Source{
		Name: name,
		MIME: clip.MIME,
		Data: clip.Data,
	})
}

// LastClip returns the most recent finished recording, if any.
func (s *Studio) LastClip() (capture.Clip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastClip == nil {
		return capture.Clip{}, false
	}
	return *s.lastClip, true
}

// Submit uploads one source and appends the returned segments. There is no
// queueing and no retry; concurrent submissions append in completion order,
// which is the long-standing behavior when a recording finishes while a
// picked file is still uploading.
func (s *Studio) Submit(ctx context.Context, src stt.Source) error {
	s.mu.Lock()
	s.inflight++
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()

	segments, err := s.pipeline.Transcribe(ctx, src)

	s.mu.Lock()
	s.inflight--
	if err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.logger.Error("transcription failed", "file", src.Name, "error", err)
		s.notify()
		return err
	}
	s.transcript.Append(segments)
	s.mu.Unlock()

	s.logger.Info("transcription appended", "file", src.Name, "segments", len(segments))
	s.notify()
	return nil
}

// Copy puts the flattened transcript text on the clipboard verbatim.
func (s *Studio) Copy() error {
	if err := s.writeClip(s.Text()); err != nil {
		err = fmt.Errorf("failed to copy to clipboard: %w", err)
		s.fail(err)
		return err
	}
	return nil
}

// SpeakToggle starts speaking the transcript, or cancels the utterance
// already in progress. It never queues.
func (s *Studio) SpeakToggle() {
	s.mu.Lock()
	if cancel := s.speakCancel; cancel != nil {
		s.speakCancel = nil
		s.speakCtx = nil
		s.mu.Unlock()
		cancel()
		s.notify()
		return
	}
	text := s.transcript.Text()
	if strings.TrimSpace(text) == "" {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.speakCancel = cancel
	s.speakCtx = ctx
	s.mu.Unlock()
	s.notify()

	go func() {
		err := s.speaker.Speak(ctx, text)
		s.mu.Lock()
		if s.speakCtx == ctx {
			s.speakCancel = nil
			s.speakCtx = nil
		}
		s.mu.Unlock()
		if err != nil && ctx.Err() == nil {
			s.fail(fmt.Errorf("speech failed: %w", err))
			return
		}
		s.notify()
	}()
}

// Speaking reports whether an utterance is in progress.
func (s *Studio) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speakCancel != nil
}

// Clear cancels any in-progress speech, then resets the transcript and the
// error slot.
func (s *Studio) Clear() {
	s.mu.Lock()
	cancel := s.speakCancel
	s.speakCancel = nil
	s.speakCtx = nil
	s.transcript.Reset()
	s.errMsg = ""
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.notify()
}
