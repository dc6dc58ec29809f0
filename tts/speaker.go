package tts

import (
	"context"
	"os/exec"
	"runtime"
)

// Speaker turns text into audible speech, blocking until playback finishes
// or the context is canceled. Toggle semantics (a second request cancels
// instead of queueing) are the caller's concern.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// CommandSpeaker uses the platform speech-synthesis command: say on macOS,
// espeak elsewhere.
type CommandSpeaker struct {
	Command string
	Args    []string
}

func NewCommandSpeaker() *CommandSpeaker {
	if runtime.GOOS == "darwin" {
		return &CommandSpeaker{Command: "say"}
	}
	return &CommandSpeaker{Command: "espeak"}
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	args := append(append([]string(nil), s.Args...), text)
	return exec.CommandContext(ctx, s.Command, args...).Run()
}

// StreamSpeaker synthesizes speech with a SpeechGenerator and pipes the
// audio into ffplay as it streams in.
type StreamSpeaker struct {
	Generator SpeechGenerator
}

func NewStreamSpeaker(generator SpeechGenerator) *StreamSpeaker {
	return &StreamSpeaker{Generator: generator}
}

func (s *StreamSpeaker) Speak(ctx context.Context, text string) error {
	cmd := exec.CommandContext(
		ctx,
		"ffplay", "-autoexit", "-nodisp", "-loglevel", "quiet", "-",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	genErr := s.Generator.TextToSpeechStreaming(ctx, text, stdin)
	stdin.Close()

	if err := cmd.Wait(); err != nil && genErr == nil && ctx.Err() == nil {
		return err
	}
	if ctx.Err() != nil {
		// Canceled mid-utterance; not a failure.
		return nil
	}
	return genErr
}
