// Package tts speaks transcript text out loud, either through a local
// speech-synthesis command or by streaming ElevenLabs audio into a player.
package tts

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/haguro/elevenlabs-go"
)

// SpeechGenerator produces synthesized speech for a piece of text, streaming
// the encoded audio into the writer as it arrives.
type SpeechGenerator interface {
	TextToSpeechStreaming(ctx context.Context, text string, writer io.Writer) error
}

type ElevenLabsSpeechGenerator struct {
	apiKey  string
	voiceID string
	modelID string
}

const (
	defaultVoiceID = "pKLLpypGseGMUjkb5fEZ"
	defaultModelID = "eleven_turbo_v2_5"
)

// NewElevenLabsSpeechGenerator builds a generator for the given voice and
// model; either may be empty to take the default.
func NewElevenLabsSpeechGenerator(
	apiKey, voiceID, modelID string,
) *ElevenLabsSpeechGenerator {
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	if modelID == "" {
		modelID = defaultModelID
	}
	return &ElevenLabsSpeechGenerator{
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: modelID,
	}
}

func (e *ElevenLabsSpeechGenerator) TextToSpeechStreaming(
	ctx context.Context,
	text string,
	writer io.Writer,
) error {
	client := elevenlabs.NewClient(ctx, e.apiKey, 30*time.Second)
	ttsReq := elevenlabs.TextToSpeechRequest{
		Text:    text,
		ModelID: e.modelID,
	}

	err := client.TextToSpeechStream(writer, e.voiceID, ttsReq)
	if err != nil {
		return fmt.Errorf("failed to generate speech: %w", err)
	}
	return nil
}
