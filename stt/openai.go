package stt

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"vox.town/transcript"
)

// WhisperTranscriber sends sources to the OpenAI Whisper API instead of the
// local backend. It satisfies the same Transcriber contract, so the rest of
// the studio does not care which one is configured.
type WhisperTranscriber struct {
	client *openai.Client
}

func NewWhisperTranscriber(apiKey string) *WhisperTranscriber {
	return &WhisperTranscriber{client: openai.NewClient(apiKey)}
}

func (w *WhisperTranscriber) Transcribe(
	ctx context.Context,
	src Source,
) ([]transcript.Segment, error) {
	if err := ValidateSource(src); err != nil {
		return nil, err
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: src.Name,
		Reader:   bytes.NewReader(src.Data),
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendRejected, err)
	}

	segments := make([]transcript.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, transcript.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return segments, nil
}
