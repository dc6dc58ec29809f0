// Package stt turns finished audio into timed transcript segments by way of
// an external transcription backend.
package stt

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"vox.town/transcript"
)

var (
	// ErrInvalidFileType is returned before any network call when a source
	// is neither audio nor video.
	ErrInvalidFileType = errors.New("please choose an audio or video file")
	// ErrNetworkUnreachable means the backend could not be reached at all.
	ErrNetworkUnreachable = errors.New("transcription backend unreachable")
	// ErrBackendRejected means the backend answered with a non-success
	// status.
	ErrBackendRejected = errors.New("transcription backend rejected the request")
	// ErrMalformedResponse means the backend answered but without a usable
	// segment list.
	ErrMalformedResponse = errors.New("malformed transcription response")
)

// Source is one upload: a finished recording clip or a user-picked file.
type Source struct {
	Name string
	MIME string
	Data []byte
}

// Transcriber is anything that can turn a source into timed segments. The
// segments come back in the order the backend produced them; callers do not
// re-sort.
type Transcriber interface {
	Transcribe(ctx context.Context, src Source) ([]transcript.Segment, error)
}

// SourceFromFile reads a local file into a Source, deriving the MIME type
// from the extension and falling back to content sniffing.
func SourceFromFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, err
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return Source{
		Name: filepath.Base(path),
		MIME: mimeType,
		Data: data,
	}, nil
}

// ValidateSource rejects anything that is not audio or video before a single
// byte goes over the wire.
func ValidateSource(src Source) error {
	mime := strings.ToLower(src.MIME)
	if strings.HasPrefix(mime, "audio/") || strings.HasPrefix(mime, "video/") {
		return nil
	}
	return fmt.Errorf("%w (got %q)", ErrInvalidFileType, src.MIME)
}
