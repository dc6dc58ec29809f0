// Package capture owns the microphone recording lifecycle: requesting the
// device, accumulating audio chunks, and finalizing them into a single clip.
package capture

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied means the capture facility refused access to the
	// microphone.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrDeviceNotFound means no usable capture device exists.
	ErrDeviceNotFound = errors.New("no microphone found")
)

// Chunk is one piece of encoded audio as delivered by the capture facility.
type Chunk []byte

// Clip is a finalized recording: the concatenated chunks plus the container
// MIME type they were encoded with.
type Clip struct {
	Data []byte
	MIME string
}

// Device is the capture facility. Open requests access to the microphone,
// which may suspend on a permission prompt, and on success returns a channel
// of encoded audio chunks in capture order. Close releases the microphone
// immediately; any chunks already buffered still drain through the channel,
// which is closed once delivery is complete.
type Device interface {
	Open(ctx context.Context) (<-chan Chunk, error)
	Close() error
}
