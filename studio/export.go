package studio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"vox.town/transcript"
)

// ExportSink saves generated export content somewhere the user can find it
// and returns the resulting location.
type ExportSink interface {
	Save(name, mime string, data []byte) (string, error)
}

// DirSink writes exports into a directory on disk.
type DirSink struct {
	Dir string
}

func (d DirSink) Save(name, _ string, data []byte) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(d.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// ExportKind selects one of the export formats.
type ExportKind string

const (
	ExportText        ExportKind = "text"
	ExportSRT         ExportKind = "srt"
	ExportVTT         ExportKind = "vtt"
	ExportTimestamped ExportKind = "timestamped"
	ExportPDF         ExportKind = "pdf"
)

// ExportKinds lists every kind, in menu order.
var ExportKinds = []ExportKind{
	ExportText,
	ExportSRT,
	ExportVTT,
	ExportTimestamped,
	ExportPDF,
}

var errNoPDFBackend = errors.New("PDF export needs the transcription backend")

// ErrUnknownExportKind reports an export kind outside ExportKinds.
var ErrUnknownExportKind = errors.New("unknown export kind")

// Render produces the content, filename, and MIME type for one export kind
// without saving anything. Text-based kinds are pure; PDF is a backend round
// trip.
func (s *Studio) Render(
	ctx context.Context,
	kind ExportKind,
) (name, mime string, data []byte, err error) {
	s.mu.Lock()
	text := s.transcript.Text()
	segments := s.transcript.Segments()
	stamp := s.now().UnixMilli()
	s.mu.Unlock()

	switch kind {
	case ExportText:
		return fmt.Sprintf("transcription_%d.txt", stamp),
			"text/plain", []byte(text), nil
	case ExportSRT:
		return fmt.Sprintf("transcription_%d.srt", stamp),
			"text/plain", []byte(transcript.GenerateSRT(segments)), nil
	case ExportVTT:
		return fmt.Sprintf("transcription_%d.vtt", stamp),
			"text/vtt", []byte(transcript.GenerateVTT(segments)), nil
	case ExportTimestamped:
		return fmt.Sprintf("transcription_%d.txt", stamp),
			"text/plain", []byte(transcript.GenerateTimestampedText(segments)), nil
	case ExportPDF:
		if s.pdf == nil {
			return "", "", nil, errNoPDFBackend
		}
		data, err = s.pdf.GeneratePDF(ctx, text)
		if err != nil {
			return "", "", nil, err
		}
		return "transcription.pdf", "application/pdf", data, nil
	default:
		return "", "", nil, fmt.Errorf("%w %q", ErrUnknownExportKind, kind)
	}
}

// Export renders one kind and hands it to the export sink. Failures land in
// the error slot.
func (s *Studio) Export(ctx context.Context, kind ExportKind) (string, error) {
	name, mime, data, err := s.Render(ctx, kind)
	if err != nil {
		s.fail(fmt.Errorf("export failed: %w", err))
		return "", err
	}
	path, err := s.sink.Save(name, mime, data)
	if err != nil {
		s.fail(fmt.Errorf("export failed: %w", err))
		return "", err
	}
	s.logger.Info("exported", "kind", kind, "path", path)
	s.notify()
	return path, nil
}

// SaveClip hands the last finished recording to the export sink so the user
// can play it back or keep it.
func (s *Studio) SaveClip() (string, error) {
	clip, ok := s.LastClip()
	if !ok {
		return "", errors.New("no recording to save")
	}
	s.mu.Lock()
	name := fmt.Sprintf("recording_%d.webm", s.now().UnixMilli())
	s.mu.Unlock()

	path, err := s.sink.Save(name, clip.MIME, clip.Data)
	if err != nil {
		s.fail(fmt.Errorf("export failed: %w", err))
		return "", err
	}
	return path, nil
}
