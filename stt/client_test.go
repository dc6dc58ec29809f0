package stt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func testClient(baseURL string) *Client {
	client := NewClient(baseURL, log.New(io.Discard))
	return client
}

func audioSource(name string) Source {
	return Source{Name: name, MIME: "audio/webm", Data: []byte("RIFFdata")}
}

func TestTranscribeSuccess(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/transcribe" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			file, header, err := r.FormFile("file")
			if err != nil {
				t.Fatalf("missing file field: %v", err)
			}
			defer file.Close()
			if header.Filename != "clip.webm" {
				t.Errorf("filename = %q, want clip.webm", header.Filename)
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"segments":[
				{"start":0,"end":1.5,"text":" Hello "},
				{"start":1.5,"end":3,"text":"world"}
			]}`)
		}),
	)
	defer server.Close()

	segments, err := testClient(server.URL).
		Transcribe(context.Background(), audioSource("clip.webm"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Text != " Hello " || segments[1].End != 3 {
		t.Errorf("segments decoded wrong: %+v", segments)
	}
}

func TestTranscribeRejectsNonAudio(t *testing.T) {
	called := false
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}),
	)
	defer server.Close()

	_, err := testClient(server.URL).Transcribe(
		context.Background(),
		Source{Name: "notes.txt", MIME: "text/plain", Data: []byte("hi")},
	)
	if !errors.Is(err, ErrInvalidFileType) {
		t.Fatalf("error = %v, want ErrInvalidFileType", err)
	}
	if called {
		t.Error("invalid file type still reached the backend")
	}
}

func TestTranscribeBackendRejected(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model exploded", http.StatusInternalServerError)
		}),
	)
	defer server.Close()

	_, err := testClient(server.URL).
		Transcribe(context.Background(), audioSource("clip.webm"))
	if !errors.Is(err, ErrBackendRejected) {
		t.Fatalf("error = %v, want ErrBackendRejected", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not mention the status", err)
	}
}

func TestTranscribeMalformedResponse(t *testing.T) {
	t.Run("missing segments key", func(t *testing.T) {
		server := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, `{"language":"en"}`)
			}),
		)
		defer server.Close()

		_, err := testClient(server.URL).
			Transcribe(context.Background(), audioSource("clip.webm"))
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("error = %v, want ErrMalformedResponse", err)
		}
	})

	t.Run("not json at all", func(t *testing.T) {
		server := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "<html>oops</html>")
			}),
		)
		defer server.Close()

		_, err := testClient(server.URL).
			Transcribe(context.Background(), audioSource("clip.webm"))
		if !errors.Is(err, ErrMalformedResponse) {
			t.Fatalf("error = %v, want ErrMalformedResponse", err)
		}
	})
}

func TestTranscribeUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing listening any more

	_, err := testClient(server.URL).
		Transcribe(context.Background(), audioSource("clip.webm"))
	if !errors.Is(err, ErrNetworkUnreachable) {
		t.Fatalf("error = %v, want ErrNetworkUnreachable", err)
	}
}

func TestUnreachableNamesMixedContent(t *testing.T) {
	client := testClient("http://studio.example.com:8001")
	client.ServedOverTLS = true

	err := client.unreachable(errors.New("connection refused"))
	if !errors.Is(err, ErrNetworkUnreachable) {
		t.Fatalf("error = %v, want ErrNetworkUnreachable", err)
	}
	if !strings.Contains(err.Error(), "HTTPS") {
		t.Errorf("error %q does not call out the HTTPS/HTTP mix", err)
	}
}

func TestUnreachableLocalhostStaysPlain(t *testing.T) {
	client := testClient("http://localhost:8001")
	client.ServedOverTLS = true

	err := client.unreachable(errors.New("connection refused"))
	if strings.Contains(err.Error(), "HTTPS") {
		t.Errorf("localhost backend wrongly blamed on mixed content: %q", err)
	}
}

func TestGeneratePDF(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/generate-pdf" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), `"text":"hello"`) {
				t.Errorf("unexpected body %s", body)
			}
			w.Write([]byte("%PDF-1.4 fake"))
		}),
	)
	defer server.Close()

	data, err := testClient(server.URL).GeneratePDF(context.Background(), "hello")
	if err != nil {
		t.Fatalf("GeneratePDF: %v", err)
	}
	if !strings.HasPrefix(string(data), "%PDF") {
		t.Errorf("unexpected pdf payload %q", data)
	}
}

func TestValidateSource(t *testing.T) {
	tests := []struct {
		mime string
		ok   bool
	}{
		{"audio/webm", true},
		{"audio/mpeg", true},
		{"video/mp4", true},
		{"VIDEO/MP4", true},
		{"text/plain", false},
		{"application/pdf", false},
		{"", false},
	}

	for _, tt := range tests {
		err := ValidateSource(Source{Name: "x", MIME: tt.mime})
		if tt.ok && err != nil {
			t.Errorf("ValidateSource(%q) = %v, want nil", tt.mime, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidFileType) {
			t.Errorf("ValidateSource(%q) = %v, want ErrInvalidFileType", tt.mime, err)
		}
	}
}
