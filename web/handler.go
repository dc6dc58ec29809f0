// Package web serves the browser studio: one page mirroring the studio
// session, with actions posted back and state pushed out over a websocket.
package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"vox.town/studio"
	"vox.town/stt"
)

type Handler struct {
	studio *studio.Studio
	logger *log.Logger
	hub    *Hub
}

func NewHandler(s *studio.Studio, logger *log.Logger) *Handler {
	return &Handler{
		studio: s,
		logger: logger,
		hub:    NewHub(logger),
	}
}

// State is the snapshot pushed to every open page.
type State struct {
	Text      string `json:"text"`
	Segments  int    `json:"segments"`
	Error     string `json:"error"`
	Recording string `json:"recording"`
	Loading   bool   `json:"loading"`
	Speaking  bool   `json:"speaking"`
}

func (h *Handler) snapshot() State {
	return State{
		Text:      h.studio.Text(),
		Segments:  len(h.studio.Segments()),
		Error:     h.studio.Err(),
		Recording: h.studio.RecordingState().String(),
		Loading:   h.studio.Loading(),
		Speaking:  h.studio.Speaking(),
	}
}

// BroadcastState pushes the current snapshot to all pages. Wire it to the
// studio's OnChange hook.
func (h *Handler) BroadcastState() {
	h.hub.Broadcast(h.snapshot())
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.handleIndex)
	r.Get("/ws", h.handleWS)
	r.Post("/transcribe", h.handleTranscribe)
	r.Post("/record/start", h.handleRecordStart)
	r.Post("/record/stop", h.handleRecordStop)
	r.Post("/text", h.handleText)
	r.Post("/speak", h.action(h.studio.SpeakToggle))
	r.Post("/clear", h.action(h.studio.Clear))
	r.Post("/dismiss", h.action(h.studio.DismissError))
	r.Get("/export/{kind}", h.handleExport)
	r.Get("/clip", h.handleClip)
	return r
}

func (h *Handler) writeState(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.snapshot()); err != nil {
		h.logger.Error("encode state", "error", err)
	}
}

func (h *Handler) action(f func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f()
		h.writeState(w)
	}
}

var upgrader = websocket.Upgrader{
	// The page and the socket share an origin in every supported setup.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade", "error", err)
		return
	}
	if err := h.hub.Join(conn, h.snapshot()); err != nil {
		h.logger.Debug("websocket join", "error", err)
		return
	}

	// Reads are only for detecting the page going away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.hub.Remove(conn)
				return
			}
		}
	}()
}

func (h *Handler) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data := make([]byte, 0, header.Size)
	buf := make([]byte, 32*1024)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		if err != nil {
			break
		}
	}

	src := stt.Source{
		Name: header.Filename,
		MIME: header.Header.Get("Content-Type"),
		Data: data,
	}
	if src.MIME == "" {
		src.MIME = http.DetectContentType(data)
	}

	// Blocks until the backend answers; the websocket keeps other tabs
	// honest in the meantime.
	h.studio.Submit(r.Context(), src)
	h.writeState(w)
}

func (h *Handler) handleRecordStart(w http.ResponseWriter, r *http.Request) {
	h.studio.StartRecording(r.Context())
	h.writeState(w)
}

func (h *Handler) handleRecordStop(w http.ResponseWriter, r *http.Request) {
	h.studio.StopRecording()
	h.writeState(w)
}

func (h *Handler) handleText(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	h.studio.SetText(payload.Text)
	h.writeState(w)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	kind := studio.ExportKind(chi.URLParam(r, "kind"))
	name, mime, data, err := h.studio.Render(r.Context(), kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (h *Handler) handleClip(w http.ResponseWriter, r *http.Request) {
	clip, ok := h.studio.LastClip()
	if !ok {
		http.Error(w, "no recording yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", clip.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(clip.Data)))
	w.Write(clip.Data)
}

func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	if err := indexTemplate.Execute(w, h.snapshot()); err != nil {
		h.logger.Error("failed to execute template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

var indexTemplate = template.Must(template.New("index").Parse(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Voxpad</title>
    <script src="https://cdn.tailwindcss.com"></script>
</head>
<body class="bg-gray-100">
    <div class="container max-w-3xl mx-auto px-4 py-8">
        <h1 class="text-3xl font-bold mb-6">Voxpad</h1>

        <div id="error" class="hidden bg-red-100 text-red-800 rounded-lg p-4 mb-4">
            <span id="error-text"></span>
            <button class="float-right font-bold" onclick="post('/dismiss')">×</button>
        </div>

        <div class="bg-white shadow rounded-lg p-4 mb-4">
            <div class="flex gap-2 items-center">
                <button id="record" class="bg-red-600 text-white rounded px-4 py-2"
                        onclick="toggleRecord()">Record</button>
                <span id="status" class="text-gray-600 text-sm"></span>
                <form id="upload" class="ml-auto">
                    <input type="file" id="file" accept="audio/*,video/*">
                    <button type="submit" class="bg-blue-600 text-white rounded px-3 py-2">Transcribe</button>
                </form>
            </div>
        </div>

        <div class="bg-white shadow rounded-lg p-4 mb-4">
            <textarea id="text" rows="10" class="w-full border rounded p-2"
                      placeholder="Transcription appears here..."
                      onchange="saveText()">{{.Text}}</textarea>
        </div>

        <div class="flex flex-wrap gap-2">
            <button class="bg-gray-700 text-white rounded px-3 py-2" onclick="copyText()">Copy</button>
            <button class="bg-gray-700 text-white rounded px-3 py-2" onclick="post('/speak')">Speak</button>
            <button class="bg-gray-700 text-white rounded px-3 py-2" onclick="post('/clear')">Clear</button>
            <a class="bg-green-700 text-white rounded px-3 py-2" href="/export/text">Text</a>
            <a class="bg-green-700 text-white rounded px-3 py-2" href="/export/srt">SRT</a>
            <a class="bg-green-700 text-white rounded px-3 py-2" href="/export/vtt">VTT</a>
            <a class="bg-green-700 text-white rounded px-3 py-2" href="/export/timestamped">Timestamped</a>
            <a class="bg-green-700 text-white rounded px-3 py-2" href="/export/pdf">PDF</a>
            <a class="bg-purple-700 text-white rounded px-3 py-2" href="/clip">Last recording</a>
        </div>
        <p class="text-gray-500 text-sm mt-2">Captions reflect the original transcription, not manual edits.</p>
    </div>

    <script>
        let recording = false;

        function apply(state) {
            recording = state.recording !== "idle";
            document.getElementById("record").textContent = recording ? "Stop" : "Record";
            const status = [];
            if (recording) status.push(state.recording);
            if (state.loading) status.push("transcribing...");
            if (state.speaking) status.push("speaking");
            document.getElementById("status").textContent = status.join(" · ");
            const err = document.getElementById("error");
            if (state.error) {
                document.getElementById("error-text").textContent = state.error;
                err.classList.remove("hidden");
            } else {
                err.classList.add("hidden");
            }
            const text = document.getElementById("text");
            if (document.activeElement !== text) text.value = state.text;
        }

        function post(path, body) {
            return fetch(path, {
                method: "POST",
                headers: body ? {"Content-Type": "application/json"} : {},
                body: body ? JSON.stringify(body) : undefined,
            }).then(r => r.json()).then(apply);
        }

        function toggleRecord() {
            post(recording ? "/record/stop" : "/record/start");
        }

        function saveText() {
            post("/text", {text: document.getElementById("text").value});
        }

        function copyText() {
            navigator.clipboard.writeText(document.getElementById("text").value);
        }

        document.getElementById("upload").addEventListener("submit", (e) => {
            e.preventDefault();
            const file = document.getElementById("file").files[0];
            if (!file) return;
            const form = new FormData();
            form.append("file", file);
            fetch("/transcribe", {method: "POST", body: form})
                .then(r => r.json()).then(apply);
        });

        const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
        ws.onmessage = (e) => apply(JSON.parse(e.data));
    </script>
</body>
</html>
`))
