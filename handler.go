// Package hypernote provides the editor-facing service surface around
// the hnmd compiler: an HTTP handler with a websocket live-compile
// endpoint, and a file watcher for recompiling documents on change.
package hypernote

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/hypernote/go-hypernote/hnmd"
)

// wsUpgrader is a Gorilla WebSocket instance, used to respond HTTP
// requests with WebSocket.
var wsUpgrader = websocket.Upgrader{}

// maxDocumentSize bounds the request body read by the compile
// endpoints.
const maxDocumentSize = 1 << 20

// Handler serves compile requests over HTTP and WebSocket. The zero
// value is usable; configure by setting the exported fields before the
// first request.
type Handler struct {
	// Strict selects strict structural validation for compiles that do
	// not specify a mode themselves. Editors typically leave this off
	// so partially-typed documents still produce a tree.
	Strict bool

	// StyleConverter is the external class-to-style-object conversion
	// passed through to the compiler. May be nil.
	StyleConverter hnmd.StyleConverter

	// Logger configures logging for internal events.
	Logger *slog.Logger

	// init is used to initialize the handler only once.
	init sync.Once

	logger *slog.Logger
	router chi.Router
}

// compileResult is the wire shape of a successful compile: the
// document plus any non-fatal expression diagnostics.
type compileResult struct {
	Document    *hnmd.Document    `json:"document"`
	Diagnostics []hnmd.Diagnostic `json:"diagnostics,omitempty"`
}

// compileError is the wire shape of a failed strict compile.
type compileError struct {
	Error  string         `json:"error"`
	Code   hnmd.ErrorCode `json:"code,omitempty"`
	Line   int            `json:"line,omitempty"`
	Column int            `json:"column,omitempty"`
}

func (h *Handler) initOnce() {
	h.init.Do(func() {
		h.logger = h.Logger
		if h.logger == nil {
			h.logger = slog.Default()
		}

		r := chi.NewRouter()
		r.Post("/compile", h.serveCompile)
		r.Get("/ws", h.serveWebSocket)
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		h.router = r
	})
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.initOnce()
	h.router.ServeHTTP(w, r)
}

func (h *Handler) serveCompile(w http.ResponseWriter, r *http.Request) {
	src, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize))
	if err != nil {
		http.Error(w, "read request", http.StatusBadRequest)
		return
	}

	strict := h.Strict
	if v := r.URL.Query().Get("strict"); v != "" {
		strict = v == "1" || v == "true"
	}

	status, resp := h.compile(string(src), strict)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("write compile response", "err", err)
	}
}

// serveWebSocket runs the live-compile loop: every text frame from the
// editor is compiled and answered with a result or error frame. The
// loop never closes the connection on a compile error; transient
// invalid input is the normal case while typing.
func (h *Handler) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read", "err", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		_, resp := h.compile(string(msg), h.Strict)
		if err := conn.WriteJSON(resp); err != nil {
			h.logger.Warn("websocket write", "err", err)
			return
		}
	}
}

func (h *Handler) compile(src string, strict bool) (int, any) {
	doc, err := hnmd.Compile(src,
		hnmd.WithStrict(strict),
		hnmd.WithStyleConverter(h.StyleConverter),
		hnmd.WithLogger(h.logger),
	)
	if err != nil {
		ce := compileError{Error: err.Error()}
		var pe *hnmd.ParseError
		if errors.As(err, &pe) {
			ce.Code = pe.Code
			ce.Line = pe.Line
			ce.Column = pe.Column
		}
		return http.StatusUnprocessableEntity, ce
	}
	return http.StatusOK, compileResult{
		Document:    doc,
		Diagnostics: hnmd.CheckDocument(doc),
	}
}
