package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zinrai/netenum-go/internal/domain"
	"github.com/zinrai/netenum-go/internal/enumerator"
	"github.com/zinrai/netenum-go/internal/infrastructure/output"
	"github.com/zinrai/netenum-go/internal/infrastructure/source"
	"github.com/zinrai/netenum-go/internal/usecase"
)

// flushEvery is how many addresses are buffered before a chunk is sent.
const flushEvery = 256

type EnumerateHandler struct {
	useCase *usecase.EnumerateUseCase
	log     *slog.Logger
}

func NewEnumerateHandler(useCase *usecase.EnumerateUseCase, log *slog.Logger) *EnumerateHandler {
	return &EnumerateHandler{useCase: useCase, log: log}
}

// NewMux routes the enumeration endpoints and the metrics of gatherer.
func NewMux(h *EnumerateHandler, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/enumerate", h.HandleEnumerate)
	mux.HandleFunc("/partition", h.HandlePartition)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

func (h *EnumerateHandler) HandleEnumerate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.enumerateQuery(w, r)
	case http.MethodPost:
		h.enumerateBody(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *EnumerateHandler) HandlePartition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	n, err := domain.ParseNetwork(r.URL.Query().Get("cidr"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	response := struct {
		Network   string `json:"network"`
		Family    string `json:"family"`
		Size      string `json:"size"`
		Partition uint64 `json:"partition"`
	}{
		Network:   n.String(),
		Family:    n.Family().String(),
		Size:      n.Size().String(),
		Partition: enumerator.PartitionSize(n),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (h *EnumerateHandler) enumerateQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	h.stream(w, r, q["cidr"], limit)
}

func (h *EnumerateHandler) enumerateBody(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var request struct {
			Ranges []string `json:"ranges"`
			Limit  int      `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if request.Limit < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		h.stream(w, r, request.Ranges, request.Limit)
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	ranges, err := source.ReadLines(r.Context(), r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.stream(w, r, ranges, limit)
}

func (h *EnumerateHandler) stream(w http.ResponseWriter, r *http.Request, ranges []string, limit int) {
	if len(ranges) == 0 {
		writeError(w, http.StatusBadRequest, usecase.ErrNoRanges)
		return
	}

	s, err := h.useCase.Open(ranges)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	out := newChunkedWriter(w)
	n, err := h.useCase.Write(r.Context(), s.Cooperative(), out, limit)
	if err == nil {
		err = out.Flush()
	}
	if err != nil {
		h.log.Warn("stream aborted", "remote", r.RemoteAddr, "addresses", n, "error", err)
		return
	}
	h.log.Debug("stream finished", "remote", r.RemoteAddr, "ranges", len(ranges), "addresses", n)
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid limit")
	}
	return n, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	response := struct {
		Error string `json:"error"`
		Input string `json:"input,omitempty"`
	}{
		Error: err.Error(),
	}
	var perr *domain.ParseError
	if errors.As(err, &perr) {
		response.Input = perr.Input
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// chunkedWriter writes address lines to an HTTP response and pushes them
// to the client every flushEvery addresses.
type chunkedWriter struct {
	lines   *output.LineWriter
	flusher http.Flusher
	pending int
}

func newChunkedWriter(w http.ResponseWriter) *chunkedWriter {
	f, _ := w.(http.Flusher)
	return &chunkedWriter{lines: output.NewLineWriter(w), flusher: f}
}

func (cw *chunkedWriter) WriteAddress(addr domain.Address) error {
	if err := cw.lines.WriteAddress(addr); err != nil {
		return err
	}
	cw.pending++
	if cw.pending >= flushEvery {
		return cw.Flush()
	}
	return nil
}

func (cw *chunkedWriter) Flush() error {
	cw.pending = 0
	if err := cw.lines.Flush(); err != nil {
		return err
	}
	if cw.flusher != nil {
		cw.flusher.Flush()
	}
	return nil
}
