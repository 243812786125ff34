package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/capture"
)

const streamInterval = 66 * time.Millisecond // ~15 FPS

// StreamHandler serves the camera preview as MJPEG.
type StreamHandler struct {
	preview *capture.Preview
}

// NewStreamHandler creates a new StreamHandler reading from preview.
func NewStreamHandler(preview *capture.Preview) *StreamHandler {
	return &StreamHandler{preview: preview}
}

// ServeHTTP streams each new preview frame to the client until it leaves.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	detach := h.preview.Attach()
	defer detach()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var last uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		jpeg, seq := h.preview.Latest()
		if seq == last || len(jpeg) == 0 {
			continue
		}
		last = seq

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg))
		if _, err := w.Write(jpeg); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
