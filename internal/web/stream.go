package web

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// handleEvents serves a Server-Sent Events stream that emits a "changed"
// event whenever one of the watched files is created, removed or modified.
// Files are polled every PollInterval.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, ": watching %d files\n\n", len(s.opts.WatchPaths))
	flusher.Flush()

	last := fingerprint(s.opts.WatchPaths)
	tick := time.NewTicker(s.opts.PollInterval)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
		}

		cur := fingerprint(s.opts.WatchPaths)
		if cur == last {
			continue
		}
		last = cur
		fmt.Fprintf(w, "event: changed\ndata: %s\n\n", s.now().UTC().Format(time.RFC3339))
		flusher.Flush()
	}
}

// fingerprint summarizes the size and mtime of each path.
func fingerprint(paths []string) string {
	var b strings.Builder
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			b.WriteString("-|")
			continue
		}
		fmt.Fprintf(&b, "%d:%d|", fi.Size(), fi.ModTime().UnixNano())
	}
	return b.String()
}
