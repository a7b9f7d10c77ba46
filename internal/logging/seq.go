package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const seqIngestPath = "/api/events/raw?clef"

// SeqWriter forwards zerolog events to a Seq server as CLEF documents.
// Delivery is best effort: any failure is dropped so the log sink can never
// affect orchestration behavior.
type SeqWriter struct {
	url    string
	apiKey string
	props  map[string]string
	client *http.Client
}

func NewSeqWriter(serverURL, apiKey string, props map[string]string) *SeqWriter {
	return &SeqWriter{
		url:    strings.TrimRight(serverURL, "/") + seqIngestPath,
		apiKey: apiKey,
		props:  props,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Write receives one JSON event per call from zerolog and reshapes it into
// CLEF: @t / @l / @m reified fields, everything else kept as properties.
func (w *SeqWriter) Write(p []byte) (int, error) {
	var event map[string]any
	if err := json.Unmarshal(p, &event); err != nil {
		return len(p), nil
	}

	clef := make(map[string]any, len(event)+len(w.props))
	for k, v := range event {
		switch k {
		case "time":
			clef["@t"] = v
		case "level":
			clef["@l"] = v
		case "message":
			clef["@m"] = v
		default:
			clef[k] = v
		}
	}
	for k, v := range w.props {
		clef[k] = v
	}

	body, err := json.Marshal(clef)
	if err != nil {
		return len(p), nil
	}

	req, err := http.NewRequest(http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return len(p), nil
	}
	req.Header.Set("Content-Type", "application/vnd.serilog.clef")
	if w.apiKey != "" {
		req.Header.Set("X-Seq-ApiKey", w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err == nil {
		_ = resp.Body.Close()
	}
	return len(p), nil
}
