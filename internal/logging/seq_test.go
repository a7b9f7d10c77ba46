package logging

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestSeqWriterReshapesEventsToCLEF(t *testing.T) {
	var (
		gotBody   map[string]any
		gotAPIKey string
		gotCT     string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		gotAPIKey = r.Header.Get("X-Seq-ApiKey")
		gotCT = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sw := NewSeqWriter(srv.URL, "secret-key", map[string]string{
		"Application": "BSource.DbBackup",
		"Environment": "Test",
	})

	logger := zerolog.New(sw).With().Timestamp().Logger()
	logger.Info().Str("database", "orders").Msg("backup finished")

	if gotBody == nil {
		t.Fatal("seq server received no event")
	}
	if gotBody["@m"] != "backup finished" {
		t.Fatalf("@m: got %v", gotBody["@m"])
	}
	if gotBody["@l"] != "info" {
		t.Fatalf("@l: got %v", gotBody["@l"])
	}
	if _, ok := gotBody["@t"]; !ok {
		t.Fatal("@t missing")
	}
	if gotBody["database"] != "orders" {
		t.Fatalf("property lost: %v", gotBody)
	}
	if gotBody["Application"] != "BSource.DbBackup" || gotBody["Environment"] != "Test" {
		t.Fatalf("global properties missing: %v", gotBody)
	}
	if gotAPIKey != "secret-key" {
		t.Fatalf("api key header: got %q", gotAPIKey)
	}
	if gotCT != "application/vnd.serilog.clef" {
		t.Fatalf("content type: got %q", gotCT)
	}
}

func TestSeqWriterSwallowsDeliveryFailures(t *testing.T) {
	// Nothing is listening at this address; the writer must still succeed.
	sw := NewSeqWriter("http://127.0.0.1:1", "", nil)

	n, err := sw.Write([]byte(`{"level":"info","message":"hello"}`))
	if err != nil {
		t.Fatalf("Write must never fail, got: %v", err)
	}
	if n == 0 {
		t.Fatal("Write must report the full length")
	}
}

func TestSeqWriterIgnoresMalformedEvents(t *testing.T) {
	sw := NewSeqWriter("http://127.0.0.1:1", "", nil)

	if _, err := sw.Write([]byte("not json")); err != nil {
		t.Fatalf("Write must never fail, got: %v", err)
	}
}
