package predict

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"detectwidget/internal/model"
)

func testUpload() model.Upload {
	return model.Upload{Filename: "cat.png", ContentType: "image/png", Data: []byte("\x89PNG fake")}
}

func newPredictServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSubmit_Success(t *testing.T) {
	var gotFilename, gotContentType string
	var gotData []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Failed to parse multipart: %v", err)
		}
		if len(r.MultipartForm.File) != 1 || len(r.MultipartForm.Value) != 0 {
			t.Errorf("Expected exactly one file field, got %v files and %v values", r.MultipartForm.File, r.MultipartForm.Value)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Missing file field: %v", err)
		}
		defer file.Close()
		gotFilename = header.Filename
		gotContentType = header.Header.Get("Content-Type")
		gotData, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"count":2,"detections":[{"label":"cat","confidence":0.9},{"label":"dog"}],"image":"data:image/jpeg;base64,AAA","timestamp":"2024-01-01T00:00:00Z"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	result, err := client.Submit(context.Background(), testUpload())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	want := model.DetectionResult{
		Image:     "data:image/jpeg;base64,AAA",
		Labels:    []string{"cat", "dog"},
		Count:     2,
		Timestamp: "2024-01-01T00:00:00Z",
	}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("Submit = %+v, expected %+v", result, want)
	}
	if gotFilename != "cat.png" {
		t.Errorf("Expected filename cat.png, got %q", gotFilename)
	}
	if gotContentType != "image/png" {
		t.Errorf("Expected part content type image/png, got %q", gotContentType)
	}
	if string(gotData) != "\x89PNG fake" {
		t.Errorf("Unexpected file data %q", gotData)
	}
}

func TestSubmit_LabelsDeduplicated(t *testing.T) {
	server := newPredictServer(t, http.StatusOK,
		`{"count":5,"detections":[{"label":"b"},{"label":"a"},{"label":"b"},{"label":"c"},{"label":"a"}],"image":"x","timestamp":"t"}`)

	result, err := NewClient(server.URL, 0).Submit(context.Background(), testUpload())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !reflect.DeepEqual(result.Labels, []string{"b", "a", "c"}) {
		t.Errorf("Unexpected labels %v", result.Labels)
	}
	if result.Count != 5 {
		t.Errorf("Count must pass through unchanged, got %d", result.Count)
	}
}

func TestSubmit_NoDetections(t *testing.T) {
	server := newPredictServer(t, http.StatusOK, `{"count":0,"image":"x","timestamp":"t"}`)

	result, err := NewClient(server.URL, 0).Submit(context.Background(), testUpload())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if result.Labels == nil || len(result.Labels) != 0 {
		t.Errorf("Expected empty labels, got %#v", result.Labels)
	}
}

func TestSubmit_RemoteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"error with 500", http.StatusInternalServerError, `{"error":"bad image"}`, "bad image"},
		{"error with 200", http.StatusOK, `{"error":"no objects model loaded"}`, "no objects model loaded"},
		{"500 without error field", http.StatusInternalServerError, `{}`, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newPredictServer(t, tt.status, tt.body)

			_, err := NewClient(server.URL, 0).Submit(context.Background(), testUpload())

			var remote *RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("Expected RemoteError, got %v", err)
			}
			if remote.Message != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, remote.Message)
			}
			if remote.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, remote.StatusCode)
			}
		})
	}
}

func TestSubmit_NonJSONErrorBody(t *testing.T) {
	server := newPredictServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := NewClient(server.URL, 0).Submit(context.Background(), testUpload())

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		t.Errorf("Expected no RemoteError for an unreadable body, got %v", remote)
	}
}

func TestSubmit_MalformedSuccess(t *testing.T) {
	bodies := map[string]string{
		"not json":        `not json`,
		"missing image":   `{"count":1,"detections":[],"timestamp":"t"}`,
		"missing count":   `{"image":"x","detections":[],"timestamp":"t"}`,
		"missing time":    `{"image":"x","count":1,"detections":[]}`,
		"label missing":   `{"image":"x","count":1,"detections":[{"confidence":0.5}],"timestamp":"t"}`,
		"count as string": `{"image":"x","count":"1","detections":[],"timestamp":"t"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := newPredictServer(t, http.StatusOK, body)

			_, err := NewClient(server.URL, 0).Submit(context.Background(), testUpload())

			var transport *TransportError
			if !errors.As(err, &transport) {
				t.Fatalf("Expected TransportError, got %v", err)
			}
		})
	}
}

func TestSubmit_MissingLabelIsMalformed(t *testing.T) {
	server := newPredictServer(t, http.StatusOK, `{"image":"x","count":1,"detections":[{}],"timestamp":"t"}`)

	_, err := NewClient(server.URL, 0).Submit(context.Background(), testUpload())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestSubmit_ConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve port: %v", err)
	}
	addr := listener.Addr().String()
	listener.Close()

	_, err = NewClient("http://"+addr+"/predict", 0).Submit(context.Background(), testUpload())

	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
}

func TestSubmit_SingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	NewClient(server.URL, 0).Submit(context.Background(), testUpload())

	if calls != 1 {
		t.Errorf("Expected exactly one request, got %d", calls)
	}
}

func TestSubmit_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL, 0).Submit(ctx, testUpload())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestSubmit_FilenameEscaped(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err == nil {
			got = header.Filename
		}
		io.WriteString(w, `{"image":"x","count":0,"timestamp":"t"}`)
	}))
	defer server.Close()

	upload := testUpload()
	upload.Filename = `my "best" cat.png`
	if _, err := NewClient(server.URL, 0).Submit(context.Background(), upload); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !strings.Contains(got, `"best"`) {
		t.Errorf("Expected quotes preserved in filename, got %q", got)
	}
}
