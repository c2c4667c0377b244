package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"detectwidget/internal/dto"
	"detectwidget/internal/model"
)

// ErrMalformedResponse is wrapped by a TransportError when a success body
// does not match the response schema.
var ErrMalformedResponse = errors.New("malformed prediction response")

// RemoteError is returned when the service answers but rejects the image,
// either with a non-success status or an error field in the body.
type RemoteError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("prediction rejected (%d): %s", e.StatusCode, e.Message)
}

// TransportError is returned when no usable answer came back: the request
// failed, the body was not JSON, or the payload did not match the schema.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "prediction request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Client posts images to the prediction endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for endpoint. A zero timeout means the request
// waits until the transport gives up or ctx is cancelled.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Submit sends the upload as a single multipart "file" field and returns
// the normalized result. It makes exactly one attempt.
func (c *Client) Submit(ctx context.Context, upload model.Upload) (model.DetectionResult, error) {
	body, contentType, err := buildMultipart(upload)
	if err != nil {
		return model.DetectionResult{}, &TransportError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return model.DetectionResult{}, &TransportError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.DetectionResult{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.DetectionResult{}, &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300

	// A body that is not JSON is a transport failure whatever the status.
	var payload dto.PredictResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.DetectionResult{}, &TransportError{Err: fmt.Errorf("decode %s response: %w", resp.Status, err)}
	}

	if !success || payload.Error != "" {
		message := payload.Error
		if message == "" {
			message = statusText(resp)
		}
		return model.DetectionResult{}, &RemoteError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
		}
	}

	result, err := Normalize(payload)
	if err != nil {
		return model.DetectionResult{}, &TransportError{Err: err}
	}
	return result, nil
}

// Normalize validates a success payload and turns it into a DetectionResult
// with labels deduplicated in first-seen order.
func Normalize(payload dto.PredictResponse) (model.DetectionResult, error) {
	if payload.Image == nil {
		return model.DetectionResult{}, fmt.Errorf("%w: missing image", ErrMalformedResponse)
	}
	if payload.Count == nil {
		return model.DetectionResult{}, fmt.Errorf("%w: missing count", ErrMalformedResponse)
	}
	if payload.Timestamp == nil {
		return model.DetectionResult{}, fmt.Errorf("%w: missing timestamp", ErrMalformedResponse)
	}

	labels := make([]string, 0, len(payload.Detections))
	for i, det := range payload.Detections {
		if det.Label == nil {
			return model.DetectionResult{}, fmt.Errorf("%w: detection %d has no label", ErrMalformedResponse, i)
		}
		labels = append(labels, *det.Label)
	}

	return model.DetectionResult{
		Image:     *payload.Image,
		Labels:    model.UniqueLabels(labels),
		Count:     *payload.Count,
		Timestamp: *payload.Timestamp,
	}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func buildMultipart(upload model.Upload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(upload.Filename)))
	header.Set("Content-Type", upload.ContentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
