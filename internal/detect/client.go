package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

const (
	defaultDetectorURL = "http://localhost:8000"
	defaultMinScore    = 0.7
)

// Face is a single detection returned by the face service.
type Face struct {
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2] in pixels
	Score     float64   `json:"score"`
	Embedding []float32 `json:"embedding"`
}

// Client talks to the face detection/embedding service. The service is a
// black box to this tool: it receives a JPEG frame and returns the faces it
// found with their embedding vectors.
type Client struct {
	baseURL  string
	minScore float64
	client   *http.Client
}

// NewClient creates a detector client. Detections below minScore are
// filtered out client-side.
func NewClient(baseURL string, minScore float64) *Client {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	if minScore <= 0 {
		minScore = defaultMinScore
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		minScore: minScore,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// detectResponse represents the response from the detection service.
type detectResponse struct {
	Faces []Face `json:"faces"`
	Model string `json:"model"`
	Dim   int    `json:"dim"`
}

// DetectFaces posts a JPEG frame to the service and returns the faces at or
// above the configured confidence threshold.
func (c *Client) DetectFaces(ctx context.Context, imageData []byte) ([]Face, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="frame.jpg"`)
	h.Set("Content-Type", http.DetectContentType(imageData))
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/faces", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detector returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed detectResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse detector response: %w", err)
	}

	faces := make([]Face, 0, len(parsed.Faces))
	for _, f := range parsed.Faces {
		if f.Score >= c.minScore {
			faces = append(faces, f)
		}
	}
	return faces, nil
}
