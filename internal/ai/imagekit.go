package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxGeneratedImageSize = 20 << 20

type ImageKitConfig struct {
	URLEndpoint string
	UploadURL   string
	PrivateKey  string
	Folder      string
	Width       int
	Height      int
}

// ImageKitClient renders prompts through ImageKit's AI transformation URL and
// uploads the result into the media library.
type ImageKitClient struct {
	httpClient *http.Client
	cfg        ImageKitConfig
	now        func() time.Time
}

func NewImageKitClient(cfg ImageKitConfig) *ImageKitClient {
	return &ImageKitClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		cfg:        cfg,
		now:        time.Now,
	}
}

// GenerationURL builds the URL whose first fetch triggers generation.
func (c *ImageKitClient) GenerationURL(prompt string) string {
	return fmt.Sprintf("%s/ik-genimg-prompt-%s/%s/%d.png?tr=w-%d,h-%d",
		strings.TrimRight(c.cfg.URLEndpoint, "/"),
		EncodeURIComponent(prompt),
		c.cfg.Folder,
		c.now().UnixMilli(),
		c.cfg.Width,
		c.cfg.Height,
	)
}

// Generate fetches the generated PNG for prompt.
func (c *ImageKitClient) Generate(ctx context.Context, prompt string) ([]byte, error) {
	if c.cfg.URLEndpoint == "" {
		return nil, fmt.Errorf("imagekit url endpoint is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.GenerationURL(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("build image generation request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image generation request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxGeneratedImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read generated image failed: %w", err)
	}
	if len(raw) > maxGeneratedImageSize {
		return nil, fmt.Errorf("generated image exceeds %d bytes", maxGeneratedImageSize)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image generation status %d: %s", resp.StatusCode, string(raw))
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("image generation returned no data")
	}
	return raw, nil
}

// Upload stores the image in the media library and returns its public URL.
func (c *ImageKitClient) Upload(ctx context.Context, image []byte, fileName string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"file":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(image),
		"fileName": fileName,
		"folder":   c.cfg.Folder,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("write upload field %s failed: %w", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close upload form failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.UploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("build image upload request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.cfg.PrivateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image upload request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read image upload response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("image upload status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse image upload json failed: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("image upload returned no url")
	}
	return parsed.URL, nil
}

// EncodeURIComponent escapes s for use as a single URL path segment, encoding
// spaces as %20 rather than '+'.
func EncodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
