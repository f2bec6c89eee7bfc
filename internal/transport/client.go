// Package transport sends saved recordings to the receiver as a single
// multipart/form-data POST.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"formcheck/internal/capture"
)

const (
	// FileField is the multipart part carrying the video.
	FileField = "video"
	// TokenHeader carries the optional shared upload token.
	TokenHeader = "X-Upload-Token"
)

// StatusError is a non-200 answer from the receiver.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload rejected with status %d", e.Code)
	}
	return fmt.Sprintf("upload rejected with status %d: %s", e.Code, e.Body)
}

// Client uploads to one receiver.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewClient targets addr, which may be host:port or a full URL.
func NewClient(addr string) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{BaseURL: base, HTTP: http.DefaultClient}
}

// URL is the upload endpoint.
func (c *Client) URL() string {
	return c.BaseURL + "/upload"
}

// Upload streams req.FilePath with the exercise and form fields. progress
// receives the number of file bytes handed to the connection so far.
func (c *Client) Upload(ctx context.Context, req capture.UploadRequest, progress func(sent, total int64)) (*capture.UploadResult, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", req.FilePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", req.FilePath, err)
	}
	total := info.Size()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeBody(mw, req, &countingReader{r: f, total: total, fn: progress}))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	if c.Token != "" {
		httpReq.Header.Set(TokenHeader, c.Token)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		pr.Close()
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var res capture.UploadResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &res, nil
}

func writeBody(mw *multipart.Writer, req capture.UploadRequest, file io.Reader) error {
	if err := mw.WriteField("exercise", string(req.Tag.Exercise)); err != nil {
		return err
	}
	if err := mw.WriteField("form", string(req.Tag.Form)); err != nil {
		return err
	}

	name := filepath.Base(req.FilePath)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FileField, name))
	h.Set("Content-Type", contentType(name))
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	return mw.Close()
}

func contentType(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".mov") {
		return "video/quicktime"
	}
	return "video/mp4"
}

type countingReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    func(sent, total int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		if c.fn != nil {
			c.fn(c.sent, c.total)
		}
	}
	return n, err
}
