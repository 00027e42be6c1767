package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// File is one part of a multipart upload.
type File struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

// PostMultipart sends fields and files as multipart/form-data. Files with a
// nil Content are skipped, which is how optional parts are omitted.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []File, result any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("[httpclient.PostMultipart] field %s: %w", k, err)
		}
	}
	for _, f := range files {
		if f.Content == nil {
			continue
		}
		part, err := w.CreateFormFile(f.FieldName, f.FileName)
		if err != nil {
			return fmt.Errorf("[httpclient.PostMultipart] part %s: %w", f.FieldName, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("[httpclient.PostMultipart] copy %s: %w", f.FileName, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("[httpclient.PostMultipart] close: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("[httpclient.PostMultipart] create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req, result)
}
