package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/kirillkom/smartdocs/internal/core/domain"
)

// UploadDocument streams content as the multipart field "file". The progress
// callback, when set, receives a percentage in [0,100] derived from bytes
// read out of content against size.
func (c *Client) UploadDocument(ctx context.Context, filename string, size int64, content io.Reader, progress func(percent int)) (*domain.Document, error) {
	if progress != nil {
		content = &progressReader{reader: content, total: size, report: progress}
	}

	pipeReader, pipeWriter := io.Pipe()
	writer := multipart.NewWriter(pipeWriter)
	go func() {
		part, err := createFilePart(writer, filename)
		if err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.CloseWithError(writer.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/documents/upload", pipeReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.New("upload failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode >= 300 {
		return nil, errors.New("upload failed")
	}

	var doc domain.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, errors.New("upload failed")
	}
	if progress != nil {
		progress(100)
	}
	return &doc, nil
}

// createFilePart is CreateFormFile with a real content type instead of the
// octet-stream default, so the server stores the MIME type it would see from
// a browser upload.
func createFilePart(writer *multipart.Writer, filename string) (io.Writer, error) {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", ContentTypeForFile(filename))
	return writer.CreatePart(header)
}

// ContentTypeForFile guesses a MIME type from the file extension.
func ContentTypeForFile(filename string) string {
	if t := mime.TypeByExtension(filepath.Ext(filename)); t != "" {
		return t
	}
	return "application/octet-stream"
}

type progressReader struct {
	reader io.Reader
	total  int64
	read   int64
	last   int
	report func(percent int)
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += int64(n)
	if r.total > 0 {
		percent := int(r.read * 100 / r.total)
		if percent > 100 {
			percent = 100
		}
		if percent != r.last {
			r.last = percent
			r.report(percent)
		}
	}
	return n, err
}
