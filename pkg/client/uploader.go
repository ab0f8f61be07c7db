package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
)

// UploadRecord mirrors one row of the upload history.
type UploadRecord struct {
	ID           uint    `json:"id"`
	Filename     string  `json:"filename"`
	UploadDate   string  `json:"upload_date"`
	Period       *string `json:"period,omitempty"`
	NFEKey       *string `json:"nfe_key,omitempty"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// UploadFile sends one XML invoice as multipart form data.
func (c *Client) UploadFile(ctx context.Context, filename string, content []byte) (*UploadRecord, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/user/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var rec UploadRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListUploads returns the caller's upload history.
func (c *Client) ListUploads(ctx context.Context) ([]UploadRecord, error) {
	var out []UploadRecord
	if err := c.getJSON(ctx, "/api/user/uploads", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteUpload removes one uploaded file and its record.
func (c *Client) DeleteUpload(ctx context.Context, id uint) error {
	return c.delete(ctx, fmt.Sprintf("/api/user/uploads/%d", id))
}

type FileStatus string

const (
	FileSuccess FileStatus = "success"
	FileError   FileStatus = "error"
)

// FileResult reports the outcome for one staged file, in staging order.
type FileResult struct {
	Filename string
	Status   FileStatus
	Message  string
	Record   *UploadRecord
}

type stagedFile struct {
	name    string
	content []byte
}

var (
	ErrBatchInFlight = errors.New("um envio já está em andamento")
	ErrIndexRange    = errors.New("índice fora do intervalo")
)

// BatchUploader stages invoice files and submits them one at a time. A
// failed file never aborts the batch: every staged file gets exactly one
// result, in the order it was staged.
type BatchUploader struct {
	c *Client

	mu      sync.Mutex
	staged  []stagedFile
	busy    bool
	results []FileResult
}

func NewBatchUploader(c *Client) *BatchUploader {
	return &BatchUploader{c: c}
}

// Add stages a file unconditionally. Used for files chosen via a picker
// that already filters by extension.
func (b *BatchUploader) Add(name string, content []byte) {
	b.mu.Lock()
	b.staged = append(b.staged, stagedFile{name: name, content: content})
	b.mu.Unlock()
}

// AddDropped stages a dragged-in file only when it looks like XML, either by
// extension or declared MIME type. Reports whether the file was accepted.
func (b *BatchUploader) AddDropped(name, contentType string, content []byte) bool {
	ext := strings.ToLower(filepath.Ext(name))
	isXML := ext == ".xml" ||
		contentType == "text/xml" || contentType == "application/xml"
	if !isXML {
		return false
	}
	b.Add(name, content)
	return true
}

// Remove unstages the file at position i.
func (b *BatchUploader) Remove(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.staged) {
		return ErrIndexRange
	}
	b.staged = append(b.staged[:i], b.staged[i+1:]...)
	return nil
}

// Staged returns the names of the files waiting for submission.
func (b *BatchUploader) Staged() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, len(b.staged))
	for i, f := range b.staged {
		names[i] = f.name
	}
	return names
}

// Results returns the outcome of the last submission.
func (b *BatchUploader) Results() []FileResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]FileResult, len(b.results))
	copy(out, b.results)
	return out
}

// SubmitAll uploads every staged file sequentially and clears the staging
// list. Individual failures are recorded in their slot and the batch keeps
// going. A second call while one is running returns ErrBatchInFlight.
func (b *BatchUploader) SubmitAll(ctx context.Context) ([]FileResult, error) {
	b.mu.Lock()
	if b.busy {
		b.mu.Unlock()
		return nil, ErrBatchInFlight
	}
	b.busy = true
	files := b.staged
	b.staged = nil
	b.mu.Unlock()

	results := make([]FileResult, len(files))
	for i, f := range files {
		rec, err := b.c.UploadFile(ctx, f.name, f.content)
		if err != nil {
			results[i] = FileResult{Filename: f.name, Status: FileError, Message: err.Error()}
			continue
		}
		results[i] = FileResult{Filename: f.name, Status: FileSuccess, Message: "Arquivo enviado com sucesso", Record: rec}
	}

	b.mu.Lock()
	b.results = results
	b.busy = false
	b.mu.Unlock()
	return results, nil
}
