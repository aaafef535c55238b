// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/deck-merger/internal/httputil"
)

const (
	gotenbergConvertPath = "/forms/libreoffice/convert"
	gotenbergHealthPath  = "/health"
)

// Gotenberg converts by uploading the presentation to a Gotenberg service.
type Gotenberg struct {
	baseURL string
	client  *http.Client
	user    string
	pass    string
}

// NewGotenberg returns a converter for the service at baseURL. Credentials
// are sent as basic auth when user is non-empty.
func NewGotenberg(client *http.Client, baseURL, user, pass string) *Gotenberg {
	return &Gotenberg{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		user:    user,
		pass:    pass,
	}
}

func (g *Gotenberg) Name() string { return "gotenberg" }

func (g *Gotenberg) Check(ctx context.Context) error {
	if g.baseURL == "" {
		return fmt.Errorf("%w: no gotenberg url configured", ErrToolMissing)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+gotenbergHealthPath, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrToolMissing, err)
	}
	g.authorize(req)
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrToolMissing, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: gotenberg health returned %d", ErrToolMissing, resp.StatusCode)
	}
	return nil
}

func (g *Gotenberg) Supports(f Format) bool { return f == FormatPDF }

func (g *Gotenberg) Target(src, workDir string, f Format) string {
	return filepath.Join(workDir, stem(src)+"."+string(f))
}

func (g *Gotenberg) Convert(ctx context.Context, src, target string, _ Format) error {
	body, contentType, err := multipartFile(src)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+gotenbergConvertPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	g.authorize(req)

	resp, err := httputil.DoWithRetry(ctx, g.client, req, 0)
	if err != nil {
		return fmt.Errorf("gotenberg request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gotenberg returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return writeAtomic(target, resp.Body)
}

func (g *Gotenberg) authorize(req *http.Request) {
	if g.user != "" {
		req.SetBasicAuth(g.user, g.pass)
	}
}

func multipartFile(src string) ([]byte, string, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", filepath.Base(src))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", src, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

// writeAtomic streams r to a temp file beside path and renames it into
// place, so a poll never observes a partial file.
func writeAtomic(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
