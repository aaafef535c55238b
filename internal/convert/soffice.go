// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"path/filepath"
)

const defaultSoffice = "soffice"

// Soffice converts with a local LibreOffice installation in headless mode.
type Soffice struct {
	bin  string
	exec runner
}

// NewSoffice returns a LibreOffice converter. An empty bin means "soffice"
// looked up on PATH.
func NewSoffice(bin string) *Soffice {
	if bin == "" {
		bin = defaultSoffice
	}
	return &Soffice{bin: bin, exec: osRunner{}}
}

func (s *Soffice) Name() string { return "soffice" }

func (s *Soffice) Check(context.Context) error {
	if _, err := s.exec.LookPath(s.bin); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrToolMissing, s.bin, err)
	}
	return nil
}

func (s *Soffice) Supports(f Format) bool {
	return f == FormatPDF || f == FormatPPTX
}

func (s *Soffice) Target(src, workDir string, f Format) string {
	return filepath.Join(workDir, stem(src)+"."+string(f))
}

func (s *Soffice) Convert(ctx context.Context, src, target string, f Format) error {
	return runTool(ctx, s.exec, s.bin,
		"--headless", "--norestore",
		"--convert-to", string(f),
		"--outdir", filepath.Dir(target),
		src)
}
