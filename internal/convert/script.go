// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const defaultScriptHost = "cscript"

// Script converts through an OS scripting host running a conversion script
// that drives the installed presentation application. The script receives
// the source path and writes <name>.pdf next to it.
type Script struct {
	host   string
	script string
	exec   runner
}

// NewScript returns a scripting-host converter. An empty host means "cscript".
func NewScript(host, script string) *Script {
	if host == "" {
		host = defaultScriptHost
	}
	return &Script{host: host, script: script, exec: osRunner{}}
}

func (s *Script) Name() string { return "script" }

func (s *Script) Check(context.Context) error {
	if _, err := s.exec.LookPath(s.host); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrToolMissing, s.host, err)
	}
	if s.script == "" {
		return fmt.Errorf("%w: no conversion script configured", ErrToolMissing)
	}
	if _, err := os.Stat(s.script); err != nil {
		return fmt.Errorf("%w: script %s: %v", ErrToolMissing, s.script, err)
	}
	return nil
}

func (s *Script) Supports(f Format) bool { return f == FormatPDF }

// Target is beside the source; the work directory is not used.
func (s *Script) Target(src, _ string, f Format) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + "." + string(f)
}

func (s *Script) Convert(ctx context.Context, src, _ string, _ Format) error {
	return runTool(ctx, s.exec, s.host, "//nologo", s.script, src)
}
