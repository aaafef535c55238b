// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

const contentTypesPart = "[Content_Types].xml"

// ErrNotPackage is returned for files that are not .pptx zip packages,
// including legacy binary .ppt presentations.
var ErrNotPackage = errors.New("not a pptx package")

// pkg is an OOXML package held in memory. Part names have no leading slash.
type pkg struct {
	order []string
	parts map[string][]byte
}

func readPackage(file string) (*pkg, error) {
	zr, err := zip.OpenReader(file)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%s: %w", path.Base(file), ErrNotPackage)
		}
		return nil, fmt.Errorf("opening %s: %w", file, err)
	}
	defer zr.Close()

	p := &pkg{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s in %s: %w", f.Name, path.Base(file), err)
		}
		p.put(f.Name, data)
	}
	if !p.has(contentTypesPart) {
		return nil, fmt.Errorf("%s: %w: missing %s", path.Base(file), ErrNotPackage, contentTypesPart)
	}
	return p, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *pkg) has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

func (p *pkg) get(name string) []byte { return p.parts[name] }

func (p *pkg) put(name string, data []byte) {
	if !p.has(name) {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
}

// write serialises the package with the content types part first.
func (p *pkg) write(w io.Writer) error {
	zw := zip.NewWriter(w)
	names := make([]string, 0, len(p.order))
	names = append(names, contentTypesPart)
	for _, n := range p.order {
		if n != contentTypesPart {
			names = append(names, n)
		}
	}
	for _, n := range names {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: n, Method: zip.Deflate})
		if err != nil {
			return err
		}
		if _, err := fw.Write(p.parts[n]); err != nil {
			return err
		}
	}
	return zw.Close()
}

// writeTemp writes the package to a new temp file in dir and returns its
// path. On failure no file is left behind.
func (p *pkg) writeTemp(dir string) (string, error) {
	tmp, err := os.CreateTemp(dir, ".merge-*.pptx")
	if err != nil {
		return "", fmt.Errorf("creating temp output: %w", err)
	}
	if err := p.write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing presentation: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// freeName returns dir/stem+ext, or dir/stem_N+ext for the smallest N that
// is not already a part.
func (p *pkg) freeName(dir, stem, ext string) string {
	name := path.Join(dir, stem+ext)
	for n := 2; p.has(name); n++ {
		name = path.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
	return name
}
