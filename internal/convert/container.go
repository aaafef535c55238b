// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/pdiddy/deck-merger/internal/container"
)

// DefaultContainerImage is a LibreOffice image whose entrypoint is soffice.
const DefaultContainerImage = "libreoffice:latest"

// Container runs LibreOffice inside a docker or podman image. The source is
// copied into the item's work directory, which is mounted into the container.
type Container struct {
	runtime container.Runtime
	image   string
}

// NewContainer returns a converter using rt to run image.
func NewContainer(rt container.Runtime, image string) *Container {
	if image == "" {
		image = DefaultContainerImage
	}
	return &Container{runtime: rt, image: image}
}

func (c *Container) Name() string { return "container" }

func (c *Container) Check(ctx context.Context) error {
	if err := c.runtime.ImageExists(ctx, c.image); err != nil {
		return fmt.Errorf("%w: %v", ErrToolMissing, err)
	}
	return nil
}

func (c *Container) Supports(f Format) bool {
	return f == FormatPDF || f == FormatPPTX
}

func (c *Container) Target(src, workDir string, f Format) string {
	return filepath.Join(workDir, stem(src)+"."+string(f))
}

func (c *Container) Convert(ctx context.Context, src, target string, f Format) error {
	dir := filepath.Dir(target)
	name := filepath.Base(src)
	if err := copyFile(src, filepath.Join(dir, name)); err != nil {
		return err
	}
	return c.runtime.Run(ctx, c.image, dir,
		"--headless", "--norestore",
		"--convert-to", string(f),
		"--outdir", container.MountPoint,
		path.Join(container.MountPoint, name))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
