// Package backup implementa los destinos donde se escriben los respaldos
// programados: un directorio local o un bucket S3.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("invalid backup name")

// Dir escribe cada respaldo como archivo dentro de Path.
type Dir struct {
	Path string
}

func NewDir(path string) (*Dir, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("backup dir is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve backup dir: %w", err)
	}
	return &Dir{Path: abs}, nil
}

// Write reemplaza el archivo si ya existe (un respaldo por día).
// Escribe a un temporal y renombra para no dejar archivos a medias.
func (d *Dir) Write(_ context.Context, name string, data []byte) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	tmp, err := os.CreateTemp(d.Path, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close backup: %w", err)
	}

	dst := filepath.Join(d.Path, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("rename backup: %w", err)
	}
	return dst, nil
}

func (d *Dir) String() string { return "dir:" + d.Path }
