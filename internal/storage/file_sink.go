package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
)

// FileSink writes one <username>_persona.txt per user, replacing older files.
type FileSink struct {
	Dir    string
	FS     afero.Fs
	Logger *zap.Logger
}

func NewFileSink(dir string, logger *zap.Logger) (*FileSink, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSink{Dir: dir, FS: fs, Logger: logger}, nil
}

var _ ports.PersonaSink = (*FileSink)(nil)

// Path returns the file a username's persona is written to.
func (s *FileSink) Path(username string) string {
	return filepath.Join(s.Dir, username+"_persona.txt")
}

func (s *FileSink) Save(ctx context.Context, doc domain.PersonaDocument, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.FS.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := afero.TempFile(s.FS, s.Dir, "."+username+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(doc.Text()); err != nil {
		tmp.Close()
		s.FS.Remove(tmpName)
		return fmt.Errorf("write persona: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.FS.Remove(tmpName)
		return fmt.Errorf("close persona: %w", err)
	}

	path := s.Path(username)
	if err := s.FS.Rename(tmpName, path); err != nil {
		s.FS.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	s.Logger.Info("Persona saved", zap.String("username", username), zap.String("path", path))
	return nil
}
