// Package fixture is an offline activity source that reads recorded activity
// from JSON files named <username>.json.
package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
)

type Source struct {
	Dir string
	FS  afero.Fs
}

func NewSource(dir string) *Source {
	return &Source{Dir: dir, FS: afero.NewOsFs()}
}

var _ ports.ActivitySource = (*Source)(nil)

type file struct {
	Posts    []domain.ActivityRecord `json:"posts"`
	Comments []domain.ActivityRecord `json:"comments"`
}

func (s *Source) Fetch(ctx context.Context, username string, limit int) (domain.UserActivity, error) {
	activity := domain.UserActivity{Username: username}
	if err := ctx.Err(); err != nil {
		return activity, domain.NewFetchError(domain.ErrTransientNetwork, username, err)
	}

	path := filepath.Join(s.Dir, username+".json")
	data, err := afero.ReadFile(s.FS, path)
	if errors.Is(err, fs.ErrNotExist) {
		return activity, domain.NewFetchError(domain.ErrUserNotFound, username, err)
	}
	if err != nil {
		return activity, domain.NewFetchError(domain.ErrTransientNetwork, username, err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return activity, domain.NewFetchError(domain.ErrTransientNetwork, username, fmt.Errorf("decode %s: %w", path, err))
	}
	for _, p := range f.Posts {
		p.Kind = domain.KindPost
		activity.Posts = append(activity.Posts, p)
	}
	for _, c := range f.Comments {
		c.Kind = domain.KindComment
		activity.Comments = append(activity.Comments, c)
	}
	return activity.Truncate(limit), nil
}
