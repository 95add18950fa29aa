package store

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrAssetNotFound = errors.New("asset not found")

// DirStore serves static page assets from a local directory.
type DirStore struct {
	root string
}

func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Open reads key relative to the root. Keys containing a ".." segment are
// refused outright; the rest are cleaned so they stay under the root.
func (s *DirStore) Open(ctx context.Context, key string) ([]byte, string, error) {
	for _, seg := range strings.Split(key, "/") {
		if seg == ".." {
			return nil, "", ErrAssetNotFound
		}
	}
	clean := path.Clean("/" + key)
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrAssetNotFound
		}
		return nil, "", err
	}
	ct := mime.TypeByExtension(path.Ext(clean))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return data, ct, nil
}
