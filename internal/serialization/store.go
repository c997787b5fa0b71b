package serialization

import (
	"path/filepath"

	"k8s.io/klog/v2"
)

// FileStore persists optimizer state files on the local filesystem.
// It satisfies the optim.StateStore interface.
//
// The logical checkpoint name maps to a file path: relative to Dir
// when a root directory is configured, taken as-is otherwise. Names
// without an extension get ".mst" appended.
type FileStore struct {
	dir string
}

// NewFileStore creates a store that resolves names relative to the
// current working directory.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// NewFileStoreAt creates a store rooted at dir.
func NewFileStoreAt(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(name string) string {
	if s.dir != "" {
		name = filepath.Join(s.dir, name)
	}
	if filepath.Ext(name) == "" {
		name += ".mst"
	}
	return name
}

// Save writes segments under the logical name.
func (s *FileStore) Save(name string, segments map[string][]float32) error {
	path := s.path(name)
	klog.V(1).Infof("writing state file %s (%d segments)", path, len(segments))
	return WriteStateFile(path, segments)
}

// Load reads the segments stored under the logical name.
func (s *FileStore) Load(name string) (map[string][]float32, error) {
	path := s.path(name)
	klog.V(1).Infof("reading state file %s", path)
	return ReadStateFile(path)
}
