package credentials

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/secops-console/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const sessionFileName = "session.json"

var _ Store = (*FileStore)(nil)

// FileStore keeps both entries in one JSON document. Writes go through a temporary
// file and a rename so a reader sees either the old pair or the new one.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore stores the session under folder, creating it if needed.
func NewFileStore(folder string) (*FileStore, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStore] create data folder")
	}
	return &FileStore{path: filepath.Join(folder, sessionFileName)}, nil
}

// Path returns the location of the session document
func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) Save(_ context.Context, token string, user users.Profile) error {
	rawUser, err := EncodeProfile(user)
	if err != nil {
		return errors.Wrap(err, "[FileStore.Save] encode profile")
	}
	doc, err := json.Marshal(map[string]string{TokenKey: token, UserKey: rawUser})
	if err != nil {
		return errors.Wrap(err, "[FileStore.Save] encode document")
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".session-*")
	if err != nil {
		return errors.Wrap(err, "[FileStore.Save] create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[FileStore.Save] write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileStore.Save] close temp file")
	}
	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		return errors.Wrap(err, "[FileStore.Save] rename")
	}
	return nil
}

func (fs *FileStore) Read(_ context.Context) (string, *users.Profile) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	b, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Err(err).Str("path", fs.path).Msg("Failed to read session file")
		}
		return "", nil
	}
	var doc map[string]string
	if err := json.Unmarshal(b, &doc); err != nil {
		log.Warn().Err(err).Str("path", fs.path).Msg("Session file is corrupt, ignoring")
		return "", nil
	}
	return doc[TokenKey], DecodeProfile(doc[UserKey])
}

func (fs *FileStore) Clear(_ context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileStore.Clear] remove")
	}
	return nil
}
