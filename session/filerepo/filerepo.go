package filerepo

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-session-client/session"
)

const sessionFile = "session.json"

// FileRepo persists the session to a JSON file so it survives a process
// restart. The file holds the refresh token and the last-known profile only;
// access tokens are never written to disk. Writes go through a temp file and
// rename so a persisted session is replaced atomically.
type FileRepo struct {
	path string
}

var _ session.Repo = (*FileRepo)(nil)

// New creates a FileRepo rooted at dataFolder, creating the folder if needed.
func New(dataFolder string) (*FileRepo, error) {
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[filerepo.New] create data folder")
	}
	return &FileRepo{path: filepath.Join(dataFolder, sessionFile)}, nil
}

func (r *FileRepo) Save(persisted *session.PersistedSession) error {
	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileRepo.Save] marshal session")
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] write session file")
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return errors.Wrap(err, "[FileRepo.Save] replace session file")
	}
	return nil
}

func (r *FileRepo) Load() (*session.PersistedSession, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileRepo.Load] read session file")
	}

	var persisted session.PersistedSession
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, errors.Wrap(err, "[FileRepo.Load] unmarshal session file")
	}
	return &persisted, nil
}

func (r *FileRepo) Delete() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[FileRepo.Delete] remove session file")
	}
	return nil
}
