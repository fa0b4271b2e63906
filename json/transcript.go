package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/coursechat"
)

// envelope is the v1 on-disk format of an exported session transcript.
type envelope struct {
	Version    int          `json:"version"`
	ID         string       `json:"id"`
	ExportedAt time.Time    `json:"exported_at"`
	Messages   []messageDTO `json:"messages"`
}

// MarshalTranscript serializes a Session in v1 envelope format.
func MarshalTranscript(s coursechat.Session, exportedAt time.Time) ([]byte, error) {
	env := envelope{
		Version:    1,
		ID:         s.ID,
		ExportedAt: exportedAt,
		Messages:   marshalMessages(s.Messages),
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalTranscript deserializes a Session from v1 envelope format.
func UnmarshalTranscript(data []byte) (coursechat.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return coursechat.Session{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return coursechat.Session{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs, err := unmarshalMessages(env.Messages)
	if err != nil {
		return coursechat.Session{}, err
	}
	return coursechat.Session{ID: env.ID, Messages: msgs}, nil
}

// Save writes a transcript file atomically, creating parent directories as
// needed.
func Save(path string, s coursechat.Session) error {
	data, err := MarshalTranscript(s, time.Now())
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a transcript file.
func Load(path string) (coursechat.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return coursechat.Session{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}
