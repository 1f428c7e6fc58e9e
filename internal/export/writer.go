// Package export writes the run's artifacts: raw JSON, the rendered
// transcript, the optional SQLite archive, and downloaded files. Failures
// here are soft: they are counted and reported, never fatal.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"slackdm/internal/slack"
)

// MessagesJSON serializes the raw message list as indented JSON. The caller
// passes the slice in the order it wants persisted (newest first, matching
// the API's own order).
func MessagesJSON(msgs []slack.Message) ([]byte, error) {
	if msgs == nil {
		// An empty history is still a list.
		msgs = []slack.Message{}
	}
	data, err := json.MarshalIndent(msgs, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}
	return data, nil
}

// WriteFile writes data under dir/name, creating the directory tree first.
func WriteFile(dir, name string, data []byte) error {
	loc := name
	if dir != "" {
		loc = filepath.Join(dir, name)
	}
	if err := makeDirs(loc); err != nil {
		return err
	}
	if err := os.WriteFile(loc, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", loc, err)
	}
	return nil
}

// makeDirs creates the parent directory of loc if it has one.
func makeDirs(loc string) error {
	dir := filepath.Dir(loc)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
