// Package messages holds the user-facing notification texts, loadable
// from a JSON file so copy can change without a rebuild.
package messages

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type MessageText struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Messages struct {
	SyncComplete MessageText `json:"sync_complete"`
}

// Default returns the built-in texts. Body templates use fmt verbs
// filled in by the caller.
func Default() *Messages {
	return &Messages{
		SyncComplete: MessageText{
			Title: "Accounts updated",
			Body:  "%d new transactions synced",
		},
	}
}

var cache struct {
	once sync.Once
	msgs Messages
	err  error
}

// Load reads the texts from path, caching the result for subsequent
// calls. An empty path returns the built-in defaults. Safe to call
// from multiple goroutines.
func Load(path string) (*Messages, error) {
	if path == "" {
		return Default(), nil
	}

	cache.once.Do(func() {
		cache.msgs, cache.err = readFile(path)
	})
	if cache.err != nil {
		return nil, cache.err
	}
	return &cache.msgs, nil
}

func readFile(path string) (Messages, error) {
	var m Messages

	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("failed to read messages file: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse messages file: %w", err)
	}
	return m, nil
}
