package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Writer accumulates output items for one run and serializes them.
type Writer struct {
	channel   ChannelMetadata
	items     []OutputItem
	generator *Generator
	now       func() time.Time
}

func NewWriter(channel ChannelMetadata, generator *Generator) *Writer {
	return &Writer{
		channel:   channel,
		items:     make([]OutputItem, 0),
		generator: generator,
		now:       time.Now,
	}
}

// AddItem appends an item. Items are rendered in the order they were added.
func (w *Writer) AddItem(item OutputItem) {
	w.items = append(w.items, item)
}

func (w *Writer) Items() []OutputItem {
	items := make([]OutputItem, len(w.items))
	copy(items, w.items)
	return items
}

func (w *Writer) Len() int {
	return len(w.items)
}

// Serialize writes the feed to path, replacing any existing file. The
// document is written to a temporary file first so readers never observe a
// partially written feed.
func (w *Writer) Serialize(path string) error {
	rss, err := w.generator.Run(w.channel, w.items, w.now())
	if err != nil {
		return fmt.Errorf("failed to generate RSS: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(rss); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write feed: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close feed file: %w", err)
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set feed file mode: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
