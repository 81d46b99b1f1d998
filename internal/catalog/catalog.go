// Package catalog loads the static finance topic list that seeds question
// generation. The catalog is read once at startup and never mutated.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/shauryapandit/tutor-api-gdg/internal/models"
)

// Catalog is an immutable, ordered view of the topic CSV grouped by
// difficulty tier.
type Catalog struct {
	byLevel map[models.Level][]models.Topic
}

// Load reads the topic CSV at path. The file must have a header row with
// Topic and Difficulty columns; every Difficulty value must name one of the
// supported tiers exactly. A tier with zero rows is tolerated at load time
// but logged, since starting a quiz at that tier will fail.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open topic catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse topic catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse reads catalog rows from r. Split from Load so tests can feed
// in-memory CSV data.
func Parse(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	topicIdx, diffIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Topic":
			topicIdx = i
		case "Difficulty":
			diffIdx = i
		}
	}
	if topicIdx < 0 || diffIdx < 0 {
		return nil, fmt.Errorf("missing Topic or Difficulty column in header %v", header)
	}

	byLevel := make(map[models.Level][]models.Topic)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		name := strings.TrimSpace(record[topicIdx])
		difficulty := strings.TrimSpace(record[diffIdx])
		if name == "" {
			continue
		}
		if !models.ValidLevel(difficulty) {
			return nil, fmt.Errorf("row %d: unknown difficulty %q for topic %q", line, difficulty, name)
		}
		level := models.Level(difficulty)
		byLevel[level] = append(byLevel[level], models.Topic{
			Name:       name,
			Difficulty: difficulty,
		})
	}

	for _, level := range models.Levels {
		if len(byLevel[level]) == 0 {
			log.Printf("topic catalog has no %s topics; /start with that level will fail", level)
		}
	}

	return &Catalog{byLevel: byLevel}, nil
}

// TopicsFor returns the ordered topics for level. The returned slice is a
// copy; callers may consume it freely.
func (c *Catalog) TopicsFor(level models.Level) []models.Topic {
	topics := c.byLevel[level]
	out := make([]models.Topic, len(topics))
	copy(out, topics)
	return out
}

// Size returns the total number of catalog rows, for startup logging.
func (c *Catalog) Size() int {
	n := 0
	for _, topics := range c.byLevel {
		n += len(topics)
	}
	return n
}
