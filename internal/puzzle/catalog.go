// Package puzzle загружает каталог загадок с диска. Содержимое загадок
// движок не валидирует: story и truth - непрозрачный текст для промптов.
package puzzle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Puzzle - одна загадка каталога.
type Puzzle struct {
	Title string `json:"title"`
	Story string `json:"story"`
	Truth string `json:"truth"`
}

// Catalog отдает список загадок из каталога JSON-файлов.
type Catalog struct {
	dir    string
	logger *zap.Logger
}

// NewCatalog creates a new puzzle catalog reading from the given directory.
func NewCatalog(dir string, logger *zap.Logger) *Catalog {
	return &Catalog{
		dir:    dir,
		logger: logger.Named("PuzzleCatalog"),
	}
}

// List читает все загадки из каталога. Файлы с битым JSON или без
// обязательных полей пропускаются с предупреждением, а не валят запрос.
func (c *Catalog) List() ([]Puzzle, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			c.logger.Warn("Puzzles directory not found", zap.String("dir", c.dir))
			return []Puzzle{}, nil
		}
		return nil, fmt.Errorf("failed to read puzzles directory %s: %w", c.dir, err)
	}

	puzzles := make([]Puzzle, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(c.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Warn("Failed to read puzzle file", zap.String("file", path), zap.Error(err))
			continue
		}

		var p Puzzle
		if err := json.Unmarshal(data, &p); err != nil {
			c.logger.Warn("Failed to parse puzzle file", zap.String("file", path), zap.Error(err))
			continue
		}
		if p.Title == "" || p.Story == "" {
			c.logger.Warn("Puzzle file missing required fields", zap.String("file", path))
			continue
		}

		puzzles = append(puzzles, p)
	}

	return puzzles, nil
}
