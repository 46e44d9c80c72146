package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
)

const defaultCatalog = `
categories:
  - name: math
    quizzes: [Fractions, Algebra basics, Geometry]
  - name: history
    quizzes: [Ancient Rome, The Renaissance]
  - name: science
    quizzes: [Cells, Newton's laws, The periodic table]
`

type catalogFile struct {
	Categories []catalogCategory `yaml:"categories"`
}

type catalogCategory struct {
	Name    string   `yaml:"name"`
	Quizzes []string `yaml:"quizzes"`
}

func parseCatalog(raw []byte) (*catalogFile, error) {
	var c catalogFile
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for i, cat := range c.Categories {
		n := strings.TrimSpace(cat.Name)
		if n == "" {
			return nil, fmt.Errorf("category %d: missing name", i)
		}
		if seen[n] {
			return nil, fmt.Errorf("duplicate category %q", n)
		}
		seen[n] = true
		for j, title := range cat.Quizzes {
			if strings.TrimSpace(title) == "" {
				return nil, fmt.Errorf("category %q quiz %d: missing title", n, j)
			}
		}
	}
	if len(c.Categories) == 0 {
		return nil, fmt.Errorf("catalog has no categories")
	}
	return &c, nil
}

func (c *catalogFile) quizCount() int {
	n := 0
	for _, cat := range c.Categories {
		n += len(cat.Quizzes)
	}
	return n
}

// rows assigns increasing created_at values in file order so the last quiz listed is the newest.
func (c *catalogFile) rows(now time.Time) ([]*types.QuizCategory, []*types.Quiz) {
	categories := make([]*types.QuizCategory, 0, len(c.Categories))
	quizzes := make([]*types.Quiz, 0, c.quizCount())
	ts := now.Add(-time.Duration(c.quizCount()) * time.Second)
	for _, cat := range c.Categories {
		row := &types.QuizCategory{ID: uuid.New(), Name: strings.TrimSpace(cat.Name), CreatedAt: now}
		categories = append(categories, row)
		for _, title := range cat.Quizzes {
			quizzes = append(quizzes, &types.Quiz{
				ID:         uuid.New(),
				Title:      strings.TrimSpace(title),
				CategoryID: row.ID,
				CreatedAt:  ts,
				UpdatedAt:  ts,
			})
			ts = ts.Add(time.Second)
		}
	}
	return categories, quizzes
}
