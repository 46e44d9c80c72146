package main

import (
	"testing"
	"time"
)

func TestParseDefaultCatalog(t *testing.T) {
	c, err := parseCatalog([]byte(defaultCatalog))
	if err != nil {
		t.Fatalf("parseCatalog: %v", err)
	}
	cats, quizzes := c.rows(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if len(cats) != 3 || len(quizzes) != c.quizCount() || len(quizzes) != 8 {
		t.Fatalf("cats=%d quizzes=%d", len(cats), len(quizzes))
	}
	for i := 1; i < len(quizzes); i++ {
		if !quizzes[i].CreatedAt.After(quizzes[i-1].CreatedAt) {
			t.Fatalf("created_at not increasing at %d", i)
		}
	}
	if quizzes[0].CategoryID != cats[0].ID {
		t.Fatalf("first quiz not linked to first category")
	}
}

func TestParseCatalogRejects(t *testing.T) {
	cases := map[string]string{
		"empty":        "categories: []",
		"missing_name": "categories: [{quizzes: [a]}]",
		"duplicate":    "categories: [{name: a}, {name: a}]",
		"blank_title":  "categories: [{name: a, quizzes: [\" \"]}]",
		"not_yaml":     "categories: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseCatalog([]byte(raw)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
