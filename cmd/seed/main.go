package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/quizprogress-backend/internal/app"
	types "github.com/yungbote/quizprogress-backend/internal/domain"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
)

func main() {
	var file string
	var email string
	var name string
	var ttl time.Duration
	flag.StringVar(&file, "file", "", "YAML catalog to load (defaults to the built-in demo catalog)")
	flag.StringVar(&email, "email", "demo@example.com", "email of the demo user to create")
	flag.StringVar(&name, "name", "Demo", "display name of the demo user")
	flag.DurationVar(&ttl, "ttl", 24*time.Hour, "lifetime of the printed access token")
	flag.Parse()

	raw := []byte(defaultCatalog)
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			fmt.Printf("read catalog: %v\n", err)
			os.Exit(1)
		}
		raw = b
	}
	catalog, err := parseCatalog(raw)
	if err != nil {
		fmt.Printf("parse catalog: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	user := &types.User{Email: strings.TrimSpace(email), Name: strings.TrimSpace(name)}
	err = application.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		categories, quizzes := catalog.rows(time.Now().UTC())
		if _, err := application.Repos.Quiz.CreateCategories(dbc, categories); err != nil {
			return fmt.Errorf("create categories: %w", err)
		}
		if _, err := application.Repos.Quiz.Create(dbc, quizzes); err != nil {
			return fmt.Errorf("create quizzes: %w", err)
		}
		if _, err := application.Repos.User.Create(dbc, []*types.User{user}); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		fmt.Printf("seed: %v\n", err)
		os.Exit(1)
	}

	token, err := application.Services.Token.IssueToken(user.ID, ttl)
	if err != nil {
		fmt.Printf("issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("seeded %d categories and %d quizzes\n", len(catalog.Categories), catalog.quizCount())
	fmt.Printf("user_id=%s\n", user.ID)
	fmt.Printf("token=%s\n", token)
}
