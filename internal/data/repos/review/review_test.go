package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quizprogress-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quizprogress-backend/internal/domain"
	"github.com/yungbote/quizprogress-backend/internal/domain/rawjson"
	"github.com/yungbote/quizprogress-backend/internal/platform/dbctx"
)

func TestReviewRepoListNewest(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "review-"+uuid.NewString()+"@example.com")
	repo := NewReviewRepo(db, testutil.Logger(t))

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []*types.Review{
		{UserID: u.ID, Username: "A", Rating: 5, Comment: "old", Metadata: rawjson.JSON(`42`), CreatedAt: base},
		{UserID: u.ID, Username: "A", Rating: 3, Comment: "new", Metadata: rawjson.JSON(`"mobile"`), CreatedAt: base.Add(time.Hour)},
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ListNewest(dbc, 0, 2)
	if err != nil {
		t.Fatalf("ListNewest: %v", err)
	}
	if len(got) != 2 || got[0].Comment != "new" {
		t.Fatalf("ListNewest: unexpected %+v", got)
	}
	if string(got[0].Metadata) != `"mobile"` || string(got[1].Metadata) != `42` {
		t.Fatalf("scalar metadata not kept verbatim: %s, %s", got[0].Metadata, got[1].Metadata)
	}
	n, err := repo.CountByUser(dbc, u.ID)
	if err != nil || n != 2 {
		t.Fatalf("CountByUser: n=%d err=%v", n, err)
	}
}
