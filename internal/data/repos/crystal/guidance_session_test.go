package crystal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos/testutil"
	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
)

func TestGuidanceSessionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewGuidanceSessionRepo(db, testutil.Logger(t))

	base := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	created, err := repo.Create(dbc, []*types.GuidanceSession{
		{UserID: "alice", Question: "q1", GuidanceType: "general", Response: "a1", CreatedAt: base},
		{UserID: "alice", Question: "q2", GuidanceType: "dream", Response: "a2", CreatedAt: base.Add(time.Hour)},
		{UserID: "bob", Question: "q3", GuidanceType: "general", Response: "a3", CreatedAt: base},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, s := range created {
		if s.ID == uuid.Nil {
			t.Fatalf("Create: id not assigned: %+v", s)
		}
	}

	list, err := repo.ListByUser(dbc, "alice", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].Question != "q2" || list[1].Question != "q1" {
		t.Fatalf("ListByUser: got=%+v", list)
	}

	page, err := repo.ListByUser(dbc, "alice", 1, 1)
	if err != nil || len(page) != 1 || page[0].Question != "q1" {
		t.Fatalf("ListByUser(page): got=%+v err=%v", page, err)
	}
}
