package crystal

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos/testutil"
	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
)

func TestJournalRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewJournalRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.JournalEntry{
		{UserID: "alice", Title: "first", Content: "calm", MoonPhase: "full", CrystalIDs: datatypes.JSON([]byte("[]"))},
		{UserID: "alice", Title: "second", Content: "restless", MoonPhase: "new", CrystalIDs: datatypes.JSON([]byte("[]"))},
		{UserID: "bob", Title: "bob's", Content: "x", MoonPhase: "new", CrystalIDs: datatypes.JSON([]byte("[]"))},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Create: expected 3 entries, got %d", len(created))
	}
	for _, e := range created {
		if e.ID.String() == "00000000-0000-0000-0000-000000000000" {
			t.Fatalf("Create: id not assigned: %+v", e)
		}
	}

	list, err := repo.ListByUser(dbc, "alice", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListByUser: expected 2 entries, got %d", len(list))
	}

	got, err := repo.GetByID(dbc, "bob", created[0].ID)
	if err != nil {
		t.Fatalf("GetByID(foreign): %v", err)
	}
	if got != nil {
		t.Fatalf("GetByID(foreign): expected nil, got %+v", got)
	}

	ok, err := repo.SoftDelete(dbc, "alice", created[0].ID)
	if err != nil || !ok {
		t.Fatalf("SoftDelete: ok=%v err=%v", ok, err)
	}
	list, _ = repo.ListByUser(dbc, "alice", 10, 0)
	if len(list) != 1 || list[0].Title != "second" {
		t.Fatalf("ListByUser(after delete): unexpected result: %+v", list)
	}
}

func TestJournalRepoListByUserSince(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewJournalRepo(db, testutil.Logger(t))

	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	entry := func(user, entryType string, daysAgo int) *types.JournalEntry {
		return &types.JournalEntry{
			UserID:     user,
			EntryType:  entryType,
			Content:    "x",
			MoonPhase:  "new",
			CrystalIDs: datatypes.JSON([]byte("[]")),
			EntryDate:  now.AddDate(0, 0, -daysAgo),
		}
	}
	if _, err := repo.Create(dbc, []*types.JournalEntry{
		entry("alice", types.JournalEntryTypeDream, 1),
		entry("alice", types.JournalEntryTypeDream, 10),
		entry("alice", types.JournalEntryTypeJournal, 2),
		entry("alice", types.JournalEntryTypeDream, 40),
		entry("bob", types.JournalEntryTypeDream, 1),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	since := now.AddDate(0, 0, -30)
	cases := []struct {
		name      string
		entryType string
		want      int
	}{
		{"all types", "", 3},
		{"dreams only", types.JournalEntryTypeDream, 2},
		{"journals only", types.JournalEntryTypeJournal, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.ListByUserSince(dbc, "alice", since, tc.entryType)
			if err != nil {
				t.Fatalf("ListByUserSince: %v", err)
			}
			if len(got) != tc.want {
				t.Fatalf("ListByUserSince: got=%d want=%d", len(got), tc.want)
			}
			for i := 1; i < len(got); i++ {
				if got[i].EntryDate.After(got[i-1].EntryDate) {
					t.Fatalf("ListByUserSince: not newest first at %d", i)
				}
			}
		})
	}

	got, err := repo.ListByUserSince(dbc, "", since, "")
	if err != nil || len(got) != 0 {
		t.Fatalf("ListByUserSince(no user): got=%d err=%v", len(got), err)
	}
}
