package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos"
	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos/testutil"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/pointers"
)

func TestPersonalizedGuidance(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	text := &fakeText{out: "  Work with your amethyst tonight and keep Selenite nearby.  "}
	svc := NewGuidanceService(log, text, repos.NewCollectionRepo(db, log), nil, nil)

	ctx := withUser("alice")
	testutil.SeedCollectionEntry(t, ctx, db, "alice", "Amethyst", "purple", "quartz")
	testutil.SeedCollectionEntry(t, ctx, db, "alice", "Black Tourmaline", "black", "tourmaline")

	res, err := svc.Personalized(ctx, GuidanceRequest{Question: "How do I sleep better?"})
	if err != nil {
		t.Fatalf("Personalized: %v", err)
	}
	if res.Guidance != "Work with your amethyst tonight and keep Selenite nearby." {
		t.Fatalf("guidance: got=%q", res.Guidance)
	}
	if res.GuidanceType != "general" {
		t.Fatalf("guidance_type: got=%q want=general", res.GuidanceType)
	}
	if res.CollectionSize != 2 {
		t.Fatalf("collection_size: got=%d want=2", res.CollectionSize)
	}
	if diff := cmp.Diff([]string{"Amethyst"}, res.CrystalsReferenced); diff != "" {
		t.Fatalf("crystals_referenced mismatch (-want +got):\n%s", diff)
	}
	for _, want := range []string{"How do I sleep better?", "CRYSTAL COLLECTION: 2 crystals", "CURRENT MOON PHASE: " + res.MoonPhase.Name} {
		if !strings.Contains(text.lastUser, want) {
			t.Fatalf("prompt missing %q:\n%s", want, text.lastUser)
		}
	}
}

func TestPersonalizedGuidanceErrors(t *testing.T) {
	log := testutil.Logger(t)

	t.Run("empty question", func(t *testing.T) {
		svc := NewGuidanceService(log, &fakeText{out: "x"}, nil, nil, nil)
		_, err := svc.Personalized(context.Background(), GuidanceRequest{Question: "   "})
		assertAPIError(t, err, http.StatusBadRequest, "missing_question")
	})

	t.Run("no text model", func(t *testing.T) {
		svc := NewGuidanceService(log, nil, nil, nil, nil)
		_, err := svc.Personalized(context.Background(), GuidanceRequest{Question: "hi"})
		assertAPIError(t, err, http.StatusServiceUnavailable, "ai_unavailable")
		if svc.Available() {
			t.Fatalf("Available: got=true want=false")
		}
	})

	t.Run("model failure", func(t *testing.T) {
		svc := NewGuidanceService(log, &fakeText{err: errors.New("quota")}, nil, nil, nil)
		_, err := svc.Personalized(context.Background(), GuidanceRequest{Question: "hi", GuidanceType: "Dream"})
		assertAPIError(t, err, http.StatusBadGateway, "ai_failed")
	})

	t.Run("anonymous caller", func(t *testing.T) {
		text := &fakeText{out: "Breathe."}
		svc := NewGuidanceService(log, text, nil, nil, nil)
		res, err := svc.Personalized(context.Background(), GuidanceRequest{Question: "hi", GuidanceType: "Dream"})
		if err != nil {
			t.Fatalf("Personalized: %v", err)
		}
		if res.GuidanceType != "dream" || res.CollectionSize != 0 || len(res.CrystalsReferenced) != 0 {
			t.Fatalf("result: %+v", res)
		}
		if !strings.Contains(text.lastUser, "none recorded yet") {
			t.Fatalf("prompt should note empty collection:\n%s", text.lastUser)
		}
	})
}

func TestPersonalizedGuidanceUsesProfileAndRecordsSession(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	profiles := repos.NewProfileRepo(db, log)
	sessions := repos.NewGuidanceSessionRepo(db, log)
	text := &fakeText{out: "Your Scorpio moon asks for stillness."}
	svc := NewGuidanceService(log, text, repos.NewCollectionRepo(db, log), profiles, sessions)

	ctx := withUser("alice")
	if _, err := NewProfileService(log, profiles).Update(ctx, UpdateProfileInput{
		SunSign:         pointers.Ptr("Leo"),
		MoonSign:        pointers.Ptr("scorpio"),
		DominantElement: pointers.Ptr("Fire"),
		SpiritualGoals:  pointers.Ptr("inner calm"),
	}); err != nil {
		t.Fatalf("profile Update: %v", err)
	}

	res, err := svc.Personalized(ctx, GuidanceRequest{Question: "What should I focus on?", GuidanceType: "career"})
	if err != nil {
		t.Fatalf("Personalized: %v", err)
	}
	for _, want := range []string{"BIRTH CHART: leo Sun, scorpio Moon, Unknown Rising", "DOMINANT ELEMENT: fire", "SPIRITUAL GOALS: inner calm"} {
		if !strings.Contains(text.lastUser, want) {
			t.Fatalf("prompt missing %q:\n%s", want, text.lastUser)
		}
	}
	wantChart := &BirthChart{SunSign: "leo", MoonSign: "scorpio", DominantElement: "fire"}
	if diff := cmp.Diff(wantChart, res.Personalization.BirthChart); diff != "" {
		t.Fatalf("birth_chart mismatch (-want +got):\n%s", diff)
	}
	if res.Personalization.SpiritualGoals == nil || *res.Personalization.SpiritualGoals != "inner calm" {
		t.Fatalf("spiritual_goals: got=%v", res.Personalization.SpiritualGoals)
	}
	if res.SessionID == nil {
		t.Fatalf("session_id: got=nil want recorded session")
	}

	history, err := svc.History(ctx, 0, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].ID != *res.SessionID {
		t.Fatalf("History: got=%+v", history)
	}
	got := history[0]
	if got.Question != "What should I focus on?" || got.GuidanceType != "career" || got.Response != res.Guidance || got.MoonPhase != res.MoonPhase.Phase {
		t.Fatalf("session: got=%+v", got)
	}

	other, err := svc.History(withUser("bob"), 0, 0)
	if err != nil || len(other) != 0 {
		t.Fatalf("History(bob): got=%d err=%v", len(other), err)
	}
	_, err = svc.History(context.Background(), 0, 0)
	assertAPIError(t, err, http.StatusUnauthorized, "unauthorized")
}

func TestPersonalizedGuidanceWithoutProfileOmitsChart(t *testing.T) {
	log := testutil.Logger(t)
	text := &fakeText{out: "Rest."}
	svc := NewGuidanceService(log, text, nil, nil, nil)

	res, err := svc.Personalized(withUser("alice"), GuidanceRequest{Question: "hi"})
	if err != nil {
		t.Fatalf("Personalized: %v", err)
	}
	if strings.Contains(text.lastUser, "BIRTH CHART") {
		t.Fatalf("prompt should not include a birth chart:\n%s", text.lastUser)
	}
	if res.Personalization.BirthChart != nil || res.SessionID != nil {
		t.Fatalf("result: %+v", res)
	}
}
