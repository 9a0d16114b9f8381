package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos"
	"github.com/yungbote/crystal-grimoire-backend/internal/normalization"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/ctxutil"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

const SynodicMonthDays = 29.5305882

var referenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

type MoonPhase struct {
	Phase        string    `json:"phase"`
	Name         string    `json:"name"`
	Emoji        string    `json:"emoji"`
	Illumination float64   `json:"illumination"`
	AgeDays      float64   `json:"age_days"`
	Fraction     float64   `json:"fraction"`
	Timestamp    time.Time `json:"timestamp"`
}

// phaseBands are ordered; each applies while the cycle fraction is below upper.
var phaseBands = []struct {
	upper float64
	key   string
	name  string
	emoji string
}{
	{0.125, "new", "New Moon", "🌑"},
	{0.25, "waxing_crescent", "Waxing Crescent", "🌒"},
	{0.375, "first_quarter", "First Quarter", "🌓"},
	{0.5, "waxing_gibbous", "Waxing Gibbous", "🌔"},
	{0.625, "full", "Full Moon", "🌕"},
	{0.75, "waning_gibbous", "Waning Gibbous", "🌖"},
	{0.875, "last_quarter", "Last Quarter", "🌗"},
	{math.Inf(1), "waning_crescent", "Waning Crescent", "🌘"},
}

// CurrentPhase computes the lunar phase at t from the mean synodic month.
func CurrentPhase(t time.Time) MoonPhase {
	t = t.UTC()
	days := t.Sub(referenceNewMoon).Hours() / 24
	age := math.Mod(days, SynodicMonthDays)
	if age < 0 {
		age += SynodicMonthDays
	}
	frac := age / SynodicMonthDays

	out := MoonPhase{
		Illumination: round3((1 - math.Cos(2*math.Pi*frac)) / 2),
		AgeDays:      round3(age),
		Fraction:     round3(frac),
		Timestamp:    t,
	}
	for _, b := range phaseBands {
		if frac < b.upper {
			out.Phase, out.Name, out.Emoji = b.key, b.name, b.emoji
			break
		}
	}
	return out
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

type Ritual struct {
	Phase           string   `json:"phase"`
	Name            string   `json:"name"`
	Focus           string   `json:"focus"`
	Energy          string   `json:"energy"`
	Crystals        []string `json:"crystals"`
	Steps           []string `json:"steps"`
	DurationMinutes int      `json:"duration_minutes"`

	UserAvailableCrystals []string `json:"user_available_crystals,omitempty"`
	AlternativeCrystals   []string `json:"alternative_crystals,omitempty"`
	PersonalizedNote      string   `json:"personalized_note,omitempty"`
}

var ritualTemplates = map[string]Ritual{
	"new": {
		Name:     "New Moon Intention Setting",
		Focus:    "New beginnings, manifestation, goal setting",
		Energy:   "Planting seeds, fresh starts",
		Crystals: []string{"Clear Quartz", "Selenite", "Black Tourmaline", "Labradorite"},
		Steps: []string{
			"Cleanse your space with sage or palo santo",
			"Light a white candle for new beginnings",
			"Hold your intention crystal and set clear goals",
			"Write your intentions on paper",
			"Place crystals around your written intentions",
			"Meditate on your goals for 10-15 minutes",
		},
		DurationMinutes: 30,
	},
	"full": {
		Name:     "Full Moon Release & Gratitude",
		Focus:    "Release, gratitude, culmination, power",
		Energy:   "Peak energy, letting go, celebration",
		Crystals: []string{"Moonstone", "Selenite", "Clear Quartz", "Amethyst"},
		Steps: []string{
			"Create sacred space under moonlight if possible",
			"Light silver or white candles",
			"Hold moonstone or selenite",
			"Express gratitude for what has manifested",
			"Write down what you want to release",
			"Safely burn or bury the release paper",
			"Charge your crystals in moonlight",
		},
		DurationMinutes: 45,
	},
	"first_quarter": {
		Name:     "First Quarter Action Ritual",
		Focus:    "Taking action, overcoming obstacles, decision making",
		Energy:   "Forward momentum, willpower, courage",
		Crystals: []string{"Citrine", "Tiger's Eye", "Carnelian", "Red Jasper"},
		Steps: []string{
			"Set up your space with action-oriented crystals",
			"Light yellow or orange candles for energy",
			"Review your new moon intentions",
			"Identify specific actions to take",
			"Hold citrine while visualizing success",
			"Create an action plan with deadlines",
		},
		DurationMinutes: 25,
	},
	"last_quarter": {
		Name:     "Last Quarter Forgiveness Ritual",
		Focus:    "Forgiveness, release, breaking patterns",
		Energy:   "Letting go, healing, reflection",
		Crystals: []string{"Rose Quartz", "Smoky Quartz", "Apache Tear", "Lepidolite"},
		Steps: []string{
			"Create a peaceful, healing environment",
			"Light pink candles for heart healing",
			"Hold rose quartz over your heart",
			"Practice forgiveness meditation",
			"Release old patterns and grudges",
			"Send love to yourself and others",
		},
		DurationMinutes: 35,
	},
}

// NormalizePhaseKey maps "Full Moon", "full-moon" and "FULL" to "full".
func NormalizePhaseKey(phase string) string {
	k := normalization.ParseInputString(phase)
	k = strings.NewReplacer("-", "_", " ", "_").Replace(k)
	if k != "new_moon" && k != "full_moon" {
		return k
	}
	return strings.TrimSuffix(k, "_moon")
}

type MoonService interface {
	CurrentPhase() MoonPhase
	Ritual(ctx context.Context, phase string) (*Ritual, error)
}

type moonService struct {
	log        *logger.Logger
	collection repos.CollectionRepo
	now        func() time.Time
}

func NewMoonService(log *logger.Logger, collection repos.CollectionRepo) MoonService {
	return &moonService{
		log:        log.With("service", "MoonService"),
		collection: collection,
		now:        time.Now,
	}
}

func (s *moonService) CurrentPhase() MoonPhase { return CurrentPhase(s.now()) }

func (s *moonService) Ritual(ctx context.Context, phase string) (*Ritual, error) {
	key := NormalizePhaseKey(phase)
	tmpl, ok := ritualTemplates[key]
	if !ok {
		return nil, apierr.NotFound("ritual_not_found", fmt.Sprintf("ritual for phase %q", phase))
	}
	r := tmpl
	r.Phase = key
	r.Crystals = append([]string(nil), tmpl.Crystals...)
	r.Steps = append([]string(nil), tmpl.Steps...)

	userID := ctxutil.UserID(ctx)
	if userID == "" || s.collection == nil {
		return &r, nil
	}
	names, err := collectionNames(dbctx.Context{Ctx: ctx}, s.collection, userID)
	if err != nil {
		// Personalization is optional; fall back to the plain template.
		s.log.Warn("ritual personalization skipped", "user_id", userID, "error", err)
		return &r, nil
	}
	personalizeRitual(&r, names)
	return &r, nil
}

func personalizeRitual(r *Ritual, owned []string) {
	if len(owned) == 0 {
		return
	}
	var available []string
	for _, rec := range r.Crystals {
		needle := strings.ToLower(rec)
		for _, name := range owned {
			if strings.Contains(strings.ToLower(name), needle) {
				available = append(available, rec)
				break
			}
		}
	}
	if len(available) > 0 {
		r.UserAvailableCrystals = available
		r.PersonalizedNote = fmt.Sprintf("You have %s in your collection - perfect for this ritual!", strings.Join(available, ", "))
		return
	}
	r.AlternativeCrystals = append([]string(nil), firstN(owned, 3)...)
	r.PersonalizedNote = fmt.Sprintf("While you don't have the traditional crystals, try using %s from your collection.", strings.Join(r.AlternativeCrystals, ", "))
}

const maxCollectionScan = 200

// collectionNames lists the display names of a user's crystals, newest first.
func collectionNames(dbc dbctx.Context, repo repos.CollectionRepo, userID string) ([]string, error) {
	entries, err := repo.ListByUser(dbc, userID, maxCollectionScan, 0)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if name := strings.TrimSpace(e.Name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
