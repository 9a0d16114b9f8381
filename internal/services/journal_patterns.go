package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
)

const (
	defaultPatternDays = 30
	maxPatternDays     = 365
	maxRecurring       = 10
	noActivePhase      = "none"
)

type PatternsQuery struct {
	Days      int
	EntryType string
}

type PatternCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type JournalPatterns struct {
	TotalEntries          int            `json:"total_entries"`
	TimeframeDays         int            `json:"timeframe_days"`
	EntryType             string         `json:"entry_type,omitempty"`
	RecurringSymbols      []PatternCount `json:"recurring_symbols"`
	RecurringThemes       []PatternCount `json:"recurring_themes"`
	MoonPhaseDistribution map[string]int `json:"moon_phase_distribution"`
	EmotionalDistribution map[string]int `json:"emotional_distribution"`
	MostActiveMoonPhase   string         `json:"most_active_moon_phase"`
}

// Patterns summarizes the caller's entries dated within the last q.Days days.
func (s *journalService) Patterns(ctx context.Context, q PatternsQuery) (*JournalPatterns, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	entryType := ""
	if q.EntryType != "" {
		if entryType, err = parseEntryType(q.EntryType); err != nil {
			return nil, err
		}
	}
	days := q.Days
	switch {
	case days <= 0:
		days = defaultPatternDays
	case days > maxPatternDays:
		days = maxPatternDays
	}

	since := s.now().Add(-time.Duration(days) * 24 * time.Hour)
	entries, err := s.journalRepo.ListByUserSince(dbctx.Context{Ctx: ctx}, userID, since, entryType)
	if err != nil {
		return nil, fmt.Errorf("list journal since %s: %w", since.Format(time.RFC3339), err)
	}

	elements := make([]*types.JournalElements, 0, len(entries))
	phases := make([]string, 0, len(entries))
	for _, e := range entries {
		phases = append(phases, e.MoonPhase)
		elements = append(elements, s.elementsOf(e))
	}
	out := analyzePatterns(phases, elements)
	out.TimeframeDays = days
	out.EntryType = entryType
	return out, nil
}

func (s *journalService) elementsOf(e *types.JournalEntry) *types.JournalElements {
	if len(e.Elements) == 0 || string(e.Elements) == "null" {
		return nil
	}
	var el types.JournalElements
	if err := json.Unmarshal(e.Elements, &el); err != nil {
		s.log.Warn("journal elements unreadable", "entry_id", e.ID.String(), "error", err)
		return nil
	}
	return &el
}

// analyzePatterns counts phases, tones, symbols and themes. phases and elements are
// parallel; a nil elements entry counts as a neutral tone with no symbols or themes.
// Symbols and themes are recurring once seen in two or more entries.
func analyzePatterns(phases []string, elements []*types.JournalElements) *JournalPatterns {
	out := &JournalPatterns{
		TotalEntries:          len(phases),
		RecurringSymbols:      []PatternCount{},
		RecurringThemes:       []PatternCount{},
		MoonPhaseDistribution: map[string]int{},
		EmotionalDistribution: map[string]int{},
		MostActiveMoonPhase:   noActivePhase,
	}
	symbols := map[string]int{}
	themes := map[string]int{}
	for i, phase := range phases {
		if phase == "" {
			phase = "unknown"
		}
		out.MoonPhaseDistribution[phase]++

		el := elements[i]
		tone := types.NeutralTone
		if el != nil && el.EmotionalTone != "" {
			tone = el.EmotionalTone
		}
		out.EmotionalDistribution[tone]++
		if el == nil {
			continue
		}
		countOnce(symbols, el.Symbols)
		countOnce(themes, el.Themes)
	}
	out.RecurringSymbols = recurring(symbols)
	out.RecurringThemes = recurring(themes)
	out.MostActiveMoonPhase = mostActivePhase(out.MoonPhaseDistribution)
	return out
}

func countOnce(into map[string]int, values []string) {
	seen := map[string]bool{}
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		into[v]++
	}
}

func recurring(counts map[string]int) []PatternCount {
	out := []PatternCount{}
	for v, n := range counts {
		if n >= 2 {
			out = append(out, PatternCount{Value: v, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > maxRecurring {
		out = out[:maxRecurring]
	}
	return out
}

// mostActivePhase breaks ties by cycle order, new moon first.
func mostActivePhase(dist map[string]int) string {
	best, bestN := noActivePhase, 0
	for _, b := range phaseBands {
		if n := dist[b.key]; n > bestN {
			best, bestN = b.key, n
		}
	}
	return best
}
