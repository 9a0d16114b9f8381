package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/crystal-grimoire-backend/internal/data/repos"
	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
	"github.com/yungbote/crystal-grimoire-backend/internal/normalization"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
	"github.com/yungbote/crystal-grimoire-backend/internal/platform/apierr"
)

const (
	journalExtractionTimeout = 20 * time.Second
	maxElementsPerList       = 20
	maxEntryDateSkew         = 24 * time.Hour
)

type CreateJournalInput struct {
	EntryType  string      `json:"entry_type"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	Mood       string      `json:"mood"`
	MoonPhase  string      `json:"moon_phase"`
	EntryDate  *time.Time  `json:"entry_date"`
	CrystalIDs []uuid.UUID `json:"crystal_ids"`
}

type JournalItem struct {
	ID         uuid.UUID              `json:"id"`
	EntryType  string                 `json:"entry_type"`
	Title      string                 `json:"title"`
	Content    string                 `json:"content"`
	Mood       string                 `json:"mood"`
	MoonPhase  string                 `json:"moon_phase"`
	CrystalIDs []uuid.UUID            `json:"crystal_ids"`
	Elements   *types.JournalElements `json:"extracted_elements"`
	EntryDate  time.Time              `json:"entry_date"`
	CreatedAt  time.Time              `json:"created_at"`
}

type JournalService interface {
	Create(ctx context.Context, in CreateJournalInput) (*JournalItem, error)
	List(ctx context.Context, limit, offset int) ([]*JournalItem, error)
	Get(ctx context.Context, id uuid.UUID) (*JournalItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Patterns(ctx context.Context, q PatternsQuery) (*JournalPatterns, error)
}

type journalService struct {
	log            *logger.Logger
	journalRepo    repos.JournalRepo
	collectionRepo repos.CollectionRepo
	text           TextModel
	now            func() time.Time
}

// NewJournalService builds the journal service. text may be nil; entries are then
// stored without extracted elements.
func NewJournalService(log *logger.Logger, journalRepo repos.JournalRepo, collectionRepo repos.CollectionRepo, text TextModel) JournalService {
	return &journalService{
		log:            log.With("service", "JournalService"),
		journalRepo:    journalRepo,
		collectionRepo: collectionRepo,
		text:           text,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (s *journalService) Create(ctx context.Context, in CreateJournalInput) (*JournalItem, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" && content == "" {
		return nil, apierr.BadRequest("empty_journal", "title or content is required")
	}
	entryType, err := parseEntryType(in.EntryType)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entryDate := now
	if in.EntryDate != nil && !in.EntryDate.IsZero() {
		entryDate = in.EntryDate.UTC()
		if entryDate.After(now.Add(maxEntryDateSkew)) {
			return nil, apierr.BadRequest("invalid_entry_date", "entry_date %s is in the future", entryDate.Format(time.RFC3339))
		}
	}
	phase := CurrentPhase(entryDate).Phase
	if strings.TrimSpace(in.MoonPhase) != "" {
		phase = NormalizePhaseKey(in.MoonPhase)
		if !knownPhase(phase) {
			return nil, apierr.BadRequest("invalid_moon_phase", "unknown moon phase %q", in.MoonPhase)
		}
	}

	dbc := dbctx.Context{Ctx: ctx}
	ids := uniqueIDs(in.CrystalIDs)
	if len(ids) > 0 {
		found, err := s.collectionRepo.GetByIDs(dbc, userID, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve crystal ids: %w", err)
		}
		if len(found) != len(ids) {
			return nil, apierr.BadRequest("invalid_crystal_ids", "crystal_ids must refer to crystals in your collection")
		}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("marshal crystal ids: %w", err)
	}

	entry := &types.JournalEntry{
		UserID:     userID,
		EntryType:  entryType,
		Title:      title,
		Content:    content,
		Mood:       strings.TrimSpace(in.Mood),
		MoonPhase:  phase,
		CrystalIDs: datatypes.JSON(idsJSON),
		EntryDate:  entryDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if elements := s.extractElements(ctx, content); elements != nil {
		b, err := json.Marshal(elements)
		if err != nil {
			return nil, fmt.Errorf("marshal journal elements: %w", err)
		}
		entry.Elements = datatypes.JSON(b)
	}
	if _, err := s.journalRepo.Create(dbc, []*types.JournalEntry{entry}); err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	s.log.Info("journal entry created", "user_id", userID, "entry_id", entry.ID.String(), "entry_type", entryType, "moon_phase", phase)
	return s.toJournalItem(entry), nil
}

// extractElements asks the text model for themes and symbols. It returns nil when no
// model is configured or there is no content; a failed call yields neutral empty elements
// so the entry is still saved.
func (s *journalService) extractElements(ctx context.Context, content string) *types.JournalElements {
	if s.text == nil || content == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, journalExtractionTimeout)
	defer cancel()

	out, err := s.text.GenerateText(ctx, journalExtractionSystemPrompt, buildJournalExtractionPrompt(content))
	if err != nil {
		s.log.Warn("journal element extraction failed", "error", err)
		return types.EmptyJournalElements()
	}
	obj, _, err := ExtractJSONObject(out)
	if err != nil {
		s.log.Warn("journal element extraction unparseable", "error", err)
		return types.EmptyJournalElements()
	}
	return journalElementsFrom(obj)
}

func journalElementsFrom(obj map[string]any) *types.JournalElements {
	el := &types.JournalElements{
		Themes:        elementList(obj["themes"]),
		Symbols:       elementList(obj["symbols"]),
		EmotionalTone: types.NeutralTone,
		Colors:        elementList(obj["colors"]),
		Locations:     elementList(obj["locations"]),
	}
	if tone := elementList(obj["emotional_tone"]); len(tone) > 0 {
		el.EmotionalTone = tone[0]
	}
	return el
}

// elementList reads a string or list of strings, lower-cased and de-duplicated. Never nil.
func elementList(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = []string{t}
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	out := []string{}
	seen := map[string]bool{}
	for _, r := range raw {
		k := normalization.ParseInputString(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
		if len(out) == maxElementsPerList {
			break
		}
	}
	return out
}

func parseEntryType(raw string) (string, error) {
	switch t := normalization.ParseInputString(raw); t {
	case "":
		return types.JournalEntryTypeJournal, nil
	case types.JournalEntryTypeJournal, types.JournalEntryTypeDream:
		return t, nil
	default:
		return "", apierr.BadRequest("invalid_entry_type", "entry_type must be journal or dream, got %q", raw)
	}
}

func (s *journalService) List(ctx context.Context, limit, offset int) ([]*JournalItem, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)
	entries, err := s.journalRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	out := make([]*JournalItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.toJournalItem(e))
	}
	return out, nil
}

func (s *journalService) Get(ctx context.Context, id uuid.UUID) (*JournalItem, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	e, err := s.journalRepo.GetByID(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	if e == nil {
		return nil, apierr.NotFound("journal_not_found", "journal entry")
	}
	return s.toJournalItem(e), nil
}

func (s *journalService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	ok, err := s.journalRepo.SoftDelete(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	if !ok {
		return apierr.NotFound("journal_not_found", "journal entry")
	}
	return nil
}

func knownPhase(key string) bool {
	for _, b := range phaseBands {
		if b.key == key {
			return true
		}
	}
	return false
}

func uniqueIDs(in []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(in))
	seen := make(map[uuid.UUID]bool, len(in))
	for _, id := range in {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// toJournalItem tolerates corrupt JSON columns: the field is emptied and the failure logged.
func (s *journalService) toJournalItem(e *types.JournalEntry) *JournalItem {
	item := &JournalItem{
		ID:         e.ID,
		EntryType:  e.EntryType,
		Title:      e.Title,
		Content:    e.Content,
		Mood:       e.Mood,
		MoonPhase:  e.MoonPhase,
		CrystalIDs: []uuid.UUID{},
		EntryDate:  e.EntryDate,
		CreatedAt:  e.CreatedAt,
	}
	if item.EntryType == "" {
		item.EntryType = types.JournalEntryTypeJournal
	}
	if item.EntryDate.IsZero() {
		item.EntryDate = e.CreatedAt
	}
	if len(e.CrystalIDs) > 0 {
		if err := json.Unmarshal(e.CrystalIDs, &item.CrystalIDs); err != nil {
			s.log.Warn("journal crystal_ids unreadable", "entry_id", e.ID.String(), "error", err)
			item.CrystalIDs = []uuid.UUID{}
		}
	}
	item.Elements = s.elementsOf(e)
	return item
}
