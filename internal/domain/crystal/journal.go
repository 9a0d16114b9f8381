package crystal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	JournalEntryTypeJournal = "journal"
	JournalEntryTypeDream   = "dream"
)

type JournalEntry struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string         `gorm:"column:user_id;not null;index" json:"user_id"`
	EntryType  string         `gorm:"column:entry_type;not null;default:journal;index" json:"entry_type"`
	Title      string         `gorm:"column:title" json:"title"`
	Content    string         `gorm:"column:content" json:"content"`
	Mood       string         `gorm:"column:mood" json:"mood"`
	MoonPhase  string         `gorm:"column:moon_phase;index" json:"moon_phase"`
	CrystalIDs datatypes.JSON `gorm:"column:crystal_ids" json:"crystal_ids"`

	// EntryDate is when the experience happened (the dream date); the moon phase is taken from it.
	EntryDate time.Time `gorm:"column:entry_date;index" json:"entry_date"`
	// Elements holds JournalElements extracted by the text model; null when extraction did not run.
	Elements datatypes.JSON `gorm:"column:elements" json:"elements"`

	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (JournalEntry) TableName() string { return "journal_entry" }

func (j *JournalEntry) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.EntryType == "" {
		j.EntryType = JournalEntryTypeJournal
	}
	return nil
}

// JournalElements are the themes and symbols pulled out of an entry's text.
type JournalElements struct {
	Themes        []string `json:"themes"`
	Symbols       []string `json:"symbols"`
	EmotionalTone string   `json:"emotional_tone"`
	Colors        []string `json:"colors"`
	Locations     []string `json:"locations"`
}

const NeutralTone = "neutral"

func EmptyJournalElements() *JournalElements {
	return &JournalElements{
		Themes:        []string{},
		Symbols:       []string{},
		EmotionalTone: NeutralTone,
		Colors:        []string{},
		Locations:     []string{},
	}
}
