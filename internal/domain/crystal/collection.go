package crystal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CollectionEntry is one crystal in a user's personal collection.
type CollectionEntry struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string     `gorm:"column:user_id;not null;index" json:"user_id"`
	IdentificationID *uuid.UUID `gorm:"type:uuid;column:identification_id;index" json:"identification_id,omitempty"`

	Name          string  `gorm:"column:name;not null" json:"name"`
	PrimaryChakra string  `gorm:"column:primary_chakra;index" json:"primary_chakra"`
	MineralClass  *string `gorm:"column:mineral_class" json:"mineral_class"`
	Notes         string  `gorm:"column:notes" json:"notes"`

	PersonalRating    *int            `gorm:"column:personal_rating" json:"personal_rating"`
	UsageFrequency    *UsageFrequency `gorm:"column:usage_frequency" json:"usage_frequency"`
	UserExperiences   datatypes.JSON  `gorm:"column:user_experiences" json:"user_experiences"`
	IntentionSettings datatypes.JSON  `gorm:"column:intention_settings" json:"intention_settings"`

	// Unified holds the full UnifiedCrystalData with user_integration filled in.
	Unified datatypes.JSON `gorm:"column:unified;not null" json:"unified"`

	AddedAt   time.Time      `gorm:"column:added_at;not null" json:"added_at"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CollectionEntry) TableName() string { return "collection_entry" }

func (c *CollectionEntry) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
