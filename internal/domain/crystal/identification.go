package crystal

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CrystalIdentification is the audit row written for every successful identify call.
// ID equals the normalized record's crystal_core.id.
type CrystalIdentification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *string   `gorm:"column:user_id;index" json:"user_id,omitempty"`
	StoneType  string    `gorm:"column:stone_type;not null;index" json:"stone_type"`
	Confidence float64   `gorm:"column:confidence;not null" json:"confidence"`
	ImageKey   *string   `gorm:"column:image_key" json:"image_key,omitempty"`
	ImageHash  string    `gorm:"column:image_hash;index" json:"image_hash"`
	Provider   string    `gorm:"column:provider" json:"provider"`
	Model      string    `gorm:"column:model" json:"model"`
	Cached     bool      `gorm:"column:cached" json:"cached"`

	Unified     datatypes.JSON `gorm:"column:unified;not null" json:"unified"`
	RawResponse datatypes.JSON `gorm:"column:raw_response" json:"raw_response,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (CrystalIdentification) TableName() string { return "crystal_identification" }

func (c *CrystalIdentification) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
