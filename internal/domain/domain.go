package domain

import (
	"time"

	"github.com/yungbote/crystal-grimoire-backend/internal/domain/crystal"
)

type UnifiedCrystalData = crystal.UnifiedCrystalData
type CrystalCore = crystal.CrystalCore
type VisualAnalysis = crystal.VisualAnalysis
type Identification = crystal.Identification
type EnergyMapping = crystal.EnergyMapping
type AstrologicalData = crystal.AstrologicalData
type NumerologyData = crystal.NumerologyData
type AutomaticEnrichment = crystal.AutomaticEnrichment
type UserIntegration = crystal.UserIntegration
type UsageFrequency = crystal.UsageFrequency

type CrystalIdentification = crystal.CrystalIdentification
type CollectionEntry = crystal.CollectionEntry
type JournalEntry = crystal.JournalEntry
type JournalElements = crystal.JournalElements
type UserProfile = crystal.UserProfile
type GuidanceSession = crystal.GuidanceSession

func EmptyUserIntegration() *UserIntegration { return crystal.EmptyUserIntegration() }

func EmptyUserIntegrationFor(userID string, addedAt time.Time) *UserIntegration {
	return crystal.EmptyUserIntegrationFor(userID, addedAt)
}

func EmptyJournalElements() *JournalElements { return crystal.EmptyJournalElements() }

const (
	JournalEntryTypeJournal = crystal.JournalEntryTypeJournal
	JournalEntryTypeDream   = crystal.JournalEntryTypeDream
	NeutralTone             = crystal.NeutralTone
	UsageDaily              = crystal.UsageDaily
	UsageWeekly             = crystal.UsageWeekly
	UsageMonthly            = crystal.UsageMonthly
	UsageOccasional         = crystal.UsageOccasional
)
