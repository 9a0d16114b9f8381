package crystal

import "time"

// UnifiedCrystalData is the normalized identification record. A fresh value is built per
// identification and never mutated in place; collection updates copy it.
type UnifiedCrystalData struct {
	CrystalCore         CrystalCore          `json:"crystal_core"`
	AutomaticEnrichment *AutomaticEnrichment `json:"automatic_enrichment"`
	UserIntegration     *UserIntegration     `json:"user_integration"`
}

type CrystalCore struct {
	ID               string           `json:"id"`
	Timestamp        time.Time        `json:"timestamp"`
	ConfidenceScore  float64          `json:"confidence_score"`
	VisualAnalysis   VisualAnalysis   `json:"visual_analysis"`
	Identification   Identification   `json:"identification"`
	EnergyMapping    EnergyMapping    `json:"energy_mapping"`
	AstrologicalData AstrologicalData `json:"astrological_data"`
	Numerology       NumerologyData   `json:"numerology"`
}

type VisualAnalysis struct {
	PrimaryColor    string   `json:"primary_color"`
	SecondaryColors []string `json:"secondary_colors"`
	Transparency    string   `json:"transparency"`
	Formation       string   `json:"formation"`
	SizeEstimate    *string  `json:"size_estimate"`
}

type Identification struct {
	StoneType     string  `json:"stone_type"`
	CrystalFamily string  `json:"crystal_family"`
	Variety       *string `json:"variety"`
	Confidence    float64 `json:"confidence"`
}

type EnergyMapping struct {
	PrimaryChakra    string   `json:"primary_chakra"`
	SecondaryChakras []string `json:"secondary_chakras"`
	ChakraNumber     int      `json:"chakra_number"`
	VibrationLevel   *string  `json:"vibration_level"`
}

type AstrologicalData struct {
	PrimarySigns    []string `json:"primary_signs"`
	CompatibleSigns []string `json:"compatible_signs"`
	PlanetaryRuler  *string  `json:"planetary_ruler"`
	Element         *string  `json:"element"`
}

type NumerologyData struct {
	CrystalNumber  int `json:"crystal_number"`
	ColorVibration int `json:"color_vibration"`
	ChakraNumber   int `json:"chakra_number"`
	MasterNumber   int `json:"master_number"`
}

type AutomaticEnrichment struct {
	CrystalBibleReference *string  `json:"crystal_bible_reference"`
	HealingProperties     []string `json:"healing_properties"`
	UsageSuggestions      []string `json:"usage_suggestions"`
	CareInstructions      []string `json:"care_instructions"`
	SynergyCrystals       []string `json:"synergy_crystals"`
	MineralClass          *string  `json:"mineral_class"`
}

type UsageFrequency string

const (
	UsageDaily      UsageFrequency = "daily"
	UsageWeekly     UsageFrequency = "weekly"
	UsageMonthly    UsageFrequency = "monthly"
	UsageOccasional UsageFrequency = "occasional"
)

func (f UsageFrequency) Valid() bool {
	switch f {
	case UsageDaily, UsageWeekly, UsageMonthly, UsageOccasional:
		return true
	default:
		return false
	}
}

type UserIntegration struct {
	UserID            *string         `json:"user_id"`
	AddedToCollection *time.Time      `json:"added_to_collection"`
	PersonalRating    *int            `json:"personal_rating"`
	UsageFrequency    *UsageFrequency `json:"usage_frequency"`
	UserExperiences   []string        `json:"user_experiences"`
	IntentionSettings []string        `json:"intention_settings"`
}

// EmptyUserIntegration is the placeholder attached before a record joins a collection.
func EmptyUserIntegration() *UserIntegration {
	return &UserIntegration{
		UserExperiences:   []string{},
		IntentionSettings: []string{},
	}
}

// EmptyUserIntegrationFor marks a record as collected by userID at addedAt.
func EmptyUserIntegrationFor(userID string, addedAt time.Time) *UserIntegration {
	ui := EmptyUserIntegration()
	ui.UserID = &userID
	ui.AddedToCollection = &addedAt
	return ui
}

// Clone returns a deep copy so callers can derive a new record without touching the original.
func (u *UnifiedCrystalData) Clone() *UnifiedCrystalData {
	if u == nil {
		return nil
	}
	out := *u
	core := &out.CrystalCore
	core.VisualAnalysis.SecondaryColors = cloneStrings(u.CrystalCore.VisualAnalysis.SecondaryColors)
	core.VisualAnalysis.SizeEstimate = cloneString(u.CrystalCore.VisualAnalysis.SizeEstimate)
	core.Identification.Variety = cloneString(u.CrystalCore.Identification.Variety)
	core.EnergyMapping.SecondaryChakras = cloneStrings(u.CrystalCore.EnergyMapping.SecondaryChakras)
	core.EnergyMapping.VibrationLevel = cloneString(u.CrystalCore.EnergyMapping.VibrationLevel)
	core.AstrologicalData.PrimarySigns = cloneStrings(u.CrystalCore.AstrologicalData.PrimarySigns)
	core.AstrologicalData.CompatibleSigns = cloneStrings(u.CrystalCore.AstrologicalData.CompatibleSigns)
	core.AstrologicalData.PlanetaryRuler = cloneString(u.CrystalCore.AstrologicalData.PlanetaryRuler)
	core.AstrologicalData.Element = cloneString(u.CrystalCore.AstrologicalData.Element)

	if u.AutomaticEnrichment != nil {
		e := *u.AutomaticEnrichment
		e.CrystalBibleReference = cloneString(e.CrystalBibleReference)
		e.HealingProperties = cloneStrings(e.HealingProperties)
		e.UsageSuggestions = cloneStrings(e.UsageSuggestions)
		e.CareInstructions = cloneStrings(e.CareInstructions)
		e.SynergyCrystals = cloneStrings(e.SynergyCrystals)
		e.MineralClass = cloneString(e.MineralClass)
		out.AutomaticEnrichment = &e
	}
	if u.UserIntegration != nil {
		ui := *u.UserIntegration
		ui.UserID = cloneString(ui.UserID)
		if ui.AddedToCollection != nil {
			t := *ui.AddedToCollection
			ui.AddedToCollection = &t
		}
		if ui.PersonalRating != nil {
			r := *ui.PersonalRating
			ui.PersonalRating = &r
		}
		if ui.UsageFrequency != nil {
			f := *ui.UsageFrequency
			ui.UsageFrequency = &f
		}
		ui.UserExperiences = cloneStrings(ui.UserExperiences)
		ui.IntentionSettings = cloneStrings(ui.IntentionSettings)
		out.UserIntegration = &ui
	}
	return &out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
