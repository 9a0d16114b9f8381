package normalization

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/crystal-grimoire-backend/internal/domain/crystal"
)

const unknown = "Unknown"

// Normalizer turns a loosely shaped model response into a UnifiedCrystalData record.
// It holds no configuration; NewID and Now exist so tests can pin identity.
type Normalizer struct {
	NewID func() string
	Now   func() time.Time
}

func New() *Normalizer {
	return &Normalizer{
		NewID: func() string { return uuid.New().String() },
		Now:   func() time.Time { return time.Now().UTC() },
	}
}

var defaultNormalizer = New()

// Normalize uses the package default normalizer.
func Normalize(raw map[string]any) *crystal.UnifiedCrystalData {
	return defaultNormalizer.Normalize(raw)
}

// Normalize is total: nil and {} yield a fully defaulted record.
func (n *Normalizer) Normalize(raw map[string]any) *crystal.UnifiedCrystalData {
	if raw == nil {
		raw = map[string]any{}
	}

	ident := crystal.Identification{
		StoneType:     stringOr(stoneTypeChain, raw, unknown),
		CrystalFamily: stringOr(crystalFamilyChain, raw, unknown),
		Variety:       varietyChain.firstStringPtr(raw),
		Confidence:    identificationConfidenceChain.firstConfidence(raw),
	}

	visual := crystal.VisualAnalysis{
		PrimaryColor:    stringOr(primaryColorChain, raw, unknown),
		SecondaryColors: secondaryColorsChain.firstStrings(raw),
		Transparency:    stringOr(transparencyChain, raw, unknown),
		Formation:       stringOr(formationChain, raw, unknown),
		SizeEstimate:    sizeEstimateChain.firstStringPtr(raw),
	}

	energy := crystal.EnergyMapping{
		PrimaryChakra:    stringOr(primaryChakraChain, raw, unknown),
		SecondaryChakras: secondaryChakrasChain.firstStrings(raw),
		ChakraNumber:     chakraNumberChain.firstDigit(raw),
		VibrationLevel:   vibrationLevelChain.firstStringPtr(raw),
	}
	astro := crystal.AstrologicalData{
		PrimarySigns:    primarySignsChain.firstStrings(raw),
		CompatibleSigns: compatibleSignsChain.firstStrings(raw),
		PlanetaryRuler:  planetaryRulerChain.firstStringPtr(raw),
		Element:         elementChain.firstStringPtr(raw),
	}
	fillFromColor(visual.PrimaryColor, &energy, &astro)

	numerology := crystal.NumerologyData{
		CrystalNumber:  crystalNumberChain.firstDigit(raw),
		ColorVibration: colorVibrationChain.firstDigit(raw),
		ChakraNumber:   energy.ChakraNumber,
	}
	if numerology.CrystalNumber == 0 {
		numerology.CrystalNumber = CalculateNameNumerology(ident.StoneType)
	}
	numerology.MasterNumber = masterNumberChain.firstMasterNumber(raw)
	if numerology.MasterNumber == 0 {
		numerology.MasterNumber = MasterNumber(numerology.CrystalNumber, numerology.ColorVibration, numerology.ChakraNumber)
	}

	enrichment := &crystal.AutomaticEnrichment{
		CrystalBibleReference: crystalBibleReferenceChain.firstStringPtr(raw),
		HealingProperties:     healingPropertiesChain.firstStrings(raw),
		UsageSuggestions:      usageSuggestionsChain.firstStrings(raw),
		CareInstructions:      careInstructionsChain.firstStrings(raw),
		SynergyCrystals:       synergyCrystalsChain.firstStrings(raw),
		MineralClass:          mineralClassChain.firstStringPtr(raw),
	}
	if enrichment.MineralClass == nil && ident.CrystalFamily != unknown {
		if class, ok := MineralClassForFamily(ident.CrystalFamily); ok {
			enrichment.MineralClass = &class
		}
	}

	return &crystal.UnifiedCrystalData{
		CrystalCore: crystal.CrystalCore{
			ID:               n.NewID(),
			Timestamp:        n.Now(),
			ConfidenceScore:  confidenceScoreChain.firstConfidence(raw),
			VisualAnalysis:   visual,
			Identification:   ident,
			EnergyMapping:    energy,
			AstrologicalData: astro,
			Numerology:       numerology,
		},
		AutomaticEnrichment: enrichment,
		UserIntegration:     crystal.EmptyUserIntegration(),
	}
}

// fillFromColor fills chakra name, chakra number and signs from the color table,
// each only when the model left it empty.
func fillFromColor(color string, energy *crystal.EnergyMapping, astro *crystal.AstrologicalData) {
	c, ok := LookupColor(color)
	if !ok {
		return
	}
	if energy.PrimaryChakra == "" || energy.PrimaryChakra == unknown {
		energy.PrimaryChakra = c.PrimaryChakra
	}
	if energy.ChakraNumber == 0 {
		energy.ChakraNumber = c.Number
	}
	if len(astro.PrimarySigns) == 0 && len(c.Signs) > 0 {
		astro.PrimarySigns = c.Signs
	}
}

func stringOr(c chain, raw map[string]any, def string) string {
	if s, ok := c.firstString(raw); ok {
		return s
	}
	return def
}
