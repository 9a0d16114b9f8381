package normalization

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// keyPath is a dotted path into the raw model response, e.g. "identification_details.stone_name".
type keyPath string

// chain is an ordered list of candidate key paths for one logical field; the first
// present, non-empty value wins.
type chain []keyPath

var (
	stoneTypeChain = chain{
		"identification_details.stone_name",
		"identification_details.name",
		"identification.name",
		"automation_data.stone_type",
	}
	crystalFamilyChain = chain{
		"identification_details.crystal_family",
		"identification.crystal_family",
	}
	varietyChain = chain{
		"identification_details.variety_group",
		"identification_details.variety",
		"identification.variety",
	}
	identificationConfidenceChain = chain{
		"identification_details.stone_type_confidence",
		"identification_details.identification_confidence",
		"identification.confidence",
	}
	confidenceScoreChain = chain{
		"identification_details.stone_type_confidence",
		"overall_confidence_score",
		"identification.confidence",
	}

	primaryColorChain = chain{
		"visual_characteristics.primary_color",
		"automation_data.color",
	}
	secondaryColorsChain = chain{
		"visual_characteristics.secondary_colors",
		"physical_properties.color_range",
	}
	transparencyChain = chain{
		"visual_characteristics.transparency_level",
		"visual_characteristics.transparency",
		"physical_properties.transparency",
	}
	formationChain = chain{
		"visual_characteristics.crystal_system_formation",
		"visual_characteristics.formation",
		"physical_properties.crystal_system",
		"physical_properties.formation",
	}
	sizeEstimateChain = chain{
		"visual_characteristics.estimated_size_group",
		"visual_characteristics.size_estimate",
	}

	primaryChakraChain = chain{
		"metaphysical_aspects.primary_chakra_association",
		"metaphysical_aspects.primary_chakra",
		"automation_data.chakra",
		"metaphysical_properties.primary_chakras",
	}
	secondaryChakrasChain = chain{
		"metaphysical_aspects.secondary_chakra_associations",
		"metaphysical_aspects.secondary_chakras",
	}
	chakraNumberChain = chain{
		"metaphysical_aspects.chakra_number",
		"numerology_insights.chakra_numerology_link",
		"numerology_insights.chakra_number_for_numerology",
	}
	vibrationLevelChain = chain{
		"metaphysical_aspects.vibrational_frequency_level",
		"metaphysical_aspects.vibration_level",
	}

	primarySignsChain = chain{
		"metaphysical_aspects.zodiac_sign_affinity",
		"metaphysical_aspects.primary_zodiac_signs",
		"automation_data.zodiac",
	}
	compatibleSignsChain = chain{"metaphysical_aspects.compatible_signs"}
	planetaryRulerChain  = chain{
		"metaphysical_aspects.planetary_rulership",
		"metaphysical_aspects.planetary_rulers",
	}
	elementChain = chain{
		"metaphysical_aspects.elemental_correspondence",
		"metaphysical_aspects.elements",
	}

	crystalNumberChain = chain{
		"numerology_insights.primary_number_vibration",
		"numerology_insights.crystal_number_association",
		"automation_data.number",
	}
	colorVibrationChain = chain{
		"numerology_insights.color_numerology_link",
		"numerology_insights.color_vibration_number",
	}
	masterNumberChain = chain{
		"numerology_insights.associated_master_numbers",
		"numerology_insights.master_numerology_number_suggestion",
	}

	mineralClassChain = chain{
		"enrichment_details.mineral_class",
		"automation_data.mineral_class",
	}
	crystalBibleReferenceChain = chain{"enrichment_details.crystal_bible_reference"}
	healingPropertiesChain     = chain{
		"enrichment_details.common_healing_properties",
		"enrichment_details.healing_properties",
		"metaphysical_properties.healing_properties",
	}
	usageSuggestionsChain = chain{
		"enrichment_details.suggested_uses_practices",
		"enrichment_details.usage_suggestions",
	}
	careInstructionsChain = chain{
		"enrichment_details.care_and_cleansing_tips",
		"enrichment_details.care_instructions",
		"care_instructions.cleansing",
	}
	synergyCrystalsChain = chain{
		"enrichment_details.synergistic_crystals_pairing",
		"enrichment_details.synergy_crystals",
	}
)

func lookup(raw map[string]any, p keyPath) (any, bool) {
	var cur any = raw
	for _, part := range strings.Split(string(p), ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// firstString returns the first chain value that reads as a non-empty string.
// A list-valued key contributes its first usable element.
func (c chain) firstString(raw map[string]any) (string, bool) {
	for _, p := range c {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		if s, ok := asString(v); ok {
			return s, true
		}
	}
	return "", false
}

func (c chain) firstStringPtr(raw map[string]any) *string {
	if s, ok := c.firstString(raw); ok {
		return &s
	}
	return nil
}

// firstStrings returns the first chain value that reads as a non-empty string list.
// A bare string counts as a one-element list. The result is never nil.
func (c chain) firstStrings(raw map[string]any) []string {
	for _, p := range c {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		if out := asStrings(v); len(out) > 0 {
			return out
		}
	}
	return []string{}
}

// firstNumber returns the first chain value that reads as a non-zero number.
func (c chain) firstNumber(raw map[string]any) (float64, bool) {
	for _, p := range c {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		if f, ok := asNumber(v); ok && f != 0 {
			return f, true
		}
	}
	return 0, false
}

// firstIntIn returns the first chain value that rounds to an integer accepted by valid.
// Rejected values are skipped so the next key, or the caller's fallback, applies.
func (c chain) firstIntIn(raw map[string]any, valid func(int) bool) int {
	for _, p := range c {
		v, ok := lookup(raw, p)
		if !ok {
			continue
		}
		f, ok := asNumber(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if n := int(math.Round(f)); valid(n) {
			return n
		}
	}
	return 0
}

// firstDigit reads a numerology or chakra number; only 1-9 is accepted.
func (c chain) firstDigit(raw map[string]any) int {
	return c.firstIntIn(raw, isDigit)
}

func (c chain) firstMasterNumber(raw map[string]any) int {
	return c.firstIntIn(raw, func(n int) bool { return isDigit(n) || isMasterNumber(n) })
}

func isDigit(n int) bool { return n >= 1 && n <= 9 }

// firstConfidence reads a confidence and scales it into [0,1]. Values in (1,100] are
// treated as percentages.
func (c chain) firstConfidence(raw map[string]any) float64 {
	f, ok := c.firstNumber(raw)
	if !ok {
		return 0
	}
	if f > 1 && f <= 100 {
		f = f / 100
	}
	return clamp01(f)
}

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case float64, float32, int, int32, int64:
		return fmt.Sprint(t), true
	case []any:
		for _, e := range t {
			if s, ok := asString(e); ok {
				return s, true
			}
		}
		return "", false
	case []string:
		for _, e := range t {
			if s := strings.TrimSpace(e); s != "" {
				return s, true
			}
		}
		return "", false
	default:
		return "", false
	}
}

func asStrings(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := asString(e); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s := strings.TrimSpace(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s, ok := asString(v); ok {
			return []string{s}
		}
		return nil
	}
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%")), 64)
		return f, err == nil
	case []any:
		if len(t) == 0 {
			return 0, false
		}
		return asNumber(t[0])
	default:
		return 0, false
	}
}
