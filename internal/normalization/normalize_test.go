package normalization

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yungbote/crystal-grimoire-backend/internal/domain/crystal"
)

var fixedTime = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedNormalizer() *Normalizer {
	return &Normalizer{
		NewID: func() string { return "fixed-id" },
		Now:   func() time.Time { return fixedTime },
	}
}

func decode(t *testing.T, s string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestNormalizeRoseQuartzEndToEnd(t *testing.T) {
	raw := decode(t, `{"identification_details":{"stone_name":"Rose Quartz"},"visual_characteristics":{"primary_color":"Pink"}}`)

	got := fixedNormalizer().Normalize(raw)

	want := &crystal.UnifiedCrystalData{
		CrystalCore: crystal.CrystalCore{
			ID:        "fixed-id",
			Timestamp: fixedTime,
			VisualAnalysis: crystal.VisualAnalysis{
				PrimaryColor:    "Pink",
				SecondaryColors: []string{},
				Transparency:    "Unknown",
				Formation:       "Unknown",
			},
			Identification: crystal.Identification{
				StoneType:     "Rose Quartz",
				CrystalFamily: "Unknown",
			},
			EnergyMapping: crystal.EnergyMapping{
				PrimaryChakra:    "heart",
				SecondaryChakras: []string{},
				ChakraNumber:     4,
			},
			AstrologicalData: crystal.AstrologicalData{
				PrimarySigns:    []string{"taurus", "libra"},
				CompatibleSigns: []string{},
			},
			Numerology: crystal.NumerologyData{
				CrystalNumber: 7,
				ChakraNumber:  4,
				MasterNumber:  2,
			},
		},
		AutomaticEnrichment: &crystal.AutomaticEnrichment{
			HealingProperties: []string{},
			UsageSuggestions:  []string{},
			CareInstructions:  []string{},
			SynergyCrystals:   []string{},
		},
		UserIntegration: crystal.EmptyUserIntegration(),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeColorFallback(t *testing.T) {
	got := fixedNormalizer().Normalize(decode(t, `{"visual_characteristics":{"primary_color":"Purple"}}`))

	em := got.CrystalCore.EnergyMapping
	if em.PrimaryChakra != "third_eye" || em.ChakraNumber != 6 {
		t.Fatalf("energy mapping: got=%+v want third_eye/6", em)
	}
	if got.CrystalCore.Numerology.ChakraNumber != 6 {
		t.Fatalf("numerology.chakra_number: got=%d want=6", got.CrystalCore.Numerology.ChakraNumber)
	}
	// "Unknown" reduces to 4; 4+0+6 = 10 reduces to 1.
	wantNum := crystal.NumerologyData{CrystalNumber: 4, ChakraNumber: 6, MasterNumber: 1}
	if got.CrystalCore.Numerology != wantNum {
		t.Fatalf("numerology without stone: got=%+v want=%+v", got.CrystalCore.Numerology, wantNum)
	}
}

func TestNormalizeEmptyObjectIsFullyPopulated(t *testing.T) {
	for name, raw := range map[string]map[string]any{"empty": {}, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			got := Normalize(raw)
			core := got.CrystalCore
			if core.ID == "" || core.Timestamp.IsZero() {
				t.Fatalf("identity not assigned: id=%q ts=%v", core.ID, core.Timestamp)
			}
			if core.Identification.StoneType != "Unknown" || core.Identification.CrystalFamily != "Unknown" {
				t.Fatalf("identification defaults: got=%+v", core.Identification)
			}
			if core.VisualAnalysis.PrimaryColor != "Unknown" || core.EnergyMapping.PrimaryChakra != "Unknown" {
				t.Fatalf("defaults: visual=%+v energy=%+v", core.VisualAnalysis, core.EnergyMapping)
			}
			if core.ConfidenceScore != 0 || core.Numerology != (crystal.NumerologyData{CrystalNumber: 4}) {
				t.Fatalf("numeric defaults: confidence=%v numerology=%+v", core.ConfidenceScore, core.Numerology)
			}
			if got.AutomaticEnrichment == nil || got.UserIntegration == nil {
				t.Fatalf("nested records missing")
			}

			b, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			body := string(b)
			for _, key := range []string{
				"secondary_colors", "secondary_chakras", "primary_signs", "compatible_signs",
				"healing_properties", "usage_suggestions", "care_instructions", "synergy_crystals",
				"user_experiences", "intention_settings",
			} {
				if !strings.Contains(body, `"`+key+`":[]`) {
					t.Fatalf("%s: want [] in %s", key, body)
				}
			}
			for _, key := range []string{"size_estimate", "variety", "vibration_level", "planetary_ruler", "element", "mineral_class", "user_id", "personal_rating"} {
				if !strings.Contains(body, `"`+key+`":null`) {
					t.Fatalf("%s: want null in %s", key, body)
				}
			}
		})
	}
}

func TestNormalizeAssignsUniqueIDs(t *testing.T) {
	const n = 200
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- Normalize(map[string]any{}).CrystalCore.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestNormalizeModelValuesTakePrecedence(t *testing.T) {
	raw := decode(t, `{
		"identification_details": {"stone_name": "Garnet", "crystal_family": "fluorite", "stone_type_confidence": 0.9},
		"visual_characteristics": {"primary_color": "Red"},
		"metaphysical_aspects": {"primary_chakra": "crown", "chakra_number": 7, "zodiac_sign_affinity": ["leo"]},
		"numerology_insights": {"primary_number_vibration": 4, "color_numerology_link": 2, "associated_master_numbers": [22, 11]},
		"enrichment_details": {"mineral_class": "Silicate"}
	}`)
	got := fixedNormalizer().Normalize(raw)

	if got.CrystalCore.EnergyMapping.PrimaryChakra != "crown" || got.CrystalCore.EnergyMapping.ChakraNumber != 7 {
		t.Fatalf("energy mapping: got=%+v", got.CrystalCore.EnergyMapping)
	}
	if diff := cmp.Diff([]string{"leo"}, got.CrystalCore.AstrologicalData.PrimarySigns); diff != "" {
		t.Fatalf("primary signs (-want +got):\n%s", diff)
	}
	wantNum := crystal.NumerologyData{CrystalNumber: 4, ColorVibration: 2, ChakraNumber: 7, MasterNumber: 22}
	if got.CrystalCore.Numerology != wantNum {
		t.Fatalf("numerology: got=%+v want=%+v", got.CrystalCore.Numerology, wantNum)
	}
	if mc := got.AutomaticEnrichment.MineralClass; mc == nil || *mc != "Silicate" {
		t.Fatalf("mineral_class: got=%v want Silicate", mc)
	}
	if got.CrystalCore.ConfidenceScore != 0.9 || got.CrystalCore.Identification.Confidence != 0.9 {
		t.Fatalf("confidence: score=%v ident=%v", got.CrystalCore.ConfidenceScore, got.CrystalCore.Identification.Confidence)
	}
}

func TestNormalizeMergesColorTablePerField(t *testing.T) {
	raw := decode(t, `{
		"identification_details": {"stone_name": "Jasper"},
		"visual_characteristics": {"primary_color": "red"},
		"metaphysical_aspects": {"primary_chakra_association": "sacral"}
	}`)
	got := fixedNormalizer().Normalize(raw)

	if got.CrystalCore.EnergyMapping.PrimaryChakra != "sacral" {
		t.Fatalf("primary_chakra: got=%q want=sacral", got.CrystalCore.EnergyMapping.PrimaryChakra)
	}
	if got.CrystalCore.EnergyMapping.ChakraNumber != 1 {
		t.Fatalf("chakra_number: got=%d want=1", got.CrystalCore.EnergyMapping.ChakraNumber)
	}
	if diff := cmp.Diff([]string{"aries", "scorpio"}, got.CrystalCore.AstrologicalData.PrimarySigns); diff != "" {
		t.Fatalf("primary signs (-want +got):\n%s", diff)
	}
}

func TestNormalizeMineralClassFromFamily(t *testing.T) {
	cases := []struct {
		family string
		want   *string
	}{
		{"fluorite", strPtr("Halide")},
		{"Quartz", strPtr("Silicate")},
		{"wonderstone", nil},
	}
	for _, tc := range cases {
		t.Run(tc.family, func(t *testing.T) {
			got := fixedNormalizer().Normalize(map[string]any{
				"identification_details": map[string]any{"crystal_family": tc.family},
			})
			if diff := cmp.Diff(tc.want, got.AutomaticEnrichment.MineralClass); diff != "" {
				t.Fatalf("mineral_class (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalizeAlternateKeySpellings(t *testing.T) {
	raw := decode(t, `{
		"automation_data": {"stone_type": "Citrine", "color": "Yellow", "number": "3", "zodiac": "gemini", "mineral_class": "Silicate"},
		"overall_confidence_score": 85,
		"physical_properties": {"color_range": ["golden", "amber"], "crystal_system": "Trigonal"},
		"metaphysical_aspects": {"planetary_rulers": ["Sun", "Jupiter"], "elements": ["Fire"]},
		"metaphysical_properties": {"healing_properties": ["abundance", ""]},
		"care_instructions": {"cleansing": ["sunlight"]}
	}`)
	got := fixedNormalizer().Normalize(raw)
	core := got.CrystalCore

	if core.Identification.StoneType != "Citrine" {
		t.Fatalf("stone_type: got=%q", core.Identification.StoneType)
	}
	if core.ConfidenceScore != 0.85 {
		t.Fatalf("confidence_score: got=%v want=0.85", core.ConfidenceScore)
	}
	if core.Identification.Confidence != 0 {
		t.Fatalf("identification.confidence: got=%v want=0", core.Identification.Confidence)
	}
	if core.VisualAnalysis.Formation != "Trigonal" {
		t.Fatalf("formation: got=%q", core.VisualAnalysis.Formation)
	}
	if diff := cmp.Diff([]string{"golden", "amber"}, core.VisualAnalysis.SecondaryColors); diff != "" {
		t.Fatalf("secondary_colors (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"gemini"}, core.AstrologicalData.PrimarySigns); diff != "" {
		t.Fatalf("primary_signs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(strPtr("Sun"), core.AstrologicalData.PlanetaryRuler); diff != "" {
		t.Fatalf("planetary_ruler (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(strPtr("Fire"), core.AstrologicalData.Element); diff != "" {
		t.Fatalf("element (-want +got):\n%s", diff)
	}
	if core.EnergyMapping.PrimaryChakra != "solar_plexus" || core.EnergyMapping.ChakraNumber != 3 {
		t.Fatalf("energy mapping: got=%+v", core.EnergyMapping)
	}
	wantNum := crystal.NumerologyData{CrystalNumber: 3, ChakraNumber: 3, MasterNumber: 6}
	if core.Numerology != wantNum {
		t.Fatalf("numerology: got=%+v want=%+v", core.Numerology, wantNum)
	}
	if diff := cmp.Diff([]string{"abundance"}, got.AutomaticEnrichment.HealingProperties); diff != "" {
		t.Fatalf("healing_properties (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"sunlight"}, got.AutomaticEnrichment.CareInstructions); diff != "" {
		t.Fatalf("care_instructions (-want +got):\n%s", diff)
	}
}

func TestNormalizeClampsConfidence(t *testing.T) {
	cases := map[string]struct {
		in   any
		want float64
	}{
		"fraction":     {0.42, 0.42},
		"percent":      {50.0, 0.5},
		"out of range": {250.0, 1},
		"negative":     {-3.0, 0},
		"string":       {"75%", 0.75},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := fixedNormalizer().Normalize(map[string]any{"overall_confidence_score": tc.in})
			if got.CrystalCore.ConfidenceScore != tc.want {
				t.Fatalf("confidence_score: got=%v want=%v", got.CrystalCore.ConfidenceScore, tc.want)
			}
		})
	}
}

func TestNormalizeDoesNotShareTableSlices(t *testing.T) {
	n := fixedNormalizer()
	first := n.Normalize(map[string]any{"visual_characteristics": map[string]any{"primary_color": "blue"}})
	first.CrystalCore.AstrologicalData.PrimarySigns[0] = "mutated"

	second := n.Normalize(map[string]any{"visual_characteristics": map[string]any{"primary_color": "blue"}})
	if diff := cmp.Diff([]string{"aquarius", "gemini"}, second.CrystalCore.AstrologicalData.PrimarySigns); diff != "" {
		t.Fatalf("primary_signs (-want +got):\n%s", diff)
	}
}

func TestNormalizeRejectsOutOfRangeNumerology(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want crystal.NumerologyData
	}{
		{
			name: "multi digit and negative fall back",
			raw:  `{"numerology_insights":{"primary_number_vibration":44,"chakra_numerology_link":-3}}`,
			want: crystal.NumerologyData{CrystalNumber: 4},
		},
		{
			name: "ten is not a digit",
			raw:  `{"identification_details":{"stone_name":"Rose Quartz"},"visual_characteristics":{"primary_color":"Pink"},"metaphysical_aspects":{"chakra_number":10},"numerology_insights":{"primary_number_vibration":10,"color_numerology_link":10}}`,
			want: crystal.NumerologyData{CrystalNumber: 7, ChakraNumber: 4, MasterNumber: 2},
		},
		{
			name: "negative chakra uses color table",
			raw:  `{"visual_characteristics":{"primary_color":"Purple"},"metaphysical_aspects":{"chakra_number":-3}}`,
			want: crystal.NumerologyData{CrystalNumber: 4, ChakraNumber: 6, MasterNumber: 1},
		},
		{
			name: "invalid master number is recomputed",
			raw:  `{"numerology_insights":{"primary_number_vibration":5,"color_numerology_link":6,"associated_master_numbers":[44]}}`,
			want: crystal.NumerologyData{CrystalNumber: 5, ColorVibration: 6, MasterNumber: 2},
		},
		{
			name: "later master number key still read",
			raw:  `{"numerology_insights":{"associated_master_numbers":[-11],"master_numerology_number_suggestion":33}}`,
			want: crystal.NumerologyData{CrystalNumber: 4, MasterNumber: 33},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := fixedNormalizer().Normalize(decode(t, tc.raw))
			if diff := cmp.Diff(tc.want, got.CrystalCore.Numerology); diff != "" {
				t.Fatalf("numerology (-want +got):\n%s", diff)
			}
			if got.CrystalCore.EnergyMapping.ChakraNumber != got.CrystalCore.Numerology.ChakraNumber {
				t.Fatalf("chakra_number diverged: energy=%d numerology=%d",
					got.CrystalCore.EnergyMapping.ChakraNumber, got.CrystalCore.Numerology.ChakraNumber)
			}
		})
	}
}
