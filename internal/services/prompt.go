package services

import (
	"encoding/json"
	"fmt"
	"strings"

	types "github.com/yungbote/crystal-grimoire-backend/internal/domain"
)

const identificationSystemPrompt = `You are a Crystal Identification Expert and Metaphysical Guide.
Your knowledge draws on mineralogy references and the crystal healing literature.
Be scientifically accurate about classification, crystal system and formation, and complete about
chakra, astrological and numerological correspondences.`

const identificationPrompt = `Analyze the provided image of a crystal and return a detailed identification and metaphysical profile.
Your response MUST be a single raw JSON object without markdown formatting.
The JSON object must include these top-level keys: "identification_details", "visual_characteristics",
"metaphysical_aspects", "numerology_insights", "enrichment_details".

Required structure (fill with your actual analysis):
{
  "identification_details": {
    "stone_name": "Amethyst",
    "crystal_family": "Quartz",
    "variety_group": "Macrocrystalline Quartz",
    "stone_type_confidence": 0.95
  },
  "visual_characteristics": {
    "primary_color": "Purple",
    "secondary_colors": ["Lilac"],
    "transparency_level": "Translucent",
    "crystal_system_formation": "Trigonal",
    "estimated_size_group": "Medium"
  },
  "metaphysical_aspects": {
    "primary_chakra_association": "crown",
    "secondary_chakra_associations": ["third_eye"],
    "chakra_number": 7,
    "elemental_correspondence": "Air",
    "planetary_rulership": ["Jupiter"],
    "zodiac_sign_affinity": ["Pisces", "Aquarius"],
    "compatible_signs": ["Virgo"],
    "vibrational_frequency_level": "High"
  },
  "numerology_insights": {
    "primary_number_vibration": 3,
    "associated_master_numbers": [],
    "color_numerology_link": 7,
    "chakra_numerology_link": 7
  },
  "enrichment_details": {
    "mineral_class": "Silicate",
    "crystal_bible_reference": "",
    "common_healing_properties": ["Spiritual awareness"],
    "suggested_uses_practices": ["Meditation"],
    "care_and_cleansing_tips": ["Recharge in moonlight"],
    "synergistic_crystals_pairing": ["Selenite"]
  }
}
stone_type_confidence is a number between 0.0 and 1.0. Ensure all string values are properly escaped.`

// buildIdentificationPrompt appends optional caller context to the fixed prompt.
func buildIdentificationPrompt(userContext map[string]any) string {
	if len(userContext) == 0 {
		return identificationPrompt
	}
	b, err := json.Marshal(userContext)
	if err != nil {
		return identificationPrompt
	}
	return identificationPrompt + "\nUser context (optional, use if relevant): " + string(b)
}

const guidanceSystemPrompt = `You are a wise spiritual advisor and crystal healing expert.
Be warm, practical and specific. Suggest crystals from the user's own collection when they fit.`

func buildGuidancePrompt(question, guidanceType string, phase MoonPhase, crystals []string, profile *types.UserProfile) string {
	var sb strings.Builder
	sb.WriteString("Provide personalized guidance for this user.\n\n")
	if profile.HasBirthChart() {
		fmt.Fprintf(&sb, "BIRTH CHART: %s Sun, %s Moon, %s Rising\n",
			orUnknown(profile.SunSign), orUnknown(profile.MoonSign), orUnknown(profile.RisingSign))
		fmt.Fprintf(&sb, "DOMINANT ELEMENT: %s\n", orUnknown(profile.DominantElement))
	}
	if profile != nil && profile.SpiritualGoals != "" {
		fmt.Fprintf(&sb, "SPIRITUAL GOALS: %s\n", profile.SpiritualGoals)
	}
	if profile != nil && profile.CurrentChallenges != "" {
		fmt.Fprintf(&sb, "CURRENT CHALLENGES: %s\n", profile.CurrentChallenges)
	}
	fmt.Fprintf(&sb, "CONTEXT TYPE: %s\n", guidanceType)
	fmt.Fprintf(&sb, "CURRENT MOON PHASE: %s %s (%.0f%% illuminated)\n", phase.Name, phase.Emoji, phase.Illumination*100)
	if len(crystals) > 0 {
		fmt.Fprintf(&sb, "CRYSTAL COLLECTION: %d crystals including %s\n", len(crystals), strings.Join(firstN(crystals, 5), ", "))
	} else {
		sb.WriteString("CRYSTAL COLLECTION: none recorded yet\n")
	}
	fmt.Fprintf(&sb, "\nUSER'S QUESTION: %s\n\n", question)
	sb.WriteString("Offer practical spiritual advice, reference the moon phase where it is relevant, and name specific crystals.")
	if profile.HasBirthChart() {
		sb.WriteString(" Tie the advice to their birth chart placements.")
	}
	return sb.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func firstN(in []string, n int) []string {
	if len(in) <= n {
		return in
	}
	return in[:n]
}

const journalExtractionSystemPrompt = `You extract structured elements from personal journal and dream narratives.
Reply with a single raw JSON object and nothing else.`

func buildJournalExtractionPrompt(content string) string {
	var sb strings.Builder
	sb.WriteString("Extract key elements from this narrative.\n\n")
	fmt.Fprintf(&sb, "NARRATIVE:\n%s\n\n", content)
	sb.WriteString(`Extract:
1. Main themes (transformation, fear, love, journey, ...)
2. Symbols (water, animals, objects, people)
3. Emotional tone, one word (peaceful, anxious, joyful, fearful, ...)
4. Colors mentioned
5. Locations (home, forest, water, ...)

Return ONLY valid JSON in this format:
{
  "themes": ["theme1", "theme2"],
  "symbols": ["symbol1", "symbol2"],
  "emotional_tone": "primary_emotion",
  "colors": ["color1"],
  "locations": ["location1"]
}`)
	return sb.String()
}
