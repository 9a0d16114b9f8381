package normalization

// ColorCorrespondence is the chakra, vibration number and zodiac signs associated
// with a perceived crystal color.
type ColorCorrespondence struct {
	PrimaryChakra string
	Number        int
	Signs         []string
}

var colorTable = map[string]ColorCorrespondence{
	"red":    {PrimaryChakra: "root", Number: 1, Signs: []string{"aries", "scorpio"}},
	"orange": {PrimaryChakra: "sacral", Number: 2, Signs: []string{"leo", "sagittarius"}},
	"yellow": {PrimaryChakra: "solar_plexus", Number: 3, Signs: []string{"gemini", "virgo"}},
	"green":  {PrimaryChakra: "heart", Number: 4, Signs: []string{"taurus", "libra"}},
	"pink":   {PrimaryChakra: "heart", Number: 4, Signs: []string{"taurus", "libra"}},
	"blue":   {PrimaryChakra: "throat", Number: 5, Signs: []string{"aquarius", "gemini"}},
	"purple": {PrimaryChakra: "third_eye", Number: 6, Signs: []string{"pisces", "sagittarius"}},
	"violet": {PrimaryChakra: "crown", Number: 7, Signs: []string{"pisces", "aquarius"}},
	"white":  {PrimaryChakra: "crown", Number: 7, Signs: []string{"cancer", "pisces"}},
	// clear resonates with every chakra and sign, so it contributes no specific signs.
	"clear": {PrimaryChakra: "all_chakras", Number: 9, Signs: []string{}},
	"black": {PrimaryChakra: "root", Number: 1, Signs: []string{"capricorn", "scorpio"}},
	"brown": {PrimaryChakra: "root", Number: 1, Signs: []string{"capricorn", "virgo"}},
}

// LookupColor returns a copy of the correspondence for color (trimmed, case-insensitive).
func LookupColor(color string) (ColorCorrespondence, bool) {
	c, ok := colorTable[ParseInputString(color)]
	if !ok {
		return ColorCorrespondence{}, false
	}
	signs := make([]string, len(c.Signs))
	copy(signs, c.Signs)
	c.Signs = signs
	return c, true
}

// KnownColors lists the table's colors in a stable order.
func KnownColors() []string {
	return []string{"red", "orange", "yellow", "green", "blue", "purple", "violet", "white", "clear", "black", "pink", "brown"}
}

var mineralClassTable = map[string]string{
	"quartz": "Silicate", "feldspar": "Silicate", "beryl": "Silicate",
	"tourmaline": "Silicate", "garnet": "Silicate", "mica": "Silicate",
	"pyroxene": "Silicate", "amphibole": "Silicate", "zeolite": "Silicate",

	"corundum": "Oxide", "hematite": "Oxide", "magnetite": "Oxide", "spinel": "Oxide",

	"calcite": "Carbonate", "aragonite": "Carbonate", "malachite": "Carbonate",
	"azurite": "Carbonate", "siderite": "Carbonate", "dolomite": "Carbonate",

	"gypsum": "Sulfate", "barite": "Sulfate", "celestite": "Sulfate",

	"apatite": "Phosphate", "turquoise": "Phosphate",

	"pyrite": "Sulfide", "galena": "Sulfide", "sphalerite": "Sulfide",

	"halite": "Halide", "fluorite": "Halide",
}

func MineralClassForFamily(family string) (string, bool) {
	class, ok := mineralClassTable[ParseInputString(family)]
	return class, ok
}

var zodiacSigns = map[string]bool{
	"aries": true, "taurus": true, "gemini": true, "cancer": true,
	"leo": true, "virgo": true, "libra": true, "scorpio": true,
	"sagittarius": true, "capricorn": true, "aquarius": true, "pisces": true,
}

var elements = map[string]bool{"fire": true, "earth": true, "air": true, "water": true}

// ZodiacSign returns the canonical lower-case sign name.
func ZodiacSign(s string) (string, bool) {
	k := ParseInputString(s)
	return k, zodiacSigns[k]
}

// Element returns the canonical lower-case classical element.
func Element(s string) (string, bool) {
	k := ParseInputString(s)
	return k, elements[k]
}
