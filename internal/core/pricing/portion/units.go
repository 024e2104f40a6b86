// Package portion derives the dollar cost of the quantity a recipe actually
// needs from package-level pricing. Unit conversions are pure functions with
// canonical bases of grams and milliliters; anything unparseable reports
// failure so the resolver can fall through to its next strategy.
package portion

import "strings"

// Kind classifies a unit.
type Kind int

const (
	KindUnknown Kind = iota
	KindMass
	KindVolume
	KindCount
)

// unitDef maps a normalized unit to its kind and factor into the canonical
// base (grams for mass, milliliters for volume, 1 for countable units).
type unitDef struct {
	kind   Kind
	factor float64
}

var unitTable = map[string]unitDef{
	// mass -> grams
	"g":      {KindMass, 1},
	"gram":   {KindMass, 1},
	"grams":  {KindMass, 1},
	"kg":     {KindMass, 1000},
	"mg":     {KindMass, 0.001},
	"oz":     {KindMass, 28.35},
	"ounce":  {KindMass, 28.35},
	"ounces": {KindMass, 28.35},
	"lb":     {KindMass, 453.6},
	"lbs":    {KindMass, 453.6},
	"pound":  {KindMass, 453.6},
	"pounds": {KindMass, 453.6},

	// volume -> milliliters
	"ml":          {KindVolume, 1},
	"milliliter":  {KindVolume, 1},
	"milliliters": {KindVolume, 1},
	"l":           {KindVolume, 1000},
	"liter":       {KindVolume, 1000},
	"liters":      {KindVolume, 1000},
	"fl oz":       {KindVolume, 29.57},
	"floz":        {KindVolume, 29.57},
	"fluid ounce": {KindVolume, 29.57},
	"cup":         {KindVolume, 240},
	"cups":        {KindVolume, 240},
	"tbsp":        {KindVolume, 15},
	"tablespoon":  {KindVolume, 15},
	"tablespoons": {KindVolume, 15},
	"tsp":         {KindVolume, 5},
	"teaspoon":    {KindVolume, 5},
	"teaspoons":   {KindVolume, 5},
	"pint":        {KindVolume, 473},
	"quart":       {KindVolume, 946},
	"gallon":      {KindVolume, 3785},

	// countable
	"each":   {KindCount, 1},
	"whole":  {KindCount, 1},
	"count":  {KindCount, 1},
	"ct":     {KindCount, 1},
	"piece":  {KindCount, 1},
	"pieces": {KindCount, 1},
	"item":   {KindCount, 1},
	"items":  {KindCount, 1},
	"clove":  {KindCount, 1},
	"cloves": {KindCount, 1},
	"bulb":   {KindCount, 1},
	"bulbs":  {KindCount, 1},
	"head":   {KindCount, 1},
	"heads":  {KindCount, 1},
	"bunch":  {KindCount, 1},
	"stalk":  {KindCount, 1},
	"stalks": {KindCount, 1},
	"dozen":  {KindCount, 12},
}

// NormalizeUnit lowercases and trims a unit label, collapsing punctuation
// variants like "fl. oz." into table keys.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	u = strings.ReplaceAll(u, ".", "")
	u = strings.Join(strings.Fields(u), " ")
	return u
}

// LookupUnit resolves a unit label to its kind and canonical factor.
func LookupUnit(unit string) (Kind, float64, bool) {
	def, ok := unitTable[NormalizeUnit(unit)]
	if !ok {
		return KindUnknown, 0, false
	}
	return def.kind, def.factor, true
}

// Convert converts qty between two units of the same kind. Cross-kind
// conversions (and unknown units) report failure.
func Convert(qty float64, fromUnit, toUnit string) (float64, bool) {
	fromKind, fromFactor, ok := LookupUnit(fromUnit)
	if !ok {
		return 0, false
	}
	toKind, toFactor, ok := LookupUnit(toUnit)
	if !ok {
		return 0, false
	}
	if fromKind != toKind {
		return 0, false
	}
	return qty * fromFactor / toFactor, true
}

// ToCanonical converts qty to the canonical base of its unit's kind.
func ToCanonical(qty float64, unit string) (float64, Kind, bool) {
	kind, factor, ok := LookupUnit(unit)
	if !ok {
		return 0, KindUnknown, false
	}
	return qty * factor, kind, true
}
