package courier

import (
	"strings"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// PageFacts are the page-scoped values attached to every record on a page.
type PageFacts struct {
	Segment      model.Segment
	Round        *int
	TotalDemand  string
	Expectations Expectations
}

// BuildRecord turns a raw row into a normalized ProductRecord.
func BuildRecord(raw RawRecord, facts PageFacts) model.ProductRecord {
	exp := facts.Expectations
	rec := model.ProductRecord{
		Segment:                 facts.Segment,
		TotalIndustryUnitDemand: facts.TotalDemand,
		Name:                    raw.Get(ColName),
		MarketShare:             raw.Get(ColMarketShare),
		UnitsSold:               raw.Get(ColUnitsSold),
		RevisionDate:            raw.Get(ColRevisionDate),
		Stockout:                raw.Get(ColStockOut),
		Performance:             raw.Get(ColPerformance),
		Size:                    raw.Get(ColSize),
		Price:                   raw.Get(ColPrice),
		MTBF:                    raw.Get(ColMTBF),
		Age:                     raw.Get(ColAge),
		PromoBudget:             raw.Get(ColPromoBudget),
		Awareness:               raw.Get(ColAwareness),
		SalesBudget:             raw.Get(ColSalesBudget),
		Accessibility:           raw.Get(ColAccessibility),
		SurveyScore:             raw.Get(ColSurvey),
		AgeExpectation:          exp.AgeExpectation,
		AgeImportance:           exp.AgeImportance,
		PriceLower:              exp.PriceLower,
		PriceUpper:              exp.PriceUpper,
		PriceImportance:         exp.PriceImportance,
		IdealPerformance:        exp.IdealPerformance,
		IdealSize:               exp.IdealSize,
		IdealPositionImportance: exp.IdealImportance,
		ReliabilityLower:        exp.ReliabilityLower,
		ReliabilityUpper:        exp.ReliabilityUpper,
		ReliabilityImportance:   exp.ReliabilityImportance,
	}
	if facts.Round != nil {
		rec.Round = model.IntPtr(*facts.Round)
	}
	return Normalize(rec)
}

// Normalize strips currency, thousands separators and percent signs from
// every numeric field and folds the stock-out marker to "0" or "1".
// Values that are not decimals after stripping become "". Normalize is
// idempotent.
func Normalize(rec model.ProductRecord) model.ProductRecord {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.RevisionDate = strings.TrimSpace(rec.RevisionDate)
	rec.Stockout = normalizeFlag(rec.Stockout)
	for _, f := range []*string{
		&rec.TotalIndustryUnitDemand,
		&rec.MarketShare,
		&rec.UnitsSold,
		&rec.Performance,
		&rec.Size,
		&rec.Price,
		&rec.MTBF,
		&rec.Age,
		&rec.PromoBudget,
		&rec.Awareness,
		&rec.SalesBudget,
		&rec.Accessibility,
		&rec.SurveyScore,
		&rec.AgeExpectation,
		&rec.AgeImportance,
		&rec.PriceLower,
		&rec.PriceUpper,
		&rec.PriceImportance,
		&rec.IdealPerformance,
		&rec.IdealSize,
		&rec.IdealPositionImportance,
		&rec.ReliabilityLower,
		&rec.ReliabilityUpper,
		&rec.ReliabilityImportance,
	} {
		*f = cleanNumber(*f)
	}
	return rec
}

var decorations = strings.NewReplacer("$", "", ",", "", "%", "", " ", "")

// cleanNumber strips decorations and returns the plain decimal, or "" when
// what remains is not a decimal number.
func cleanNumber(s string) string {
	s = decorations.Replace(strings.TrimSpace(s))
	if !isDecimal(s) {
		return ""
	}
	return s
}

// isDecimal accepts an optional minus sign, digits and at most one point
// with at least one digit overall.
func isDecimal(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case isDigit(c):
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// normalizeFlag maps a stock-out marker to "1" when present. Already
// normalized values and explicit negatives map to "0".
func normalizeFlag(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "no", "n", "false":
		return "0"
	default:
		return "1"
	}
}
