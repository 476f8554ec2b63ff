package model

import "strconv"

// ProductRecord is one product's row in one segment for one round.
//
// Numeric-looking fields stay strings: they are normalized to plain decimals
// or left empty, never coerced. The csv tags are the export header verbatim.
type ProductRecord struct {
	Segment                 Segment `csv:"segment" json:"segment"`
	Round                   *int    `csv:"round" json:"round"`
	TotalIndustryUnitDemand string  `csv:"Total Industry Unit Demand" json:"total_industry_unit_demand"`
	Name                    string  `csv:"name" json:"name"`
	MarketShare             string  `csv:"Market Share actual" json:"market_share"`
	UnitsSold               string  `csv:"units sold actual" json:"units_sold"`
	RevisionDate            string  `csv:"Revision Date" json:"revision_date"`
	Stockout                string  `csv:"stockout no/yes (0 or 1)" json:"stockout"`
	Performance             string  `csv:"PMFT actual" json:"performance"`
	Size                    string  `csv:"size coordinate actual" json:"size"`
	Price                   string  `csv:"price actual" json:"price"`
	MTBF                    string  `csv:"MTBF actual" json:"mtbf"`
	Age                     string  `csv:"age actual" json:"age"`
	PromoBudget             string  `csv:"Promo Budget actual" json:"promo_budget"`
	Awareness               string  `csv:"awareness actual" json:"awareness"`
	SalesBudget             string  `csv:"Sales Budget actual" json:"sales_budget"`
	Accessibility           string  `csv:"accessibility actual" json:"accessibility"`
	SurveyScore             string  `csv:"customer score actual" json:"survey_score"`
	AgeExpectation          string  `csv:"age expectation" json:"age_expectation"`
	AgeImportance           string  `csv:"age expectation importance" json:"age_importance"`
	PriceLower              string  `csv:"price lower expectation" json:"price_lower"`
	PriceUpper              string  `csv:"price upper expectation" json:"price_upper"`
	PriceImportance         string  `csv:"price importance" json:"price_importance"`
	IdealPerformance        string  `csv:"Ideal Position PMFT" json:"ideal_performance"`
	IdealSize               string  `csv:"Ideal Position Size" json:"ideal_size"`
	IdealPositionImportance string  `csv:"Ideal Position Importance" json:"ideal_position_importance"`
	ReliabilityLower        string  `csv:"reliability MTBF lower limit" json:"reliability_lower"`
	ReliabilityUpper        string  `csv:"reliability MTBF upper limit" json:"reliability_upper"`
	ReliabilityImportance   string  `csv:"reliability importance" json:"reliability_importance"`
}

// Columns returns the export header in output order.
func Columns() []string {
	return []string{
		"segment", "round", "Total Industry Unit Demand", "name",
		"Market Share actual", "units sold actual", "Revision Date",
		"stockout no/yes (0 or 1)", "PMFT actual", "size coordinate actual",
		"price actual", "MTBF actual", "age actual", "Promo Budget actual",
		"awareness actual", "Sales Budget actual", "accessibility actual",
		"customer score actual", "age expectation", "age expectation importance",
		"price lower expectation", "price upper expectation", "price importance",
		"Ideal Position PMFT", "Ideal Position Size", "Ideal Position Importance",
		"reliability MTBF lower limit", "reliability MTBF upper limit",
		"reliability importance",
	}
}

// Values returns the record's cells in Columns order.
func (r ProductRecord) Values() []string {
	round := ""
	if r.Round != nil {
		round = strconv.Itoa(*r.Round)
	}
	return []string{
		string(r.Segment), round, r.TotalIndustryUnitDemand, r.Name,
		r.MarketShare, r.UnitsSold, r.RevisionDate,
		r.Stockout, r.Performance, r.Size,
		r.Price, r.MTBF, r.Age, r.PromoBudget,
		r.Awareness, r.SalesBudget, r.Accessibility,
		r.SurveyScore, r.AgeExpectation, r.AgeImportance,
		r.PriceLower, r.PriceUpper, r.PriceImportance,
		r.IdealPerformance, r.IdealSize, r.IdealPositionImportance,
		r.ReliabilityLower, r.ReliabilityUpper,
		r.ReliabilityImportance,
	}
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}
