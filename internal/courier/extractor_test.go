package courier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

func TestExtract_AllSegments(t *testing.T) {
	t.Parallel()

	res := New(Options{}).ExtractText(renderReport("2", standardPages()...))

	assert.Empty(t, res.Diagnostics)
	require.NotNil(t, res.Round)
	assert.Equal(t, 2, *res.Round)
	require.Len(t, res.Records, 15)

	wantCounts := map[model.Segment]int{
		model.SegmentTraditional: 1,
		model.SegmentLowEnd:      2,
		model.SegmentHighEnd:     3,
		model.SegmentPerformance: 4,
		model.SegmentSize:        5,
	}
	for seg, n := range wantCounts {
		assert.Len(t, res.RecordsFor(seg), n, seg)
	}

	var order []model.Segment
	for _, r := range res.Records {
		if len(order) == 0 || order[len(order)-1] != r.Segment {
			order = append(order, r.Segment)
		}
	}
	assert.Equal(t, model.AllSegments(), order)

	first := res.Records[0]
	assert.Equal(t, "T1", first.Name)
	assert.Equal(t, 2, *first.Round)
	assert.Equal(t, "7387", first.TotalIndustryUnitDemand)
	assert.Equal(t, "18", first.MarketShare)
	assert.Equal(t, "1328", first.UnitsSold)
	assert.Equal(t, "11/4/2022", first.RevisionDate)
	assert.Equal(t, "0", first.Stockout)
	assert.Equal(t, "28.00", first.Price)
	assert.Equal(t, "1400", first.PromoBudget)
	assert.Equal(t, "2.0", first.AgeExpectation)
	assert.Equal(t, "47", first.AgeImportance)
	assert.Equal(t, "20.00", first.PriceLower)
	assert.Equal(t, "30.00", first.PriceUpper)
	assert.Equal(t, "5.9", first.IdealPerformance)
	assert.Equal(t, "14.1", first.IdealSize)
	assert.Equal(t, "14000", first.ReliabilityLower)
	assert.Equal(t, "19000", first.ReliabilityUpper)
	assert.Equal(t, "9", first.ReliabilityImportance)
}

func TestExtract_SingleProductScenario(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"Round: 3",
		"Traditional Segment Analysis\tCAPSTONE® COURIER\tPage 5",
		"Total Industry Unit Demand 12,345",
		"1. Age Ideal Age = 5.0 30%",
		fullHeader,
		"Acme\t10%\t500\t6/1/2024\t\t5.5\t14.5\t$120\t14000\t5.0\t$1,000\t50%\t$1,000\t40%\t77",
	}, "\n")

	res := New(Options{}).ExtractText(text)

	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, model.SegmentTraditional, rec.Segment)
	require.NotNil(t, rec.Round)
	assert.Equal(t, 3, *rec.Round)
	assert.Equal(t, "12345", rec.TotalIndustryUnitDemand)
	assert.Equal(t, "Acme", rec.Name)
	assert.Equal(t, "120", rec.Price)
	assert.Equal(t, "14000", rec.MTBF)
	assert.Equal(t, "5.0", rec.AgeExpectation)
	assert.Equal(t, "30", rec.AgeImportance)
	assert.Equal(t, "77", rec.SurveyScore)

	counts := res.CountByKind()
	assert.Equal(t, 4, counts[model.DiagMissingPage])
	assert.Equal(t, 3, counts[model.DiagMissingCriterion])
}

func TestExtract_EmptyInput(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   \n\t\r\n"} {
		res := New(Options{}).ExtractText(text)
		assert.NotNil(t, res.Records)
		assert.Empty(t, res.Records)
		require.Len(t, res.Diagnostics, 1)
		assert.Equal(t, model.DiagEmptyInput, res.Diagnostics[0].Kind)
		assert.True(t, res.HasFatal())
	}
}

func TestExtract_MissingCriterionOnOnePage(t *testing.T) {
	t.Parallel()

	pages := standardPages()
	pages[2].criteria = pages[2].criteria[:3]

	res := New(Options{}).ExtractText(renderReport("2", pages...))

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, model.DiagMissingCriterion, d.Kind)
	assert.Equal(t, 7, d.Page)
	assert.Equal(t, model.SegmentHighEnd, d.Segment)
	assert.Equal(t, model.CriterionReliability, d.Criterion)

	require.Len(t, res.Records, 15)
	for _, r := range res.Records {
		if r.Segment == model.SegmentHighEnd {
			assert.Empty(t, r.ReliabilityLower)
			assert.Empty(t, r.ReliabilityUpper)
			assert.Empty(t, r.ReliabilityImportance)
			assert.Equal(t, "2.0", r.AgeExpectation)
			continue
		}
		assert.Equal(t, "14000", r.ReliabilityLower)
	}
}

func TestExtract_MissingSegmentPage(t *testing.T) {
	t.Parallel()

	pages := standardPages()
	pages = append(pages[:3], pages[4])

	res := New(Options{}).ExtractText(renderReport("2", pages...))

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, model.DiagMissingPage, res.Diagnostics[0].Kind)
	assert.Equal(t, 8, res.Diagnostics[0].Page)
	assert.Empty(t, res.RecordsFor(model.SegmentPerformance))
	assert.Len(t, res.Records, 11)
	assert.Len(t, res.RecordsFor(model.SegmentSize), 5)
}

func TestExtract_RoundPrecedence(t *testing.T) {
	t.Parallel()

	text := renderReport("2", standardPages()...)
	res := New(Options{}).Extract(model.RawReport{Text: text, Round: model.IntPtr(7)})
	require.NotNil(t, res.Round)
	assert.Equal(t, 7, *res.Round)
	for _, r := range res.Records {
		assert.Equal(t, 7, *r.Round)
	}

	res = New(Options{}).ExtractText(renderReport("", standardPages()...))
	assert.Nil(t, res.Round)
	assert.Equal(t, []model.DiagnosticKind{model.DiagMissingRoundNumber}, diagKinds(res.Diagnostics))
	require.Len(t, res.Records, 15)
	for _, r := range res.Records {
		assert.Nil(t, r.Round)
	}
}

func TestExtract_WrappedRowMatchesSingleLine(t *testing.T) {
	t.Parallel()

	pages := standardPages()
	want := New(Options{}).ExtractText(renderReport("2", pages...))

	cells := strings.Split(pages[0].rows[0], "\t")
	pages[0].rows[0] = strings.Join(cells[:9], "\t") + "\n" + strings.Join(cells[9:], "\t")
	got := New(Options{}).ExtractText(renderReport("2", pages...))

	assert.Empty(t, got.Diagnostics)
	assert.Equal(t, want.Records, got.Records)
}

func TestExtract_MalformedRowSkipped(t *testing.T) {
	t.Parallel()

	pages := standardPages()
	pages[1].rows = append([]string{"Broken\t18%\t1,328"}, pages[1].rows...)
	pages[1].rows[0] += "\n\n"

	res := New(Options{}).ExtractText(renderReport("2", pages...))

	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, model.DiagMalformedProductLine, d.Kind)
	assert.Equal(t, 6, d.Page)
	assert.Equal(t, "Broken\t18%\t1,328", d.Line)
	assert.Len(t, res.RecordsFor(model.SegmentLowEnd), 2)
}

func TestExtract_MissingProductTable(t *testing.T) {
	t.Parallel()

	pages := standardPages()
	pages[4].noTitle = true
	pages[4].header = ""
	pages[4].rows = nil

	res := New(Options{}).ExtractText(renderReport("2", pages...))

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, model.DiagMissingProductTable, res.Diagnostics[0].Kind)
	assert.Equal(t, model.SegmentSize, res.Diagnostics[0].Segment)
	assert.Len(t, res.Records, 10)
}

func TestExtract_RepeatedPageStrategies(t *testing.T) {
	t.Parallel()

	pages := standardPages()
	cont := "Traditional (cont.)\tCAPSTONE® COURIER\tPage 5\n" + row("T9", "$29.00") + "\n"
	var b strings.Builder
	b.WriteString(renderReport("2", pages[0]))
	b.WriteString(cont)
	for _, p := range pages[1:] {
		b.WriteString(p.render())
	}
	text := b.String()

	split := New(Options{Strategy: StrategySplit}).ExtractText(text)
	assert.Equal(t, []model.DiagnosticKind{model.DiagDuplicatePage}, diagKinds(split.Diagnostics))
	assert.Len(t, split.RecordsFor(model.SegmentTraditional), 1)

	capture := New(Options{Strategy: StrategyCapture}).ExtractText(text)
	assert.Empty(t, capture.Diagnostics)
	trad := capture.RecordsFor(model.SegmentTraditional)
	require.Len(t, trad, 2)
	assert.Equal(t, "T9", trad[1].Name)
}

func TestExtract_WorkerLimitDoesNotChangeOutput(t *testing.T) {
	t.Parallel()

	text := renderReport("4", standardPages()...)
	unbounded := New(Options{}).ExtractText(text)
	serial := New(Options{Workers: 1}).ExtractText(text)
	assert.Equal(t, unbounded, serial)
}

func TestExtract_Idempotent(t *testing.T) {
	t.Parallel()

	e := New(Options{})
	text := renderReport("2", standardPages()...)
	assert.Equal(t, e.ExtractText(text), e.ExtractText(text))
}

func TestExtract_CustomAliases(t *testing.T) {
	t.Parallel()

	aliases, err := ParseAliases([]byte(`
columns:
  - key: name
    aliases: ["Brand"]
  - key: market_share
    aliases: ["Share"]
  - key: price
    aliases: ["Cost"]
  - key: survey
    aliases: ["Rating"]
    terminal: true
`))
	require.NoError(t, err)

	page := standardPages()[0]
	page.noTitle = true
	page.header = "Brand\tShare\tCost\tRating"
	page.rows = []string{"Able\t18%\t$28.00\t40"}

	res := New(Options{Aliases: aliases}).ExtractText(renderReport("2", page))
	require.Len(t, res.Records, 1)
	assert.Equal(t, "28.00", res.Records[0].Price)
	assert.Equal(t, "40", res.Records[0].SurveyScore)
	assert.Empty(t, res.Records[0].UnitsSold)
}
