package courier

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

// Options configures an Extractor.
type Options struct {
	Strategy Strategy
	// Workers bounds page-level concurrency. Zero means one worker per page.
	Workers int
	Aliases *Aliases
}

// Extractor runs the full pipeline over a report. It holds no state between
// calls and is safe for concurrent use.
type Extractor struct {
	strategy Strategy
	workers  int
	aliases  *Aliases
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	if opts.Strategy == "" {
		opts.Strategy = StrategySplit
	}
	if opts.Aliases == nil {
		opts.Aliases = DefaultAliases()
	}
	return &Extractor{strategy: opts.Strategy, workers: opts.Workers, aliases: opts.Aliases}
}

type pageResult struct {
	records []model.ProductRecord
	diags   []model.Diagnostic
}

// Extract parses report into records and diagnostics. Per-page and per-row
// problems become diagnostics; only empty input short-circuits.
func (e *Extractor) Extract(report model.RawReport) *model.ExtractionResult {
	text := Prepare(report.Text)
	result := &model.ExtractionResult{Records: []model.ProductRecord{}}
	if strings.TrimSpace(text) == "" {
		result.Diagnostics = []model.Diagnostic{{Kind: model.DiagEmptyInput}}
		return result
	}

	round := report.Round
	if round == nil {
		if n, ok := ExtractRound(text); ok {
			round = model.IntPtr(n)
		} else {
			result.Diagnostics = append(result.Diagnostics, model.Diagnostic{Kind: model.DiagMissingRoundNumber})
		}
	}
	result.Round = round

	pages, diags := SegmentPages(text, e.strategy)
	result.Diagnostics = append(result.Diagnostics, diags...)

	results := make([]pageResult, len(pages))
	var g errgroup.Group
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i, page := range pages {
		g.Go(func() error {
			results[i] = e.extractPage(page, round)
			return nil
		})
	}
	_ = g.Wait()

	for _, pr := range results {
		result.Records = append(result.Records, pr.records...)
		result.Diagnostics = append(result.Diagnostics, pr.diags...)
	}

	zap.L().Info("courier: extraction complete",
		zap.Int("pages", len(pages)),
		zap.Int("records", len(result.Records)),
		zap.Int("diagnostics", len(result.Diagnostics)),
	)
	return result
}

// ExtractText is a shorthand for Extract with no declared round.
func (e *Extractor) ExtractText(text string) *model.ExtractionResult {
	return e.Extract(model.RawReport{Text: text})
}

// extractPage applies criteria, table and row extraction to one page.
func (e *Extractor) extractPage(page model.Page, round *int) pageResult {
	lines := splitLines(page.Text)
	var pr pageResult

	criteria := ParseCriteria(lines)
	exp, cdiags := DeriveExpectations(criteria)
	pr.diags = append(pr.diags, cdiags...)

	table, ok := LocateTable(lines, e.aliases)
	if !ok {
		pr.diags = append(pr.diags, model.Diagnostic{Kind: model.DiagMissingProductTable})
	} else {
		raws, rdiags := BuildRows(lines, table)
		pr.diags = append(pr.diags, rdiags...)
		facts := PageFacts{
			Segment:      page.Segment,
			Round:        round,
			TotalDemand:  TotalIndustryDemand(lines),
			Expectations: exp,
		}
		for _, raw := range raws {
			pr.records = append(pr.records, BuildRecord(raw, facts))
		}
	}

	for i := range pr.diags {
		pr.diags[i].Page = page.Number
		pr.diags[i].Segment = page.Segment
	}

	zap.L().Debug("courier: page extracted",
		zap.String("segment", string(page.Segment)),
		zap.Int("page", page.Number),
		zap.Int("criteria", criteria.Len()),
		zap.String("table_mode", tableMode(table, ok)),
		zap.Int("records", len(pr.records)),
		zap.Int("diagnostics", len(pr.diags)),
	)
	return pr
}

func tableMode(t Table, ok bool) string {
	if !ok {
		return "none"
	}
	return t.Mode.String()
}
