package courier

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Column is a product table field.
type Column string

const (
	ColName          Column = "name"
	ColMarketShare   Column = "market_share"
	ColUnitsSold     Column = "units_sold"
	ColRevisionDate  Column = "revision_date"
	ColStockOut      Column = "stock_out"
	ColPerformance   Column = "performance"
	ColSize          Column = "size"
	ColPrice         Column = "price"
	ColMTBF          Column = "mtbf"
	ColAge           Column = "age"
	ColPromoBudget   Column = "promo_budget"
	ColAwareness     Column = "awareness"
	ColSalesBudget   Column = "sales_budget"
	ColAccessibility Column = "accessibility"
	ColSurvey        Column = "survey"
)

// FixedLayout is the legacy 15-column product table order, used when a
// page's header cannot be recovered.
var FixedLayout = []Column{
	ColName, ColMarketShare, ColUnitsSold, ColRevisionDate, ColStockOut,
	ColPerformance, ColSize, ColPrice, ColMTBF, ColAge,
	ColPromoBudget, ColAwareness, ColSalesBudget, ColAccessibility, ColSurvey,
}

func knownColumn(c Column) bool {
	for _, k := range FixedLayout {
		if k == c {
			return true
		}
	}
	return false
}

//go:embed aliases.yaml
var defaultAliasesYAML []byte

type aliasFile struct {
	Columns []aliasEntry `yaml:"columns"`
}

type aliasEntry struct {
	Key      Column   `yaml:"key"`
	Aliases  []string `yaml:"aliases"`
	Contains []string `yaml:"contains"`
	Terminal bool     `yaml:"terminal"`
}

type containsRule struct {
	needle string
	col    Column
}

// Aliases resolves header labels to columns.
type Aliases struct {
	exact    map[string]Column
	contains []containsRule
	terminal map[Column]bool
}

// ParseAliases builds an alias table from YAML.
func ParseAliases(data []byte) (*Aliases, error) {
	var f aliasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "courier: parse aliases")
	}
	a := &Aliases{
		exact:    make(map[string]Column),
		terminal: make(map[Column]bool),
	}
	for _, e := range f.Columns {
		if !knownColumn(e.Key) {
			return nil, eris.Errorf("courier: unknown alias column %q", e.Key)
		}
		a.exact[normalizeLabel(string(e.Key))] = e.Key
		for _, alias := range e.Aliases {
			a.exact[normalizeLabel(alias)] = e.Key
		}
		for _, needle := range e.Contains {
			a.contains = append(a.contains, containsRule{needle: normalizeLabel(needle), col: e.Key})
		}
		if e.Terminal {
			a.terminal[e.Key] = true
		}
	}
	if len(a.terminal) == 0 {
		return nil, eris.New("courier: aliases declare no terminal column")
	}
	return a, nil
}

// DefaultAliases returns the built-in alias table.
func DefaultAliases() *Aliases {
	a, err := ParseAliases(defaultAliasesYAML)
	if err != nil {
		panic(err)
	}
	return a
}

// LoadAliases reads an alias table from path, or the built-in table when
// path is empty.
func LoadAliases(path string) (*Aliases, error) {
	if path == "" {
		return DefaultAliases(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "courier: read aliases %s", path)
	}
	return ParseAliases(data)
}

// Resolve maps a header label to its column.
func (a *Aliases) Resolve(label string) (Column, bool) {
	key := normalizeLabel(label)
	if key == "" {
		return "", false
	}
	if c, ok := a.exact[key]; ok {
		return c, true
	}
	for _, rule := range a.contains {
		if strings.Contains(key, rule.needle) {
			return rule.col, true
		}
	}
	return "", false
}

// IsTerminal reports whether c closes a header.
func (a *Aliases) IsTerminal(c Column) bool {
	return a.terminal[c]
}
