package model

// RawReport is the unparsed Courier text as pasted by a user.
type RawReport struct {
	Text string `json:"text"`
	// Round overrides the round marker found in Text when set.
	Round *int `json:"round,omitempty"`
}

// Page is one logical Courier page bound to its segment.
type Page struct {
	Segment Segment `json:"segment"`
	Number  int     `json:"page_number"`
	Text    string  `json:"raw_text"`
}

// Criterion names a customer buying criterion.
const (
	CriterionAge           = "Age"
	CriterionPrice         = "Price"
	CriterionReliability   = "Reliability"
	CriterionIdealPosition = "Ideal Position"
)

// RequiredCriteria lists the criteria every segment page is expected to carry.
func RequiredCriteria() []string {
	return []string{CriterionAge, CriterionPrice, CriterionReliability, CriterionIdealPosition}
}

// Criterion is one line of a page's customer buying criteria block.
type Criterion struct {
	Name        string `json:"name"`
	Expectation string `json:"expectation_text"`
	Importance  string `json:"importance_percent"`
}

// Criteria holds the criteria of a single page keyed by name.
type Criteria struct {
	byName map[string]Criterion
	order  []string
}

// NewCriteria returns an empty criteria set.
func NewCriteria() *Criteria {
	return &Criteria{byName: make(map[string]Criterion)}
}

// Set stores c. A later criterion with the same name replaces the earlier one
// but keeps its original position.
func (c *Criteria) Set(cr Criterion) {
	if _, ok := c.byName[cr.Name]; !ok {
		c.order = append(c.order, cr.Name)
	}
	c.byName[cr.Name] = cr
}

// Lookup returns the named criterion and whether the page declared it.
func (c *Criteria) Lookup(name string) (Criterion, bool) {
	if c == nil {
		return Criterion{}, false
	}
	cr, ok := c.byName[name]
	return cr, ok
}

// Len returns the number of distinct criteria.
func (c *Criteria) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// All returns the criteria in first-seen order.
func (c *Criteria) All() []Criterion {
	if c == nil {
		return nil
	}
	out := make([]Criterion, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}
