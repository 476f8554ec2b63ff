package accumulate

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmansmann0/capsim-ml/internal/model"
)

func result(round int, names ...string) *model.ExtractionResult {
	res := &model.ExtractionResult{Round: model.IntPtr(round)}
	for _, n := range names {
		res.Records = append(res.Records, model.ProductRecord{
			Segment: model.SegmentTraditional,
			Round:   model.IntPtr(round),
			Name:    n,
		})
	}
	res.Diagnostics = []model.Diagnostic{{Kind: model.DiagMissingPage, Page: 8}}
	return res
}

func TestAccumulator_AppendKeepsOrder(t *testing.T) {
	acc := New()

	s := acc.Append(result(1, "Able", "Acre"))
	assert.Equal(t, Summary{Records: 2, Diagnostics: 1, Total: 2}, s)

	s = acc.Append(result(2, "Bold"))
	assert.Equal(t, Summary{Records: 1, Diagnostics: 1, Total: 3}, s)

	recs := acc.Records()
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"Able", "Acre", "Bold"}, []string{recs[0].Name, recs[1].Name, recs[2].Name})
	assert.Len(t, acc.Diagnostics(), 2)
	assert.True(t, acc.HasRound(1))
	assert.True(t, acc.HasRound(2))
	assert.False(t, acc.HasRound(3))
}

func TestAccumulator_Clear(t *testing.T) {
	acc := New()
	acc.Append(result(1, "Able"))
	acc.Clear()

	assert.Equal(t, 0, acc.Len())
	assert.Empty(t, acc.Records())
	assert.Empty(t, acc.Diagnostics())
	assert.False(t, acc.HasRound(1))

	acc.Append(result(2, "Bold"))
	assert.Equal(t, 1, acc.Len())
}

func TestAccumulator_NilResult(t *testing.T) {
	acc := New()
	acc.Append(result(1, "Able"))
	assert.Equal(t, Summary{Total: 1}, acc.Append(nil))
}

func TestAccumulator_RecordsIsCopy(t *testing.T) {
	acc := New()
	acc.Append(result(1, "Able"))

	recs := acc.Records()
	recs[0].Name = "changed"
	assert.Equal(t, "Able", acc.Records()[0].Name)
}

func TestAccumulator_ConcurrentAppend(t *testing.T) {
	acc := New()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Append(result(i, fmt.Sprintf("P%d", i)))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, acc.Len())
	assert.Len(t, acc.Diagnostics(), 20)
}
