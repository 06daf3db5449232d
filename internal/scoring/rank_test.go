package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopNReturnsHighestScoresStable(t *testing.T) {
	totals := []float64{3.1, 7.2, 5.0, 9.4, 5.0, 2.2, 8.8, 5.0, 6.6, 1.0, 7.2, 4.4, 9.9, 0.5, 5.0}
	candidates := make([]Candidate, len(totals))
	for i, total := range totals {
		candidates[i] = Candidate{RawCandidateID: uint(i + 1), Total: total}
	}

	top := TopN(candidates, 10)

	require.Len(t, top, 10)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Total, top[i].Total)
	}

	ids := make([]uint, len(top))
	for i, c := range top {
		ids[i] = c.RawCandidateID
	}
	// 9.9, 9.4, 8.8, 7.2 (id 2), 7.2 (id 11), 6.6, then the 5.0 ties in input order
	assert.Equal(t, []uint{13, 4, 7, 2, 11, 9, 3, 5, 8, 15}, ids)
}

func TestTopNFewerThanN(t *testing.T) {
	candidates := []Candidate{{RawCandidateID: 1, Total: 1}, {RawCandidateID: 2, Total: 2}}

	top := TopN(candidates, 10)

	require.Len(t, top, 2)
	assert.Equal(t, uint(2), top[0].RawCandidateID)
	// input is not reordered in place
	assert.Equal(t, uint(1), candidates[0].RawCandidateID)
}

func TestTopNDefault(t *testing.T) {
	candidates := make([]Candidate, 12)
	assert.Len(t, TopN(candidates, 0), DefaultTopN)
}
