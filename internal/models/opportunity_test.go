package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeneratePublicID(t *testing.T) {
	assert.Equal(t, "opp_20251201_003", GeneratePublicID("20251201", 3))
	assert.Equal(t, "opp_20251201_010", GeneratePublicID("20251201", 10))
	assert.Equal(t, "opp_20251201_123", GeneratePublicID("20251201", 123))
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusNew, StatusSelected, StatusDiscarded, StatusInProgress} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus("NEW"))
}

func TestRawCandidateProblemText(t *testing.T) {
	c := RawCandidate{Title: "Invoices are a pain", Description: "We reconcile by hand"}
	assert.Equal(t, "Invoices are a pain\n\nWe reconcile by hand", c.ProblemText())

	c.Description = ""
	assert.Equal(t, "Invoices are a pain", c.ProblemText())
}
