package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/jimdaga/opportunity-finder/internal/models"
	"github.com/jimdaga/opportunity-finder/internal/scrapers"
	"github.com/jimdaga/opportunity-finder/internal/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestBatchSkipsKnownExternalIDs(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()
	def := sources.Definition{Name: "alpha", Type: sources.TypeRSS}
	items := []scrapers.Normalized{{ExternalID: "1", Title: "one"}, {ExternalID: "2", Title: "two"}, {ExternalID: "1", Title: "again"}}

	created, err := store.IngestBatch(ctx, def, items, runDate)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "alpha", created[0].Source.Name)

	created, err = store.IngestBatch(ctx, def, []scrapers.Normalized{{ExternalID: "2"}, {ExternalID: "3", Title: "three"}}, runDate)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "3", created[0].ExternalID)

	// same external id under a different source is a distinct candidate
	created, err = store.IngestBatch(ctx, sources.Definition{Name: "beta", Type: sources.TypeRSS}, []scrapers.Normalized{{ExternalID: "1"}}, runDate)
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

func TestNextSequence(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	seq, err := store.NextSequence(ctx, "20251201")
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	for _, id := range []string{"opp_20251201_001", "opp_20251201_012", "opp_20251202_050"} {
		require.NoError(t, db.Create(&models.Opportunity{PublicID: id, Title: id, ProblemDescription: "p"}).Error)
	}

	seq, err = store.NextSequence(ctx, "20251201")
	require.NoError(t, err)
	assert.Equal(t, 13, seq)
}

func TestCountDetectedSince(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()
	def := sources.Definition{Name: "alpha", Type: sources.TypeRSS}

	_, err := store.IngestBatch(ctx, def, []scrapers.Normalized{{ExternalID: "old"}}, runDate.AddDate(0, 0, -10))
	require.NoError(t, err)
	_, err = store.IngestBatch(ctx, def, []scrapers.Normalized{{ExternalID: "new"}}, runDate)
	require.NoError(t, err)

	count, err := store.CountDetectedSince(ctx, runDate.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCommitRunRollsBackWhenRenderFails(t *testing.T) {
	db := openTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	created, err := store.IngestBatch(ctx, sources.Definition{Name: "alpha", Type: sources.TypeRSS}, []scrapers.Normalized{{ExternalID: "1", Title: "one"}}, runDate)
	require.NoError(t, err)
	require.Len(t, created, 1)

	opportunities := []models.Opportunity{{PublicID: "opp_20251201_001", Title: "one", ProblemDescription: "p"}}
	_, err = store.CommitRun(ctx, opportunities, []uint{created[0].ID}, func([]models.Opportunity) (*models.DailyReport, error) {
		return nil, errors.New("template broken")
	})
	require.ErrorContains(t, err, "template broken")

	var count int64
	db.Model(&models.Opportunity{}).Count(&count)
	assert.Zero(t, count)

	pending, err := store.PendingCandidates(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
