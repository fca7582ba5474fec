package staging

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmilano1/genealogy-extractors/internal/common"
	"github.com/pmilano1/genealogy-extractors/internal/models"
	"github.com/pmilano1/genealogy-extractors/internal/storage"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	logger := common.GetLogger()
	backend, err := storage.NewSQLiteBackend(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	require.NoError(t, storage.EnsureSchema(context.Background(), backend))
	return NewStore(backend, logger)
}

func testPerson() *models.Person {
	return &models.Person{ID: "p1", GivenName: "John", Surname: "Smith"}
}

func testRecord(score int) *models.CandidateRecord {
	return &models.CandidateRecord{
		Name:       "John Smith",
		BirthYear:  models.IntPtr(1880),
		BirthPlace: "London",
		URL:        "https://example.org/r/1",
		Source:     "geneanet",
		MatchScore: score,
	}
}

func TestAddAndGetPending(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	query := &models.Query{Surname: "Smith", GivenName: "John", BirthYear: 1880}

	id, err := s.AddFinding(ctx, testPerson(), testRecord(85), query)
	require.NoError(t, err)
	assert.Positive(t, id)

	pending, err := s.GetPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	f := pending[0]
	assert.Equal(t, "p1", f.PersonID)
	assert.Equal(t, "John Smith", f.PersonName)
	assert.Equal(t, "geneanet", f.SourceKey)
	assert.Equal(t, models.StatusPending, f.Status)
	assert.Equal(t, 85.0, f.MatchScore)
	require.NotNil(t, f.ExtractedRecord.BirthYear)
	assert.Equal(t, 1880, *f.ExtractedRecord.BirthYear)
	assert.Equal(t, "Smith", f.SearchParams.Surname)
	assert.False(t, f.StagedAt.IsZero())
}

func TestGetPendingOrderedByScore(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	query := &models.Query{Surname: "Smith"}

	_, err := s.AddFinding(ctx, testPerson(), testRecord(70), query)
	require.NoError(t, err)
	_, err = s.AddFinding(ctx, testPerson(), testRecord(95), query)
	require.NoError(t, err)
	_, err = s.AddFinding(ctx, testPerson(), testRecord(80), query)
	require.NoError(t, err)

	pending, err := s.GetPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, 95.0, pending[0].MatchScore)
	assert.Equal(t, 80.0, pending[1].MatchScore)
}

func TestApproveAndReject(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	query := &models.Query{Surname: "Smith"}

	id1, err := s.AddFinding(ctx, testPerson(), testRecord(85), query)
	require.NoError(t, err)
	id2, err := s.AddFinding(ctx, testPerson(), testRecord(60), query)
	require.NoError(t, err)

	require.NoError(t, s.Approve(ctx, id1, "looks right"))
	require.NoError(t, s.Reject(ctx, id2, "wrong county"))

	approved, err := s.GetApproved(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, id1, approved[0].ID)
	assert.Equal(t, "looks right", approved[0].Notes)
	require.NotNil(t, approved[0].ReviewedAt)

	pending, err := s.GetPending(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReviewIsTerminal(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.AddFinding(ctx, testPerson(), testRecord(85), &models.Query{Surname: "Smith"})
	require.NoError(t, err)
	require.NoError(t, s.Approve(ctx, id, ""))

	assert.Error(t, s.Approve(ctx, id, ""))
	assert.Error(t, s.Reject(ctx, id, ""))
}

func TestReviewUnknownID(t *testing.T) {
	s := newStore(t)
	assert.Error(t, s.Approve(context.Background(), 9999, ""))
}

func TestMarkSubmitted(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	id, err := s.AddFinding(ctx, testPerson(), testRecord(85), &models.Query{Surname: "Smith"})
	require.NoError(t, err)
	require.NoError(t, s.Approve(ctx, id, ""))
	require.NoError(t, s.MarkSubmitted(ctx, id))

	approved, err := s.GetApproved(ctx)
	require.NoError(t, err)
	assert.Empty(t, approved)
}

func TestSummary(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	query := &models.Query{Surname: "Smith"}

	id1, _ := s.AddFinding(ctx, testPerson(), testRecord(85), query)
	_, _ = s.AddFinding(ctx, testPerson(), testRecord(75), query)
	id3, _ := s.AddFinding(ctx, testPerson(), testRecord(55), query)
	require.NoError(t, s.Approve(ctx, id1, ""))
	require.NoError(t, s.Reject(ctx, id3, ""))

	summary, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 1, summary.Approved)
	assert.Equal(t, 1, summary.Rejected)
	assert.Equal(t, 2, summary.Reviewed)
	assert.Equal(t, 3, summary.BySource["geneanet"])
}

func TestGetByPerson(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	query := &models.Query{Surname: "Smith"}

	_, err := s.AddFinding(ctx, testPerson(), testRecord(85), query)
	require.NoError(t, err)
	other := &models.Person{ID: "p2", Surname: "Jones"}
	_, err = s.AddFinding(ctx, other, testRecord(85), query)
	require.NoError(t, err)

	findings, err := s.GetByPerson(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "p1", findings[0].PersonID)
}

func TestClearAll(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.AddFinding(ctx, testPerson(), testRecord(85), &models.Query{Surname: "Smith"})
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(ctx))

	summary, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
}
