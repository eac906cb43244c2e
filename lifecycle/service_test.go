package lifecycle_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicworks-be/lifecycle"
	"civicworks-be/models"
	"civicworks-be/store"
)

type fixture struct {
	engine  *lifecycle.Service
	store   *store.Memory
	citizen lifecycle.Actor
	admin   lifecycle.Actor
	worker  lifecycle.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := store.NewMemory()
	f := &fixture{
		store:   mem,
		engine:  lifecycle.New(mem, lifecycle.NopEmitter{}, zerolog.Nop()),
		citizen: lifecycle.Actor{ID: primitive.NewObjectID(), Role: models.RoleCitizen},
		admin:   lifecycle.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin},
		worker:  lifecycle.Actor{ID: primitive.NewObjectID(), Role: models.RoleWorker},
	}

	mem.PutUser(models.User{ID: f.citizen.ID, Name: "cara", Role: models.RoleCitizen})
	mem.PutUser(models.User{ID: f.admin.ID, Name: "ada", Role: models.RoleAdmin})
	mem.PutUser(models.User{ID: f.worker.ID, Name: "wes", Role: models.RoleWorker})

	return f
}

func (f *fixture) report(t *testing.T, category models.IssueCategory) *models.Issue {
	t.Helper()
	issue, err := f.engine.Report(context.Background(), f.citizen, lifecycle.ReportInput{
		Title:       "broken thing",
		Description: "needs fixing",
		Category:    string(category),
		Location:    models.Location{Lat: 12.97, Lng: 77.59},
	})
	require.NoError(t, err)
	return issue
}

// reportResolved drives a fresh issue to RESOLVED
func (f *fixture) reportResolved(t *testing.T, category models.IssueCategory) *models.Issue {
	t.Helper()
	ctx := context.Background()
	issue := f.report(t, category)
	require.NoError(t, f.engine.Verify(ctx, f.admin, issue.ID))
	require.NoError(t, f.engine.Assign(ctx, f.admin, issue.ID, f.worker.ID))
	require.NoError(t, f.engine.Progress(ctx, f.worker, issue.ID))
	require.NoError(t, f.engine.Resolve(ctx, f.worker, issue.ID, nil))
	return issue
}

func TestReportValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var validation *lifecycle.ValidationError

	_, err := f.engine.Report(ctx, f.citizen, lifecycle.ReportInput{Title: "no description"})
	assert.ErrorAs(t, err, &validation)

	_, err = f.engine.Report(ctx, f.citizen, lifecycle.ReportInput{
		Title: "t", Description: "d", Category: "Volcano",
	})
	assert.ErrorAs(t, err, &validation)

	var conflict *lifecycle.StateConflictError
	_, err = f.engine.Report(ctx, f.admin, lifecycle.ReportInput{
		Title: "t", Description: "d", Category: string(models.Pothole),
	})
	assert.ErrorAs(t, err, &conflict)
}

func TestReportAwardsPoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.report(t, models.Pothole)
	user, err := f.store.GetUser(ctx, f.citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(lifecycle.ReportPoints), user.Points)

	photo := "https://img.example/pothole.jpg"
	_, err = f.engine.Report(ctx, f.citizen, lifecycle.ReportInput{
		Title:       "with photo",
		Description: "d",
		Category:    string(models.Pothole),
		ImageURL:    &photo,
	})
	require.NoError(t, err)

	user, err = f.store.GetUser(ctx, f.citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2*lifecycle.ReportPoints+lifecycle.ReportPhotoBonus), user.Points)
}

func TestFullLifecycleAuditTrail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issue := f.reportResolved(t, models.GarbageDump)
	require.NoError(t, f.engine.Close(ctx, f.admin, issue.ID))

	got, err := f.store.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Closed, got.Status)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, f.worker.ID, *got.AssignedTo)

	trail, err := f.engine.Timeline(ctx, issue.ID)
	require.NoError(t, err)

	actions := make([]string, 0, len(trail))
	for _, entry := range trail {
		actions = append(actions, entry.Action)
	}
	assert.Equal(t, []string{
		"REPORTED", "VERIFIED", "ASSIGNED", "IN_PROGRESS", "RESOLVED", "CLOSED",
	}, actions)

	// every consecutive pair is an edge of the lifecycle graph
	for i := 1; i < len(trail); i++ {
		from := models.IssueStatus(trail[i-1].Action)
		to := models.IssueStatus(trail[i].Action)
		assert.True(t, lifecycle.LegalEdge(from, to), "%s -> %s", from, to)
		assert.False(t, trail[i].Timestamp.Before(trail[i-1].Timestamp))
	}
}

func TestClosureAccounting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issue := f.reportResolved(t, models.GarbageDump)
	require.NoError(t, f.engine.Close(ctx, f.admin, issue.ID))

	vectors := f.store.ImpactVectors()
	require.Len(t, vectors, 1)
	assert.Equal(t, issue.ID, vectors[0].IssueID)
	assert.Equal(t, 25.0, vectors[0].WasteRemoved)
	assert.Equal(t, 20.0, vectors[0].CO2Reduced)

	agg, err := f.store.GetAggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.TotalIssuesResolved)
	assert.Equal(t, 25.0, agg.TotalWasteRemoved)
	assert.Equal(t, 20.0, agg.TotalCO2Reduced)

	user, err := f.store.GetUser(ctx, f.citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(lifecycle.ReportPoints+lifecycle.ClosePoints), user.Points)
}

func TestResolveByWrongWorkerRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stranger := lifecycle.Actor{ID: primitive.NewObjectID(), Role: models.RoleWorker}
	f.store.PutUser(models.User{ID: stranger.ID, Role: models.RoleWorker})

	issue := f.report(t, models.Pothole)
	require.NoError(t, f.engine.Verify(ctx, f.admin, issue.ID))
	require.NoError(t, f.engine.Assign(ctx, f.admin, issue.ID, f.worker.ID))

	trailBefore, err := f.engine.Timeline(ctx, issue.ID)
	require.NoError(t, err)

	var conflict *lifecycle.StateConflictError
	err = f.engine.Resolve(ctx, stranger, issue.ID, nil)
	assert.ErrorAs(t, err, &conflict)

	// rejection leaves no trace: same status, same trail
	got, err := f.store.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Assigned, got.Status)

	trailAfter, err := f.engine.Timeline(ctx, issue.ID)
	require.NoError(t, err)
	assert.Len(t, trailAfter, len(trailBefore))
}

func TestAssignRequiresWorkerTarget(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issue := f.report(t, models.WaterLeakage)

	var validation *lifecycle.ValidationError
	err := f.engine.Assign(ctx, f.admin, issue.ID, f.citizen.ID)
	assert.ErrorAs(t, err, &validation)

	var notFound *lifecycle.NotFoundError
	err = f.engine.Assign(ctx, f.admin, issue.ID, primitive.NewObjectID())
	assert.ErrorAs(t, err, &notFound)

	// direct assignment from REPORTED is legal
	require.NoError(t, f.engine.Assign(ctx, f.admin, issue.ID, f.worker.ID))
}

func TestGenericUpdateStatusKeepsTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issue := f.report(t, models.Pothole)

	var conflict *lifecycle.StateConflictError

	// illegal edge, even for the right role
	err := f.engine.UpdateStatus(ctx, f.admin, issue.ID, models.Closed)
	assert.ErrorAs(t, err, &conflict)

	// wrong role for a legal edge
	err = f.engine.UpdateStatus(ctx, f.worker, issue.ID, models.Verified)
	assert.ErrorAs(t, err, &conflict)

	var validation *lifecycle.ValidationError
	err = f.engine.UpdateStatus(ctx, f.admin, issue.ID, "LIMBO")
	assert.ErrorAs(t, err, &validation)
}

func TestGenericUpdateStatusCannotAssignWithoutWorker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issue := f.report(t, models.Pothole)
	require.NoError(t, f.engine.Verify(ctx, f.admin, issue.ID))

	// ASSIGNED carries no worker on this path and would leave the issue
	// stuck behind the assignee-only edges
	var validation *lifecycle.ValidationError
	err := f.engine.UpdateStatus(ctx, f.admin, issue.ID, models.Assigned)
	assert.ErrorAs(t, err, &validation)

	got, err := f.store.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Verified, got.Status)
	assert.Nil(t, got.AssignedTo)

	require.NoError(t, f.engine.Assign(ctx, f.admin, issue.ID, f.worker.ID))
	got, err = f.store.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Assigned, got.Status)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, f.worker.ID, *got.AssignedTo)
	require.NoError(t, f.engine.Progress(ctx, f.worker, issue.ID))
}

func TestClosedIssueRejectsAllTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issue := f.reportResolved(t, models.BrokenStreetlight)
	require.NoError(t, f.engine.Close(ctx, f.admin, issue.ID))

	var conflict *lifecycle.StateConflictError
	for _, target := range []models.IssueStatus{
		models.Verified, models.Assigned, models.InProgress, models.Resolved, models.Closed,
	} {
		err := f.engine.UpdateStatus(ctx, f.admin, issue.ID, target)
		assert.ErrorAs(t, err, &conflict, "CLOSED -> %s must be rejected", target)
	}

	// still exactly one impact vector
	assert.Len(t, f.store.ImpactVectors(), 1)
}

func TestConcurrentCloseAccountsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issue := f.reportResolved(t, models.GarbageDump)

	const attempts = 100
	var wg sync.WaitGroup
	results := make([]error, attempts)

	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = f.engine.Close(ctx, f.admin, issue.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var conflict *lifecycle.StateConflictError
		var raced *lifecycle.ConcurrentModificationError
		assert.True(t,
			errors.As(err, &conflict) || errors.As(err, &raced),
			"unexpected error kind: %v", err)
	}
	assert.Equal(t, 1, succeeded)

	assert.Len(t, f.store.ImpactVectors(), 1)

	agg, err := f.store.GetAggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.TotalIssuesResolved)
	assert.Equal(t, 25.0, agg.TotalWasteRemoved)

	user, err := f.store.GetUser(ctx, f.citizen.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(lifecycle.ReportPoints+lifecycle.ClosePoints), user.Points)
}

func TestConcurrentClosuresKeepAggregateExact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 100
	issues := make([]*models.Issue, n)
	for i := 0; i < n; i++ {
		issues[i] = f.reportResolved(t, models.GarbageDump)
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, f.engine.Close(ctx, f.admin, issues[i].ID))
		}(i)
	}
	wg.Wait()

	vectors := f.store.ImpactVectors()
	require.Len(t, vectors, n)

	var wantWaste, wantCO2 float64
	for _, v := range vectors {
		wantWaste += v.WasteRemoved
		wantCO2 += v.CO2Reduced
	}

	agg, err := f.store.GetAggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(n), agg.TotalIssuesResolved)
	assert.Equal(t, wantWaste, agg.TotalWasteRemoved)
	assert.Equal(t, wantCO2, agg.TotalCO2Reduced)
}

func TestPurgeCascadesAndRecomputes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	keep := f.reportResolved(t, models.GarbageDump)
	drop := f.reportResolved(t, models.GarbageDump)
	require.NoError(t, f.engine.Close(ctx, f.admin, keep.ID))
	require.NoError(t, f.engine.Close(ctx, f.admin, drop.ID))

	var conflict *lifecycle.StateConflictError
	err := f.engine.Purge(ctx, f.citizen, drop.ID)
	assert.ErrorAs(t, err, &conflict)

	require.NoError(t, f.engine.Purge(ctx, f.admin, drop.ID))

	var notFound *lifecycle.NotFoundError
	_, err = f.store.GetIssue(ctx, drop.ID)
	assert.ErrorAs(t, err, &notFound)

	_, err = f.engine.Timeline(ctx, drop.ID)
	assert.ErrorAs(t, err, &notFound)

	// aggregate shrinks only through recomputation
	agg, err := f.store.GetAggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), agg.TotalIssuesResolved)
	assert.Equal(t, 25.0, agg.TotalWasteRemoved)
}

func TestUpdateStatusNotFound(t *testing.T) {
	f := newFixture(t)

	var notFound *lifecycle.NotFoundError
	err := f.engine.UpdateStatus(context.Background(), f.admin, primitive.NewObjectID(), models.Verified)
	assert.ErrorAs(t, err, &notFound)
}
