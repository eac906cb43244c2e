package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicworks-be/models"
)

func TestLegalEdges(t *testing.T) {
	legal := [][2]models.IssueStatus{
		{models.Reported, models.Verified},
		{models.Reported, models.Assigned},
		{models.Verified, models.Assigned},
		{models.Assigned, models.InProgress},
		{models.Assigned, models.Resolved},
		{models.InProgress, models.Resolved},
		{models.Resolved, models.Closed},
	}
	for _, edge := range legal {
		assert.True(t, LegalEdge(edge[0], edge[1]), "%s -> %s should be legal", edge[0], edge[1])
	}
}

func TestIllegalEdges(t *testing.T) {
	illegal := [][2]models.IssueStatus{
		{models.Reported, models.InProgress},
		{models.Reported, models.Resolved},
		{models.Reported, models.Closed},
		{models.Verified, models.Verified},
		{models.Verified, models.InProgress},
		{models.Verified, models.Closed},
		{models.Assigned, models.Closed},
		{models.InProgress, models.Closed},
		{models.Resolved, models.Reported},
	}
	for _, edge := range illegal {
		assert.False(t, LegalEdge(edge[0], edge[1]), "%s -> %s should be illegal", edge[0], edge[1])
	}
}

func TestClosedIsTerminal(t *testing.T) {
	targets := []models.IssueStatus{
		models.Reported, models.Verified, models.Assigned,
		models.InProgress, models.Resolved, models.Closed,
	}
	for _, target := range targets {
		assert.False(t, LegalEdge(models.Closed, target), "CLOSED -> %s must be rejected", target)
	}
}

func TestCheckTransitionRoleGates(t *testing.T) {
	worker := primitive.NewObjectID()
	issue := &models.Issue{Status: models.Reported}

	err := checkTransition(issue, models.Verified, Actor{ID: worker, Role: models.RoleWorker})
	var conflict *StateConflictError
	assert.ErrorAs(t, err, &conflict)

	err = checkTransition(issue, models.Verified, Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin})
	assert.NoError(t, err)
}

func TestCheckTransitionAssigneeGate(t *testing.T) {
	assignee := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	issue := &models.Issue{Status: models.Assigned, AssignedTo: &assignee}

	err := checkTransition(issue, models.InProgress, Actor{ID: stranger, Role: models.RoleWorker})
	var conflict *StateConflictError
	assert.ErrorAs(t, err, &conflict)

	assert.NoError(t, checkTransition(issue, models.InProgress, Actor{ID: assignee, Role: models.RoleWorker}))

	// unassigned issue cannot progress at all
	unassigned := &models.Issue{Status: models.Assigned}
	err = checkTransition(unassigned, models.InProgress, Actor{ID: assignee, Role: models.RoleWorker})
	assert.ErrorAs(t, err, &conflict)
}
