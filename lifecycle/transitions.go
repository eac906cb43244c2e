package lifecycle

import (
	"civicworks-be/models"
)

// transitionRule describes who may move an issue into a target status and
// from which prior statuses. CLOSED has no outgoing rules anywhere in the
// table, which makes it strictly terminal on every path.
type transitionRule struct {
	from         []models.IssueStatus
	role         models.Role
	assigneeOnly bool
}

var transitionTable = map[models.IssueStatus]transitionRule{
	models.Verified: {
		from: []models.IssueStatus{models.Reported},
		role: models.RoleAdmin,
	},
	models.Assigned: {
		from: []models.IssueStatus{models.Reported, models.Verified},
		role: models.RoleAdmin,
	},
	models.InProgress: {
		from:         []models.IssueStatus{models.Assigned},
		role:         models.RoleWorker,
		assigneeOnly: true,
	},
	models.Resolved: {
		from:         []models.IssueStatus{models.Assigned, models.InProgress},
		role:         models.RoleWorker,
		assigneeOnly: true,
	},
	models.Closed: {
		from: []models.IssueStatus{models.Resolved},
		role: models.RoleAdmin,
	},
}

// LegalEdge reports whether from → to is an edge of the lifecycle graph,
// ignoring actor constraints.
func LegalEdge(from, to models.IssueStatus) bool {
	rule, ok := transitionTable[to]
	if !ok {
		return false
	}
	for _, f := range rule.from {
		if f == from {
			return true
		}
	}
	return false
}

// checkTransition validates the edge and the actor against the table.
// A nil return means the transition may be attempted; the persisted flip
// is still conditional on the current status.
func checkTransition(issue *models.Issue, target models.IssueStatus, actor Actor) error {
	rule, ok := transitionTable[target]
	if !ok {
		return conflictf("no transition leads to %s", target)
	}
	if !LegalEdge(issue.Status, target) {
		return conflictf("issue is %s, cannot move to %s", issue.Status, target)
	}
	if actor.Role != rule.role {
		return conflictf("role %s cannot move an issue to %s", actor.Role, target)
	}
	if rule.assigneeOnly {
		if issue.AssignedTo == nil || *issue.AssignedTo != actor.ID {
			return conflictf("issue is not assigned to caller")
		}
	}
	return nil
}
