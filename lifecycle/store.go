package lifecycle

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicworks-be/models"
)

// IssueUpdate carries the fields a transition may set alongside the status
// flip. Nil fields are left untouched.
type IssueUpdate struct {
	AssignedTo         *primitive.ObjectID
	CompletionImageURL *string
	UpdatedAt          time.Time
}

// Store is the persistence capability the engine is constructed with.
// Implementations must provide conditional updates, append-only inserts,
// atomic increments and ordered range reads; the engine performs no
// locking of its own beyond what these contracts guarantee.
type Store interface {
	// InsertIssue persists a new issue in its initial state.
	InsertIssue(ctx context.Context, issue *models.Issue) error
	// GetIssue returns the issue or a *NotFoundError.
	GetIssue(ctx context.Context, id primitive.ObjectID) (*models.Issue, error)
	// TransitionIssue flips the status only if the persisted status still
	// equals expected. It reports whether the flip matched; a false return
	// with nil error means the conditional update lost a race.
	TransitionIssue(ctx context.Context, id primitive.ObjectID, expected, target models.IssueStatus, update IssueUpdate) (bool, error)
	// PurgeIssue removes the issue and everything referencing it
	// (audit entries, impact vectors, votes).
	PurgeIssue(ctx context.Context, id primitive.ObjectID) error

	// GetUser returns the user or a *NotFoundError.
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// IncrementPoints atomically adds delta to the user's points.
	IncrementPoints(ctx context.Context, userID primitive.ObjectID, delta int64) error
	// FindAdmins lists every admin user, for report fan-out.
	FindAdmins(ctx context.Context) ([]models.User, error)

	// AppendAudit appends one immutable entry to the issue's trail.
	AppendAudit(ctx context.Context, entry models.AuditEntry) error
	// AuditTrail returns the issue's entries ordered by timestamp ascending.
	AuditTrail(ctx context.Context, issueID primitive.ObjectID) ([]models.AuditEntry, error)

	// InsertImpact persists a newly computed impact vector.
	InsertImpact(ctx context.Context, vector models.ImpactVector) error
	// AddToAggregate folds the vector into the singleton aggregate and
	// increments the resolved count, atomically.
	AddToAggregate(ctx context.Context, vector models.ImpactVector) error
	// GetAggregate reads the singleton aggregate, zero-valued if absent.
	GetAggregate(ctx context.Context) (models.GlobalAggregate, error)
	// RecomputeAggregate rebuilds the aggregate from the surviving impact
	// vectors. Used after a purge; the only path that can shrink totals.
	RecomputeAggregate(ctx context.Context) error
}
