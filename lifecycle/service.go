// Package lifecycle implements the issue lifecycle engine: it validates
// status transitions against an explicit table, writes the audit trail,
// and runs impact accounting exactly once per closed issue.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicworks-be/impact"
	"civicworks-be/models"
)

// Point deltas per lifecycle event.
const (
	ReportPoints     = 10
	ReportPhotoBonus = 5
	ClosePoints      = 20
)

// Actor is the authenticated caller of a transition. Identity and role are
// supplied by the auth layer and trusted here.
type Actor struct {
	ID   primitive.ObjectID
	Role models.Role
}

// Service orchestrates the issue lifecycle over a Store and an Emitter.
type Service struct {
	store  Store
	events Emitter
	log    zerolog.Logger
	now    func() time.Time
}

// New constructs the engine. The emitter may be a NopEmitter.
func New(store Store, events Emitter, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// ReportInput is the citizen-supplied payload for a new issue.
type ReportInput struct {
	Title       string
	Description string
	Category    string
	Location    models.Location
	ImageURL    *string
}

// Report creates an issue in REPORTED state, awards reporter points and
// notifies every admin.
func (s *Service) Report(ctx context.Context, reporter Actor, in ReportInput) (*models.Issue, error) {
	if reporter.Role != models.RoleCitizen {
		return nil, conflictf("role %s cannot report issues", reporter.Role)
	}
	if in.Title == "" || in.Description == "" || in.Category == "" {
		return nil, validationf("title, description and category are required")
	}
	if !models.ValidCategory(in.Category) {
		return nil, validationf("unknown category %q", in.Category)
	}

	now := s.now()
	mapping := models.MapCategoryToSDG(models.IssueCategory(in.Category))
	issue := &models.Issue{
		ID:          primitive.NewObjectID(),
		Title:       in.Title,
		Description: in.Description,
		Category:    models.IssueCategory(in.Category),
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		SDGTags:     mapping.SDGTags,
		ImpactType:  mapping.ImpactType,
		Status:      models.Reported,
		ReportedBy:  reporter.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.InsertIssue(ctx, issue); err != nil {
		return nil, fmt.Errorf("insert issue: %w", err)
	}

	s.audit(ctx, issue.ID, string(models.Reported), reporter.ID)

	points := int64(ReportPoints)
	if in.ImageURL != nil && *in.ImageURL != "" {
		points += ReportPhotoBonus
	}
	if err := s.store.IncrementPoints(ctx, reporter.ID, points); err != nil {
		s.log.Error().Err(err).Str("issue", issue.ID.Hex()).Msg("report points not awarded")
	}

	s.notifyAdmins(ctx, Event{
		Type:    models.NotifyInfo,
		Title:   "New Issue Reported",
		Message: fmt.Sprintf("New issue %q reported in %s", issue.Title, issue.Category),
	})

	return issue, nil
}

// Verify moves REPORTED → VERIFIED (admin only).
func (s *Service) Verify(ctx context.Context, actor Actor, issueID primitive.ObjectID) error {
	issue, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return err
	}
	if err := s.transition(ctx, actor, issue, models.Verified, IssueUpdate{}); err != nil {
		return err
	}
	s.events.Emit(Event{
		Recipient: issue.ReportedBy,
		Type:      models.NotifyInfo,
		Title:     "Issue Verified",
		Message:   fmt.Sprintf("Your issue %q has been verified by admin.", issue.Title),
	})
	return nil
}

// Assign moves REPORTED/VERIFIED → ASSIGNED, setting the assignee. The
// target user must exist and hold the worker role.
func (s *Service) Assign(ctx context.Context, actor Actor, issueID, workerID primitive.ObjectID) error {
	worker, err := s.store.GetUser(ctx, workerID)
	if err != nil {
		return err
	}
	if worker.Role != models.RoleWorker {
		return validationf("user %s is not a worker", workerID.Hex())
	}

	issue, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return err
	}
	if err := s.transition(ctx, actor, issue, models.Assigned, IssueUpdate{AssignedTo: &workerID}); err != nil {
		return err
	}

	s.events.Emit(Event{
		Recipient: workerID,
		Type:      models.NotifyInfo,
		Title:     "New Task Assigned",
		Message:   fmt.Sprintf("You have been assigned to issue %q", issue.Title),
	})
	s.events.Emit(Event{
		Recipient: issue.ReportedBy,
		Type:      models.NotifyInfo,
		Title:     "Issue Assigned",
		Message:   fmt.Sprintf("A worker has been assigned to your issue %q", issue.Title),
	})
	return nil
}

// Progress moves ASSIGNED → IN_PROGRESS (assigned worker only).
func (s *Service) Progress(ctx context.Context, actor Actor, issueID primitive.ObjectID) error {
	return s.UpdateStatus(ctx, actor, issueID, models.InProgress)
}

// Resolve moves ASSIGNED/IN_PROGRESS → RESOLVED (assigned worker only),
// optionally attaching a completion image.
func (s *Service) Resolve(ctx context.Context, actor Actor, issueID primitive.ObjectID, completionImage *string) error {
	issue, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return err
	}
	if err := s.transition(ctx, actor, issue, models.Resolved, IssueUpdate{CompletionImageURL: completionImage}); err != nil {
		return err
	}
	s.events.Emit(Event{
		Recipient: issue.ReportedBy,
		Type:      models.NotifyInfo,
		Title:     "Issue Resolved",
		Message:   fmt.Sprintf("Your issue %q has been resolved and awaits closure.", issue.Title),
	})
	return nil
}

// Close moves RESOLVED → CLOSED (admin only) and settles impact
// accounting for the issue.
func (s *Service) Close(ctx context.Context, actor Actor, issueID primitive.ObjectID) error {
	return s.UpdateStatus(ctx, actor, issueID, models.Closed)
}

// UpdateStatus is the generic transition entry point. It consults the same
// transition table as the named operations, so role gates, the assignee
// relationship and the terminal CLOSED state hold on this path too.
// ASSIGNED is not reachable here: it requires a worker identity that only
// Assign supplies, and flipping into it without one would strand the issue
// behind the assignee-only edges. Entering CLOSED triggers impact
// accounting for the single request that wins the conditional status flip.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, issueID primitive.ObjectID, target models.IssueStatus) error {
	if !models.ValidStatus(string(target)) {
		return validationf("unknown status %q", target)
	}
	if target == models.Assigned {
		return validationf("assignment requires a worker, use assign")
	}

	issue, err := s.store.GetIssue(ctx, issueID)
	if err != nil {
		return err
	}
	if err := s.transition(ctx, actor, issue, target, IssueUpdate{}); err != nil {
		return err
	}

	s.events.Emit(Event{
		Recipient: issue.ReportedBy,
		Type:      models.NotifyInfo,
		Title:     fmt.Sprintf("Status: %s", target),
		Message:   fmt.Sprintf("Your issue %q is now %s", issue.Title, target),
	})

	if target == models.Closed {
		s.settleClosure(ctx, issue)
	}
	return nil
}

// Timeline returns the issue's audit trail ordered by timestamp ascending.
func (s *Service) Timeline(ctx context.Context, issueID primitive.ObjectID) ([]models.AuditEntry, error) {
	if _, err := s.store.GetIssue(ctx, issueID); err != nil {
		return nil, err
	}
	return s.store.AuditTrail(ctx, issueID)
}

// Purge hard-deletes an issue and everything referencing it, then rebuilds
// the global aggregate from the surviving impact vectors. Admin only.
func (s *Service) Purge(ctx context.Context, actor Actor, issueID primitive.ObjectID) error {
	if actor.Role != models.RoleAdmin {
		return conflictf("role %s cannot purge issues", actor.Role)
	}
	if _, err := s.store.GetIssue(ctx, issueID); err != nil {
		return err
	}
	if err := s.store.PurgeIssue(ctx, issueID); err != nil {
		return fmt.Errorf("purge issue: %w", err)
	}
	if err := s.store.RecomputeAggregate(ctx); err != nil {
		s.log.Error().Err(err).Str("issue", issueID.Hex()).Msg("aggregate recompute failed after purge")
	}
	return nil
}

// transition validates against the table, then attempts the conditional
// status flip. The flip is the atomic gate: the audit entry is written only
// after the flip commits, so a rejected or lost transition leaves no trace.
func (s *Service) transition(ctx context.Context, actor Actor, issue *models.Issue, target models.IssueStatus, update IssueUpdate) error {
	if err := checkTransition(issue, target, actor); err != nil {
		return err
	}

	update.UpdatedAt = s.now()
	matched, err := s.store.TransitionIssue(ctx, issue.ID, issue.Status, target, update)
	if err != nil {
		return fmt.Errorf("transition issue: %w", err)
	}
	if !matched {
		return &ConcurrentModificationError{
			Msg: fmt.Sprintf("issue no longer in %s, re-fetch and retry", issue.Status),
		}
	}

	issue.Status = target
	if update.AssignedTo != nil {
		issue.AssignedTo = update.AssignedTo
	}
	s.audit(ctx, issue.ID, string(target), actor.ID)
	return nil
}

// settleClosure runs the closure side effects for the request that won the
// flip into CLOSED: compute the impact vector, persist it, fold it into the
// aggregate and award reporter points. The status commit is never rolled
// back; failures here are logged for reconciliation.
func (s *Service) settleClosure(ctx context.Context, issue *models.Issue) {
	closedAt := s.now()
	hours, anomaly := impact.ElapsedHours(issue.CreatedAt, closedAt)
	if anomaly {
		s.log.Warn().
			Str("issue", issue.ID.Hex()).
			Time("reportedAt", issue.CreatedAt).
			Time("closedAt", closedAt).
			Msg("closure precedes report time, elapsed clamped to zero")
	}

	vector := impact.Calculate(issue.Category, hours)
	vector.IssueID = issue.ID

	if err := s.store.InsertImpact(ctx, vector); err != nil {
		s.log.Error().Err(err).Str("issue", issue.ID.Hex()).Msg("impact vector not persisted, reconciliation needed")
		return
	}
	if err := s.store.AddToAggregate(ctx, vector); err != nil {
		s.log.Error().Err(err).Str("issue", issue.ID.Hex()).Msg("aggregate fold failed, reconciliation needed")
	}
	if err := s.store.IncrementPoints(ctx, issue.ReportedBy, ClosePoints); err != nil {
		s.log.Error().Err(err).Str("issue", issue.ID.Hex()).Msg("closure points not awarded")
	}

	s.events.Emit(Event{
		Recipient: issue.ReportedBy,
		Type:      models.NotifySuccess,
		Title:     "Points Earned!",
		Message:   fmt.Sprintf("You earned %d points for resolving an issue.", ClosePoints),
	})
}

// audit appends one trail entry. Failures cannot undo the committed status
// flip and are logged instead.
func (s *Service) audit(ctx context.Context, issueID primitive.ObjectID, action string, performedBy primitive.ObjectID) {
	entry := models.AuditEntry{
		IssueID:     issueID,
		Action:      action,
		PerformedBy: performedBy,
		Timestamp:   s.now(),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("issue", issueID.Hex()).Str("action", action).Msg("audit entry not written")
	}
}

func (s *Service) notifyAdmins(ctx context.Context, event Event) {
	admins, err := s.store.FindAdmins(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("admin lookup for notification failed")
		return
	}
	for _, admin := range admins {
		event.Recipient = admin.ID
		s.events.Emit(event)
	}
}
