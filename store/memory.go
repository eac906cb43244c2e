// Package store provides the persistence implementations behind the
// lifecycle engine: MongoDB for the service and an in-memory variant for
// tests and local development.
package store

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicworks-be/lifecycle"
	"civicworks-be/models"
)

// Memory is an in-process Store. All operations are serialized by a single
// mutex, which gives the same conditional-update and atomic-increment
// guarantees the engine expects from MongoDB.
type Memory struct {
	mu        sync.Mutex
	issues    map[primitive.ObjectID]models.Issue
	users     map[primitive.ObjectID]models.User
	audits    []models.AuditEntry
	impacts   map[primitive.ObjectID]models.ImpactVector
	aggregate models.GlobalAggregate
	votes     map[primitive.ObjectID][]models.Vote
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		issues:  make(map[primitive.ObjectID]models.Issue),
		users:   make(map[primitive.ObjectID]models.User),
		impacts: make(map[primitive.ObjectID]models.ImpactVector),
		votes:   make(map[primitive.ObjectID][]models.Vote),
	}
}

// PutUser seeds a user. Test helper; the engine never creates users.
func (m *Memory) PutUser(user models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *Memory) InsertIssue(_ context.Context, issue *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues[issue.ID] = *issue
	return nil
}

func (m *Memory) GetIssue(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return nil, &lifecycle.NotFoundError{Resource: "issue"}
	}
	return &issue, nil
}

func (m *Memory) TransitionIssue(_ context.Context, id primitive.ObjectID, expected, target models.IssueStatus, update lifecycle.IssueUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok || issue.Status != expected {
		return false, nil
	}
	issue.Status = target
	issue.UpdatedAt = update.UpdatedAt
	if update.AssignedTo != nil {
		issue.AssignedTo = update.AssignedTo
	}
	if update.CompletionImageURL != nil {
		issue.CompletionImageURL = update.CompletionImageURL
	}
	m.issues[id] = issue
	return true, nil
}

func (m *Memory) PurgeIssue(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.issues, id)
	delete(m.impacts, id)
	delete(m.votes, id)
	kept := m.audits[:0]
	for _, a := range m.audits {
		if a.IssueID != id {
			kept = append(kept, a)
		}
	}
	m.audits = kept
	return nil
}

func (m *Memory) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, &lifecycle.NotFoundError{Resource: "user"}
	}
	return &user, nil
}

func (m *Memory) IncrementPoints(_ context.Context, userID primitive.ObjectID, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return &lifecycle.NotFoundError{Resource: "user"}
	}
	user.Points += delta
	m.users[userID] = user
	return nil
}

func (m *Memory) FindAdmins(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var admins []models.User
	for _, u := range m.users {
		if u.Role == models.RoleAdmin {
			admins = append(admins, u)
		}
	}
	return admins, nil
}

func (m *Memory) AppendAudit(_ context.Context, entry models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	m.audits = append(m.audits, entry)
	return nil
}

func (m *Memory) AuditTrail(_ context.Context, issueID primitive.ObjectID) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var trail []models.AuditEntry
	for _, a := range m.audits {
		if a.IssueID == issueID {
			trail = append(trail, a)
		}
	}
	sort.SliceStable(trail, func(i, j int) bool {
		return trail[i].Timestamp.Before(trail[j].Timestamp)
	})
	return trail, nil
}

func (m *Memory) InsertImpact(_ context.Context, vector models.ImpactVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vector.ID = primitive.NewObjectID()
	m.impacts[vector.IssueID] = vector
	return nil
}

func (m *Memory) AddToAggregate(_ context.Context, vector models.ImpactVector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aggregate.Add(vector)
	return nil
}

func (m *Memory) GetAggregate(_ context.Context) (models.GlobalAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aggregate, nil
}

func (m *Memory) RecomputeAggregate(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var agg models.GlobalAggregate
	for _, v := range m.impacts {
		agg.Add(v)
	}
	m.aggregate = agg
	return nil
}

// ImpactVectors returns every persisted vector. Test helper.
func (m *Memory) ImpactVectors() []models.ImpactVector {
	m.mu.Lock()
	defer m.mu.Unlock()
	vectors := make([]models.ImpactVector, 0, len(m.impacts))
	for _, v := range m.impacts {
		vectors = append(vectors, v)
	}
	return vectors
}
