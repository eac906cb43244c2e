package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditEntry is one record in an issue's append-only history.
// Entries are never updated or deleted except by an administrative purge
// of the whole issue.
type AuditEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID     primitive.ObjectID `bson:"issueId" json:"issueId"`
	Action      string             `bson:"action" json:"action"`
	PerformedBy primitive.ObjectID `bson:"performedBy" json:"performedBy"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}
