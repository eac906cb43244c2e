package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	WaterLeakage         IssueCategory = "Water Leakage"
	GarbageDump          IssueCategory = "Garbage Dump"
	Pothole              IssueCategory = "Pothole"
	BrokenStreetlight    IssueCategory = "Broken Streetlight"
	TrafficSignalFailure IssueCategory = "Traffic Signal Failure"
	OtherCategory        IssueCategory = "Other"
)

// ValidCategory reports whether c names a known category
func ValidCategory(c string) bool {
	switch IssueCategory(c) {
	case WaterLeakage, GarbageDump, Pothole, BrokenStreetlight, TrafficSignalFailure, OtherCategory:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Reported   IssueStatus = "REPORTED"
	Verified   IssueStatus = "VERIFIED"
	Assigned   IssueStatus = "ASSIGNED"
	InProgress IssueStatus = "IN_PROGRESS"
	Resolved   IssueStatus = "RESOLVED"
	Closed     IssueStatus = "CLOSED"
)

// ValidStatus reports whether s names a known lifecycle status
func ValidStatus(s string) bool {
	switch IssueStatus(s) {
	case Reported, Verified, Assigned, InProgress, Resolved, Closed:
		return true
	}
	return false
}

// Location is a geographic point attached to an issue
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title              string              `bson:"title" json:"title"`
	Description        string              `bson:"description" json:"description"`
	Category           IssueCategory       `bson:"category" json:"category"`
	Location           Location            `bson:"location" json:"location"`
	ImageURL           *string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CompletionImageURL *string             `bson:"completionImageUrl,omitempty" json:"completionImageUrl,omitempty"`
	SDGTags            []int               `bson:"sdgTags" json:"sdgTags"`
	ImpactType         string              `bson:"impactType,omitempty" json:"impactType,omitempty"`
	Status             IssueStatus         `bson:"status" json:"status"`
	ReportedBy         primitive.ObjectID  `bson:"reportedBy" json:"reportedBy"`
	AssignedTo         *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	CreatedAt          time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// SDGMapping ties a category to the UN sustainable development goals it serves
type SDGMapping struct {
	SDGTags    []int
	ImpactType string
}

var sdgByCategory = map[IssueCategory]SDGMapping{
	WaterLeakage:         {SDGTags: []int{6}, ImpactType: "water"},
	GarbageDump:          {SDGTags: []int{11, 13}, ImpactType: "waste"},
	BrokenStreetlight:    {SDGTags: []int{5, 11}, ImpactType: "safety"},
	Pothole:              {SDGTags: []int{11}, ImpactType: "emission"},
	TrafficSignalFailure: {SDGTags: []int{13}, ImpactType: "fuel"},
}

// MapCategoryToSDG returns the SDG mapping for a category, empty for unmapped ones
func MapCategoryToSDG(category IssueCategory) SDGMapping {
	if m, ok := sdgByCategory[category]; ok {
		return m
	}
	return SDGMapping{SDGTags: []int{}}
}
