package service

import (
	"strings"

	"fleetledger/internal/domain"
)

// EdgeCaseClassifier assigns each candidate trip one EdgeCase category before
// validation runs. Rules are evaluated in priority order and the first match
// wins; downstream validators receive the enum and never re-match strings.
type EdgeCaseClassifier struct{}

// NewEdgeCaseClassifier creates a new EdgeCaseClassifier.
func NewEdgeCaseClassifier() *EdgeCaseClassifier {
	return &EdgeCaseClassifier{}
}

// edgeCaseRule binds keyword sets to a category. TypeWords match against the
// trip type tag, NoteWords against the free-text notes.
type edgeCaseRule struct {
	Case      domain.EdgeCase
	TypeWords []string
	NoteWords []string
	// NeedsFuel restricts the rule to trips with a recorded fuel event.
	NeedsFuel bool
}

// rules in priority order. Maintenance outranks test drive so a
// "maintenance test run" stays a maintenance trip, and the dedicated
// refueling-stop rule outranks long-haul so a short fuel stop tagged onto a
// long route keeps its fuel exemption.
var edgeCaseRules = []edgeCaseRule{
	{
		Case:      domain.EdgeCaseMaintenance,
		TypeWords: []string{"maintenance", "service", "repair", "workshop"},
		NoteWords: []string{"maintenance", "servicing", "workshop", "repair"},
	},
	{
		Case:      domain.EdgeCaseTestDrive,
		TypeWords: []string{"test", "test_drive", "test-drive"},
		NoteWords: []string{"test drive", "test run"},
	},
	{
		Case:      domain.EdgeCaseRefueling,
		TypeWords: []string{"refueling", "refuel", "fuel", "fuel_stop"},
		NoteWords: []string{"fuel stop", "refueling only", "fuel only"},
		NeedsFuel: true,
	},
	{
		Case:      domain.EdgeCaseLongHaul,
		TypeWords: []string{"long_haul", "longhaul", "long-haul"},
		NoteWords: []string{"long haul", "long-haul"},
	},
}

// Classify returns the edge-case category for a trip.
func (c *EdgeCaseClassifier) Classify(trip *domain.Trip) domain.EdgeCase {
	tripType := strings.ToLower(strings.TrimSpace(trip.TripType))
	notes := strings.ToLower(trip.Notes)

	for _, rule := range edgeCaseRules {
		if rule.NeedsFuel && !trip.IsRefueling() {
			continue
		}
		if matchWord(tripType, rule.TypeWords) || matchSubstring(notes, rule.NoteWords) {
			return rule.Case
		}
	}

	return domain.EdgeCaseNone
}

// matchWord checks the trip type tag against exact keywords.
func matchWord(tag string, words []string) bool {
	for _, w := range words {
		if tag == w {
			return true
		}
	}
	return false
}

// matchSubstring checks the notes for any of the keywords.
func matchSubstring(text string, words []string) bool {
	if text == "" {
		return false
	}
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
