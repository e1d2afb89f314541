// Package domain provides core business rules for the campaigns bounded
// context: trigger matching and the cross-campaign value uniqueness guard.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rule routes one trigger value to a CRM pipeline/status transition.
type Rule struct {
	Value        string
	ToPipelineID int64
	ToStatusID   int64
}

// ExpireRule moves a stalled card after a number of days. It has no
// trigger value; it is driven by elapsed time, not by automation input.
type ExpireRule struct {
	Days         int
	ToPipelineID int64
	ToStatusID   int64
}

// Campaign is one configured automation campaign. A campaign fires only
// for cards currently sitting in its base pipeline/status column.
type Campaign struct {
	ID             uuid.UUID
	Name           string
	BasePipelineID int64
	BaseStatusID   int64
	V1             *Rule
	V2             *Rule
	Expire         *ExpireRule
	Active         bool
	CreatedAt      time.Time
}

// HasAnyRule reports whether the campaign can do anything at all. A
// record missing both variants and the expire rule is a configuration
// mistake and is treated as a no-op, never as an error.
func (c Campaign) HasAnyRule() bool {
	return c.V1 != nil || c.V2 != nil || c.Expire != nil
}

// NormalizeValue canonicalizes a trigger value for comparison. Matching
// and uniqueness are both case-insensitive and whitespace-insensitive.
func NormalizeValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
