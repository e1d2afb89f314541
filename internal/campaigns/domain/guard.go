package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Conflict describes a trigger value already claimed by another campaign
// (or by the other variant of the same candidate).
type Conflict struct {
	CampaignID   uuid.UUID
	CampaignName string
	Slot         string // which slot of the existing campaign holds the value
	Value        string
	Reason       string
}

// CheckUnique enforces global trigger-value uniqueness: across all active
// campaigns, and across the candidate's own v1/v2, no two values may be
// equal after normalization. Cross-field collisions count — a new v1
// conflicts with an existing v2. excludeID skips the campaign being
// edited. The guard is advisory: the storage layer must call it
// synchronously inside the same write path, before persisting.
func CheckUnique(newV1, newV2 *string, excludeID uuid.UUID, existing []Campaign) *Conflict {
	v1 := normalizeCandidate(newV1)
	v2 := normalizeCandidate(newV2)

	if v1 != "" && v1 == v2 {
		return &Conflict{
			Value:  v1,
			Reason: "v1 and v2 of the same campaign carry the same trigger value",
		}
	}

	for i := range existing {
		campaign := &existing[i]
		if campaign.ID == excludeID || !campaign.Active {
			continue
		}
		for _, candidate := range []string{v1, v2} {
			if candidate == "" {
				continue
			}
			if slot := claimedSlot(campaign, candidate); slot != "" {
				return &Conflict{
					CampaignID:   campaign.ID,
					CampaignName: campaign.Name,
					Slot:         slot,
					Value:        candidate,
					Reason:       fmt.Sprintf("trigger value %q is already used by campaign %q (%s)", candidate, campaign.Name, slot),
				}
			}
		}
	}

	return nil
}

func normalizeCandidate(value *string) string {
	if value == nil {
		return ""
	}
	return NormalizeValue(*value)
}

func claimedSlot(campaign *Campaign, normalized string) string {
	if campaign.V1 != nil && NormalizeValue(campaign.V1.Value) == normalized {
		return "v1"
	}
	if campaign.V2 != nil && NormalizeValue(campaign.V2.Value) == normalized {
		return "v2"
	}
	return ""
}
