package domain

// Trigger is one incoming automation trigger: the value sent by the
// messaging side plus the card's current CRM location.
type Trigger struct {
	PipelineID int64
	StatusID   int64
	Value      string
}

// Outcome classifies a match attempt. The two negative outcomes are
// expected, frequent conditions — "nothing to do", not failures.
type Outcome string

const (
	OutcomeMatched       Outcome = "matched"
	OutcomeScopeMismatch Outcome = "scope_mismatch"
	OutcomeNoRuleMatch   Outcome = "no_rule_match"
)

// MatchResult is the outcome of routing one trigger. Campaign and Rule
// are set only when Outcome is OutcomeMatched.
type MatchResult struct {
	Outcome  Outcome
	Campaign *Campaign
	Rule     *Rule
	RuleSlot string // "v1" or "v2"
}

// Match routes a trigger to at most one campaign rule. Campaigns are
// scanned in input order (creation order as persisted); within a
// campaign v1 is checked before v2. The matcher assumes the uniqueness
// guard already holds across active campaigns — it does not re-validate,
// so a violated invariant upstream is a configuration error here.
func Match(trigger Trigger, campaigns []Campaign) MatchResult {
	value := NormalizeValue(trigger.Value)

	scoped := false
	for i := range campaigns {
		campaign := &campaigns[i]
		if !campaign.Active || !campaign.HasAnyRule() {
			continue
		}
		if campaign.BasePipelineID != trigger.PipelineID || campaign.BaseStatusID != trigger.StatusID {
			continue
		}
		scoped = true

		if campaign.V1 != nil && NormalizeValue(campaign.V1.Value) == value {
			return MatchResult{Outcome: OutcomeMatched, Campaign: campaign, Rule: campaign.V1, RuleSlot: "v1"}
		}
		if campaign.V2 != nil && NormalizeValue(campaign.V2.Value) == value {
			return MatchResult{Outcome: OutcomeMatched, Campaign: campaign, Rule: campaign.V2, RuleSlot: "v2"}
		}
	}

	if !scoped {
		return MatchResult{Outcome: OutcomeScopeMismatch}
	}
	return MatchResult{Outcome: OutcomeNoRuleMatch}
}
