package domain

import (
	"testing"

	"github.com/google/uuid"
)

func campaign(name string, pipeline, status int64, v1, v2 *Rule) Campaign {
	return Campaign{
		ID:             uuid.New(),
		Name:           name,
		BasePipelineID: pipeline,
		BaseStatusID:   status,
		V1:             v1,
		V2:             v2,
		Active:         true,
	}
}

func rule(value string, toPipeline, toStatus int64) *Rule {
	return &Rule{Value: value, ToPipelineID: toPipeline, ToStatusID: toStatus}
}

func TestMatch_V1Hit(t *testing.T) {
	campaigns := []Campaign{
		campaign("spring promo", 10, 20, rule("yes", 11, 21), rule("no", 12, 22)),
	}

	result := Match(Trigger{PipelineID: 10, StatusID: 20, Value: "yes"}, campaigns)
	if result.Outcome != OutcomeMatched {
		t.Fatalf("outcome = %q, want matched", result.Outcome)
	}
	if result.RuleSlot != "v1" || result.Rule.ToPipelineID != 11 {
		t.Errorf("got slot %q move %d, want v1 -> 11", result.RuleSlot, result.Rule.ToPipelineID)
	}
}

func TestMatch_NormalizationIsCaseAndSpaceInsensitive(t *testing.T) {
	campaigns := []Campaign{
		campaign("spring promo", 10, 20, rule("  Yes  ", 11, 21), nil),
	}

	result := Match(Trigger{PipelineID: 10, StatusID: 20, Value: "yes"}, campaigns)
	if result.Outcome != OutcomeMatched {
		t.Errorf("outcome = %q, want matched after normalization", result.Outcome)
	}
}

func TestMatch_V1BeforeV2(t *testing.T) {
	// Pathological pre-guard data: the same value in v1 and v2. The
	// matcher must still deterministically report v1.
	campaigns := []Campaign{
		campaign("spring promo", 10, 20, rule("yes", 11, 21), rule("yes", 12, 22)),
	}

	result := Match(Trigger{PipelineID: 10, StatusID: 20, Value: "yes"}, campaigns)
	if result.RuleSlot != "v1" {
		t.Errorf("slot = %q, want v1 checked before v2", result.RuleSlot)
	}
}

func TestMatch_InputOrderAcrossCampaigns(t *testing.T) {
	first := campaign("first", 10, 20, rule("yes", 11, 21), nil)
	second := campaign("second", 10, 20, rule("yes", 12, 22), nil)

	result := Match(Trigger{PipelineID: 10, StatusID: 20, Value: "yes"}, []Campaign{first, second})
	if result.Outcome != OutcomeMatched || result.Campaign.Name != "first" {
		t.Errorf("got %+v, want the first campaign in input order", result.Campaign)
	}
}

func TestMatch_ScopeMismatch(t *testing.T) {
	campaigns := []Campaign{
		campaign("spring promo", 10, 20, rule("yes", 11, 21), nil),
	}

	cases := []Trigger{
		{PipelineID: 99, StatusID: 20, Value: "yes"},
		{PipelineID: 10, StatusID: 99, Value: "yes"},
	}
	for _, trigger := range cases {
		result := Match(trigger, campaigns)
		if result.Outcome != OutcomeScopeMismatch {
			t.Errorf("Match(%+v) outcome = %q, want scope_mismatch", trigger, result.Outcome)
		}
	}
}

func TestMatch_NoRuleMatch(t *testing.T) {
	campaigns := []Campaign{
		campaign("spring promo", 10, 20, rule("yes", 11, 21), nil),
	}

	result := Match(Trigger{PipelineID: 10, StatusID: 20, Value: "maybe"}, campaigns)
	if result.Outcome != OutcomeNoRuleMatch {
		t.Errorf("outcome = %q, want no_rule_match", result.Outcome)
	}
}

func TestMatch_InactiveAndRulelessCampaignsAreInvisible(t *testing.T) {
	inactive := campaign("inactive", 10, 20, rule("yes", 11, 21), nil)
	inactive.Active = false
	ruleless := campaign("ruleless", 10, 20, nil, nil)

	result := Match(Trigger{PipelineID: 10, StatusID: 20, Value: "yes"}, []Campaign{inactive, ruleless})
	// Neither campaign scopes the trigger, so the outcome is a scope
	// mismatch, not a value miss.
	if result.Outcome != OutcomeScopeMismatch {
		t.Errorf("outcome = %q, want scope_mismatch", result.Outcome)
	}
}
