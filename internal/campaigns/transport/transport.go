package transport

import "github.com/google/uuid"

// RuleRequest is one trigger-value routing rule.
type RuleRequest struct {
	Value        string `json:"value" validate:"required,notblank,max=100"`
	ToPipelineID int64  `json:"toPipelineId" validate:"required,gt=0"`
	ToStatusID   int64  `json:"toStatusId" validate:"required,gt=0"`
}

// ExpireRequest is the optional time-based rule; it carries no value.
type ExpireRequest struct {
	Days         int   `json:"days" validate:"required,gt=0,lte=365"`
	ToPipelineID int64 `json:"toPipelineId" validate:"required,gt=0"`
	ToStatusID   int64 `json:"toStatusId" validate:"required,gt=0"`
}

// CreateCampaignRequest contains data for creating a new campaign.
type CreateCampaignRequest struct {
	Name           string         `json:"name" validate:"required,notblank,max=100"`
	BasePipelineID int64          `json:"basePipelineId" validate:"required,gt=0"`
	BaseStatusID   int64          `json:"baseStatusId" validate:"required,gt=0"`
	V1             *RuleRequest   `json:"v1,omitempty"`
	V2             *RuleRequest   `json:"v2,omitempty"`
	Expire         *ExpireRequest `json:"expire,omitempty"`
	Active         bool           `json:"active"`
}

// UpdateCampaignRequest contains data for updating an existing campaign.
// The whole rule set is replaced; partial rule edits are not supported.
type UpdateCampaignRequest struct {
	Name           string         `json:"name" validate:"required,notblank,max=100"`
	BasePipelineID int64          `json:"basePipelineId" validate:"required,gt=0"`
	BaseStatusID   int64          `json:"baseStatusId" validate:"required,gt=0"`
	V1             *RuleRequest   `json:"v1,omitempty"`
	V2             *RuleRequest   `json:"v2,omitempty"`
	Expire         *ExpireRequest `json:"expire,omitempty"`
	Active         bool           `json:"active"`
}

// RuleResponse mirrors RuleRequest in API responses.
type RuleResponse struct {
	Value        string `json:"value"`
	ToPipelineID int64  `json:"toPipelineId"`
	ToStatusID   int64  `json:"toStatusId"`
}

// ExpireResponse mirrors ExpireRequest in API responses.
type ExpireResponse struct {
	Days         int   `json:"days"`
	ToPipelineID int64 `json:"toPipelineId"`
	ToStatusID   int64 `json:"toStatusId"`
}

// CampaignResponse represents a campaign in API responses.
type CampaignResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	BasePipelineID int64           `json:"basePipelineId"`
	BaseStatusID   int64           `json:"baseStatusId"`
	V1             *RuleResponse   `json:"v1,omitempty"`
	V2             *RuleResponse   `json:"v2,omitempty"`
	Expire         *ExpireResponse `json:"expire,omitempty"`
	Active         bool            `json:"active"`
	CreatedAt      string          `json:"createdAt"`
}

// CampaignListResponse wraps a list of campaigns.
type CampaignListResponse struct {
	Items []CampaignResponse `json:"items"`
	Total int                `json:"total"`
}

// TriggerRequest is one incoming automation trigger to route.
type TriggerRequest struct {
	PipelineID int64  `json:"pipelineId" validate:"required,gt=0"`
	StatusID   int64  `json:"statusId" validate:"required,gt=0"`
	Value      string `json:"value" validate:"required,min=1,max=100"`
}

// TriggerResponse is the routing outcome. Move is set only when a rule
// matched; Reason carries the typed no-match outcome otherwise.
type TriggerResponse struct {
	Outcome    string        `json:"outcome"`
	Reason     string        `json:"reason,omitempty"`
	CampaignID *uuid.UUID    `json:"campaignId,omitempty"`
	RuleSlot   string        `json:"ruleSlot,omitempty"`
	Move       *MoveResponse `json:"move,omitempty"`
}

// MoveResponse is the CRM transition the caller should perform.
type MoveResponse struct {
	ToPipelineID int64 `json:"toPipelineId"`
	ToStatusID   int64 `json:"toStatusId"`
}

// ConflictDetails describes a uniqueness violation in a 409 response.
type ConflictDetails struct {
	CampaignID   uuid.UUID `json:"campaignId"`
	CampaignName string    `json:"campaignName"`
	Slot         string    `json:"slot"`
	Value        string    `json:"value"`
}
