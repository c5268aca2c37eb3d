package models

import "time"

type ProposalStatus string

const (
	ProposalStatusProposed            ProposalStatus = "proposed"
	ProposalStatusAccepted            ProposalStatus = "accepted"
	ProposalStatusAlternativeProposed ProposalStatus = "alternative_proposed"
	ProposalStatusExpired             ProposalStatus = "expired"
)

// ScheduleProposal is one participant's offer of a play time for a match.
// At most one non-terminal proposal exists per match; a newer proposal or
// alternative supersedes the working one instead of stacking next to it.
type ScheduleProposal struct {
	ID              string         `json:"id"`
	MatchID         int            `json:"match_id"`
	ProposerID      int            `json:"proposer_id"`
	ProposedTime    time.Time      `json:"proposed_time"`
	Status          ProposalStatus `json:"status"`
	AlternativeTime *time.Time     `json:"alternative_time,omitempty"`
	Message         *string        `json:"message,omitempty"`
	ResponseMessage *string        `json:"response_message,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Terminal reports whether the proposal can no longer change.
func (p *ScheduleProposal) Terminal() bool {
	return p.Status == ProposalStatusAccepted || p.Status == ProposalStatusExpired
}
