package dto

import "time"

type IssueOverrideRequest struct {
	Purpose       string  `json:"purpose" validate:"required,oneof=open_session close_session reopen_session cash_movement"`
	Justification *string `json:"justification"`
}

// IssueOverrideResponse carries the plaintext code exactly once; it cannot be
// retrieved again.
type IssueOverrideResponse struct {
	Code      string    `json:"code"`
	Purpose   string    `json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
}
