package httpdto

// CreateChatRequest opens a chat. Kind selects the shape: DIRECT needs
// recipient_id, JOB needs job_id plus participants.
type CreateChatRequest struct {
	Kind         string   `json:"kind"`
	RecipientID  string   `json:"recipient_id,omitempty"`
	JobID        string   `json:"job_id,omitempty"`
	Participants []string `json:"participants,omitempty"`
}
