package dto

// ── 人工补录模块 DTO ──

// StaleShiftResponse 跨日未关闭的入场
type StaleShiftResponse struct {
	CollaboratorID   string `json:"collaborator_id"`
	CollaboratorName string `json:"collaborator_name"`
	EntryID          string `json:"entry_id"`
	EntryAt          string `json:"entry_at"`
	StaleDate        string `json:"stale_date"`
	SuggestedExit    string `json:"suggested_exit"`
}

// CloseStaleShiftRequest 补录出场
type CloseStaleShiftRequest struct {
	CollaboratorID string `json:"collaborator_id" binding:"required,uuid"`
	ExitAt         string `json:"exit_at"         binding:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Note           string `json:"note"            binding:"omitempty,max=500"`
}
