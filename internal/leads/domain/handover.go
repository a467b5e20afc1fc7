package domain

import "strings"

// Lead-facing handover vocabulary.
const (
	HandoverPending   = "pending"
	HandoverInProcess = "in process"
	HandoverCompleted = "completed"
	HandoverRejected  = "rejected"
	HandoverUnknown   = "unknown"
)

// Handover sheet statuses as stored by the handover workflow.
const (
	SheetDraft     = "draft"
	SheetSubmitted = "submitted"
	SheetRejected  = "Rejected"
	SheetApproved  = "Approved"
)

var handoverStatusMap = map[string]string{
	strings.ToLower(SheetDraft):     HandoverInProcess,
	strings.ToLower(SheetSubmitted): HandoverCompleted,
	strings.ToLower(SheetRejected):  HandoverRejected,
	strings.ToLower(SheetApproved):  HandoverCompleted,
}

// ClassifyHandover maps a sheet status to the lead-facing vocabulary.
// exists=false means no sheet was found, which is always "pending".
func ClassifyHandover(sheetStatus string, exists bool) string {
	if !exists {
		return HandoverPending
	}
	if mapped, ok := handoverStatusMap[strings.ToLower(strings.TrimSpace(sheetStatus))]; ok {
		return mapped
	}
	return HandoverUnknown
}
