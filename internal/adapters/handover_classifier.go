package adapters

import (
	"context"
	"fmt"

	handoversvc "bd_pipeline_backend/internal/handover/service"
	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/ports"
)

// HandoverSheetReader is the part of the handover service the classifier needs.
type HandoverSheetReader interface {
	SheetStatuses(ctx context.Context, leadCodes []string) (map[string]string, error)
}

// HandoverClassifierAdapter implements ports.HandoverClassifier on top of
// the handover context's sheets.
type HandoverClassifierAdapter struct {
	sheets HandoverSheetReader
}

func NewHandoverClassifierAdapter(sheets HandoverSheetReader) *HandoverClassifierAdapter {
	return &HandoverClassifierAdapter{sheets: sheets}
}

func (a *HandoverClassifierAdapter) ClassifyLead(ctx context.Context, leadCode string) (string, error) {
	statuses, err := a.ClassifyLeads(ctx, []string{leadCode})
	if err != nil {
		return "", err
	}
	return statuses[leadCode], nil
}

func (a *HandoverClassifierAdapter) ClassifyLeads(ctx context.Context, leadCodes []string) (map[string]string, error) {
	out := make(map[string]string, len(leadCodes))
	if a == nil || a.sheets == nil {
		for _, code := range leadCodes {
			out[code] = domain.HandoverPending
		}
		return out, nil
	}

	sheets, err := a.sheets.SheetStatuses(ctx, leadCodes)
	if err != nil {
		return nil, fmt.Errorf("read handover sheets: %w", err)
	}
	for _, code := range leadCodes {
		status, exists := sheets[code]
		out[code] = domain.ClassifyHandover(status, exists)
	}
	return out, nil
}

var (
	_ ports.HandoverClassifier = (*HandoverClassifierAdapter)(nil)
	_ HandoverSheetReader      = (*handoversvc.Service)(nil)
)
