// Package service reads handover sheets and creates them for won leads.
package service

import (
	"context"
	"strings"
	"time"

	"bd_pipeline_backend/internal/handover/repository"
	"bd_pipeline_backend/platform/logger"
)

type Service struct {
	store repository.Store
	log   *logger.Logger
	now   func() time.Time
}

func New(store repository.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// SheetStatuses looks up sheets by trimmed lead code. The result is keyed
// by the codes as given.
func (s *Service) SheetStatuses(ctx context.Context, leadCodes []string) (map[string]string, error) {
	trimmed := make([]string, 0, len(leadCodes))
	for _, code := range leadCodes {
		if code = strings.TrimSpace(code); code != "" {
			trimmed = append(trimmed, code)
		}
	}

	found, err := s.store.SheetStatuses(ctx, trimmed)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(found))
	for _, code := range leadCodes {
		if status, ok := found[strings.TrimSpace(code)]; ok {
			out[code] = status
		}
	}
	return out, nil
}

// SyncWonLead creates the draft sheet of a won lead. Safe to repeat.
func (s *Service) SyncWonLead(ctx context.Context, leadCode string) error {
	leadCode = strings.TrimSpace(leadCode)
	created, err := s.store.EnsureDraft(ctx, leadCode, s.now().UTC())
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("ensure_handover_draft", err)
		return err
	}
	if created {
		s.log.PipelineEvent("handover_draft_created", leadCode, "")
	}
	return nil
}
