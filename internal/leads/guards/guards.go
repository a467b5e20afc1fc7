// Package guards enforces the cross-record invariants of the BD pipeline
// inside a store transaction: unique mobiles for ungrouped leads and the
// capacity ceiling of groups.
package guards

import (
	"context"
	"errors"
	"fmt"

	"bd_pipeline_backend/internal/leads/domain"
	"bd_pipeline_backend/internal/leads/repository"
	"bd_pipeline_backend/platform/apperr"
)

const (
	msgLeadNotFound  = "lead not found"
	msgGroupNotFound = "group not found"
)

// ResolveLeadID canonicalizes a client-supplied lead identifier.
func ResolveLeadID(raw string) (string, error) {
	code, err := domain.ResolveCode(domain.LeadPrefix, raw)
	if err != nil {
		return "", apperr.Validation(fmt.Sprintf("malformed lead identifier %q", raw))
	}
	return code, nil
}

// ResolveGroupID canonicalizes a client-supplied group identifier.
func ResolveGroupID(raw string) (string, error) {
	code, err := domain.ResolveCode(domain.GroupPrefix, raw)
	if err != nil {
		return "", apperr.Validation(fmt.Sprintf("malformed group identifier %q", raw))
	}
	return code, nil
}

// LeadNotFound maps repository.ErrNotFound to a 404 and passes other errors through.
func LeadNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound)
	}
	return err
}

// GroupNotFound maps repository.ErrNotFound to a 404 and passes other errors through.
func GroupNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgGroupNotFound)
	}
	return err
}

// CheckMobiles rejects mobiles already stored on any lead other than
// excludeCode. It takes the mobile index lock first, so the caller's
// following write cannot race another check.
func CheckMobiles(ctx context.Context, tx repository.TxStore, mobiles []string, excludeCode string) error {
	if err := tx.LockMobileIndex(ctx); err != nil {
		return err
	}
	existing, err := tx.FindLeadsByMobiles(ctx, mobiles, excludeCode)
	if err != nil {
		return err
	}
	for _, lead := range existing {
		if mobile, ok := domain.FirstOverlap(mobiles, lead.Mobiles); ok {
			return DuplicateMobile(mobile, lead.Code)
		}
	}
	return nil
}

// DuplicateMobile builds the conflict returned for a reused number.
func DuplicateMobile(mobile, existingCode string) *apperr.Error {
	return apperr.Conflict(apperr.CodeDuplicateMobile,
		fmt.Sprintf("mobile %s already exists on lead %s", mobile, existingCode)).
		WithDetails(map[string]string{"mobile": mobile, "existingLeadId": existingCode})
}

// ReserveCapacity locks the group row and checks that additional fits
// under its ceiling. excludeLeadCode leaves one member out of the committed
// sum, which is how a member's own capacity change is validated.
func ReserveCapacity(ctx context.Context, tx repository.TxStore, groupCode string, additional float64, excludeLeadCode string) (repository.Group, domain.CapacityCheck, error) {
	group, err := tx.GetGroupForUpdate(ctx, groupCode)
	if err != nil {
		return repository.Group{}, domain.CapacityCheck{}, GroupNotFound(err)
	}
	members, err := tx.GroupMemberCapacities(ctx, groupCode, excludeLeadCode)
	if err != nil {
		return repository.Group{}, domain.CapacityCheck{}, err
	}
	check := domain.CheckCapacity(group.CapacityCeiling, members, additional)
	if !check.OK {
		return group, check, CapacityExceeded(groupCode, check)
	}
	return group, check, nil
}

// CapacityExceeded builds the conflict returned when a ceiling would be broken.
func CapacityExceeded(groupCode string, check domain.CapacityCheck) *apperr.Error {
	return apperr.Conflict(apperr.CodeCapacityExceeded,
		fmt.Sprintf("group %s capacity exceeded: committed %s + requested %s > ceiling %s", groupCode,
			domain.FormatCapacity(check.Committed), domain.FormatCapacity(check.Requested), domain.FormatCapacity(check.Ceiling))).
		WithDetails(map[string]float64{
			"committed": check.Committed,
			"ceiling":   check.Ceiling,
			"requested": check.Requested,
		})
}

// AlreadyGrouped builds the conflict returned when a lead already has a group.
func AlreadyGrouped(leadCode, groupCode string) *apperr.Error {
	msg := fmt.Sprintf("lead %s already belongs to a group", leadCode)
	if groupCode != "" {
		msg = fmt.Sprintf("lead %s already belongs to group %s", leadCode, groupCode)
	}
	return apperr.Conflict(apperr.CodeAlreadyGrouped, msg)
}
