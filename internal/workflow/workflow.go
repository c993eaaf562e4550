// Package workflow encodes the approval chain as an enumerable transition
// table over (status, action, actor tier). The coordinator consults it for
// every mutation after submission; nothing else changes application status.
package workflow

import "github.com/mafirs/campus-reserve/internal/domain"

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

// Effect is the inventory side effect paired with a transition.
type Effect int

const (
	// EffectNone keeps reserved inventory in place.
	EffectNone Effect = iota
	// EffectRelease returns every line item's reserved quantity to stock.
	EffectRelease
)

// Tier is the authority required to perform a transition.
type Tier int

const (
	// TierReviewer admits reviewers and admins.
	TierReviewer Tier = iota
	// TierAdmin admits admins only.
	TierAdmin
	// TierOwner admits the requester themselves and admins.
	TierOwner
)

// Rule is one legal transition.
type Rule struct {
	Next   domain.ApplicationStatus
	Effect Effect
	Tier   Tier
}

type key struct {
	from   domain.ApplicationStatus
	action Action
}

var transitions = map[key]Rule{
	{domain.StatusPendingReviewer, ActionApprove}: {Next: domain.StatusPendingAdmin, Effect: EffectNone, Tier: TierReviewer},
	{domain.StatusPendingReviewer, ActionReject}:  {Next: domain.StatusRejected, Effect: EffectRelease, Tier: TierReviewer},
	{domain.StatusPendingReviewer, ActionCancel}:  {Next: domain.StatusCancelled, Effect: EffectRelease, Tier: TierOwner},
	{domain.StatusPendingAdmin, ActionApprove}:    {Next: domain.StatusApproved, Effect: EffectNone, Tier: TierAdmin},
	{domain.StatusPendingAdmin, ActionReject}:     {Next: domain.StatusRejected, Effect: EffectRelease, Tier: TierAdmin},
	{domain.StatusPendingAdmin, ActionCancel}:     {Next: domain.StatusCancelled, Effect: EffectRelease, Tier: TierOwner},
	{domain.StatusApproved, ActionCancel}:         {Next: domain.StatusCancelled, Effect: EffectRelease, Tier: TierOwner},
}

// InitialStatus returns the role-determined status for a new application.
// Privileged submitters skip the reviewer tier.
func InitialStatus(role domain.Role) domain.ApplicationStatus {
	if role.Privileged() {
		return domain.StatusPendingAdmin
	}
	return domain.StatusPendingReviewer
}

// Step resolves the transition for action on app by the given actor. It
// returns InvalidStateTransitionError when no rule exists for the current
// status and ErrPermissionDenied when a rule exists but the actor's
// authority falls below its tier.
func Step(app domain.Application, actorID string, role domain.Role, action Action) (Rule, error) {
	if !role.Valid() {
		return Rule{}, domain.ErrInvalidRole
	}

	rule, ok := transitions[key{app.Status, action}]
	if !ok {
		return Rule{}, &domain.InvalidStateTransitionError{Status: app.Status, Action: string(action)}
	}

	if !allowed(rule.Tier, app, actorID, role) {
		return Rule{}, domain.ErrPermissionDenied
	}
	return rule, nil
}

func allowed(tier Tier, app domain.Application, actorID string, role domain.Role) bool {
	switch tier {
	case TierReviewer:
		return role == domain.RoleReviewer || role == domain.RoleAdmin
	case TierAdmin:
		return role == domain.RoleAdmin
	case TierOwner:
		return actorID == app.RequesterID || role == domain.RoleAdmin
	}
	return false
}

// Statuses enumerates the full status set; Actions the full action set.
// They exist so tests can prove the table is closed over them.
func Statuses() []domain.ApplicationStatus {
	return []domain.ApplicationStatus{
		domain.StatusPendingReviewer,
		domain.StatusPendingAdmin,
		domain.StatusApproved,
		domain.StatusRejected,
		domain.StatusCancelled,
	}
}

func Actions() []Action {
	return []Action{ActionApprove, ActionReject, ActionCancel}
}
