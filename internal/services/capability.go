package services

import (
	"github.com/smartbuilders/bautrack-backend/internal/apierr"
	"github.com/smartbuilders/bautrack-backend/internal/types"
)

// RequireCapability is the single role check used by every operation; no
// handler or service compares role strings inline.
func RequireCapability(actor types.Actor, c types.Capability) error {
	if actor.Can(c) {
		return nil
	}
	return apierr.Forbidden("role %s lacks capability %s", actor.Role, c)
}
