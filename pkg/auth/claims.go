package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/paclead/splitsettle/pkg/enums"
)

// Claims is the subset of the hosted auth backend's JWT the ledger API reads.
// organization_id is stamped by the backend for tenant users; service and
// admin tokens may omit it.
type Claims struct {
	Role           enums.ActorRole `json:"role"`
	Email          string          `json:"email,omitempty"`
	OrganizationID *uuid.UUID      `json:"organization_id,omitempty"`
	jwt.RegisteredClaims
}

// Subject returns the parsed sub claim, or uuid.Nil when it is not a UUID.
func (c *Claims) Subject() uuid.UUID {
	id, err := uuid.Parse(c.RegisteredClaims.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}
