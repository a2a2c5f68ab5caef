package shared

import "github.com/google/uuid"

// ActorRole identifies the authority level of the caller
type ActorRole string

const (
	ActorRoleManager ActorRole = "MANAGER" // managing party (owner/agency) of properties
	ActorRoleAdmin   ActorRole = "ADMIN"
	ActorRoleSystem  ActorRole = "SYSTEM" // scheduled jobs, internal sweeps
)

// IsValid checks if the role is a known ActorRole
func (r ActorRole) IsValid() bool {
	switch r {
	case ActorRoleManager, ActorRoleAdmin, ActorRoleSystem:
		return true
	}
	return false
}

// Actor is the identity on whose behalf an operation runs.
// It is passed explicitly to every state-changing operation.
type Actor struct {
	UserID uuid.UUID
	Role   ActorRole
}

// NewActor creates an actor with the given identity and role
func NewActor(userID uuid.UUID, role ActorRole) Actor {
	return Actor{UserID: userID, Role: role}
}

// SystemActor returns the actor used by scheduled jobs
func SystemActor() Actor {
	return Actor{UserID: uuid.Nil, Role: ActorRoleSystem}
}

// IsAdmin returns true for administrators and internal system callers
func (a Actor) IsAdmin() bool {
	return a.Role == ActorRoleAdmin || a.Role == ActorRoleSystem
}

// CanManage returns true if the actor may operate on a resource owned by ownerID
func (a Actor) CanManage(ownerID uuid.UUID) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
