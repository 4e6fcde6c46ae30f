package models

import "time"

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// User is the identity record. PasswordHash is nil for federated-only
// accounts; GoogleID is nil until a Google identity has been linked.
type User struct {
	ID           string
	Email        string // stored lowercase
	PasswordHash []byte
	GoogleID     *string
	DisplayName  string
	Status       UserStatus
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) Active() bool {
	return u.Status == UserStatusActive
}

// Role is a named bundle of permission grants, owned by the admin tooling and
// read-only from this subsystem. Grants is keyed by resource name.
type Role struct {
	ID     string
	Name   string
	Grants map[string]Capability
}

// Capability holds the per-resource flags a role grants.
type Capability struct {
	View   bool `json:"view"`
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}
