package users

import (
	"time"

	"github.com/sgdl/go-sgdl-client/internal/utils"
)

// Perfil represents a user's profile (role) within the SGDL system.
type Perfil string

const (
	PerfilVereador   Perfil = "VEREADOR"   // Councillor: authors demandas
	PerfilProtocolo  Perfil = "PROTOCOLO"  // Protocol office: registers and dispatches demandas
	PerfilSecretaria Perfil = "SECRETARIA" // Department staff: executes dispatched demandas
	PerfilGestor     Perfil = "GESTOR"     // Manager: read access to reports and dashboards
)

// Secretaria is a municipal department a demanda can be routed to.
type Secretaria struct {
	ID   int64  `json:"id,omitempty"`
	Nome string `json:"nome,omitempty"`
}

// User is the backend-owned profile record. The client only ever holds a
// cached copy; the backend remains the source of truth.
type User struct {
	ID         int64       `json:"id,omitempty"`          // Unique identifier for the user
	Username   string      `json:"username,omitempty"`    // Unique username
	Email      string      `json:"email,omitempty"`       // User's email address
	FirstName  string      `json:"first_name,omitempty"`  // First name of the user
	LastName   string      `json:"last_name,omitempty"`   // Last name of the user
	Perfil     Perfil      `json:"perfil,omitempty"`      // Profile used for route-level authorization
	Secretaria *Secretaria `json:"secretaria,omitempty"`  // Department membership, only for SECRETARIA users
	Telefone   string      `json:"telefone,omitempty"`    // Contact phone
	AvatarURL  string      `json:"avatar,omitempty"`      // URL of the uploaded avatar, if any
	DateJoined time.Time   `json:"date_joined,omitempty"` // When the account was created
	LastLogin  time.Time   `json:"last_login,omitempty"`  // Last successful login
}

// HasPerfil reports whether the user's profile is one of the given set.
// An empty set means no restriction.
func (u *User) HasPerfil(perfis ...Perfil) bool {
	if len(perfis) == 0 {
		return true
	}
	if u == nil {
		return false
	}
	for _, p := range perfis {
		if u.Perfil == p {
			return true
		}
	}
	return false
}

// FullName returns the display name, falling back to the username when the
// name fields are empty.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// ProfileUpdate is a partial profile edit. Nil fields are left untouched.
type ProfileUpdate struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Telefone  *string `json:"telefone,omitempty"`
}

// Apply merges the update into a copy of the user and returns it.
func (p ProfileUpdate) Apply(u User) User {
	if p.Email != nil {
		u.Email = utils.Value(p.Email)
	}
	if p.FirstName != nil {
		u.FirstName = utils.Value(p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = utils.Value(p.LastName)
	}
	if p.Telefone != nil {
		u.Telefone = utils.Value(p.Telefone)
	}
	return u
}
