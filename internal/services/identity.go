package services

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/AnshRaj112/nits-community-backend/pkg/utils"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// IdentityGate trusts the caller-supplied label as the identity. There is no
// signature, session or expiry: anyone may claim any non-admin name, and the
// label that equals the admin username carries admin rights on delete.
type IdentityGate struct {
	adminUsername string
	adminPassword string
}

func NewIdentityGate(adminUsername, adminPassword string) *IdentityGate {
	return &IdentityGate{
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

// Authenticate returns the trimmed label, or ErrUnauthorized when it is blank.
func (g *IdentityGate) Authenticate(label string) (string, error) {
	identity := strings.TrimSpace(label)
	if identity == "" {
		return "", ErrUnauthorized
	}
	return identity, nil
}

// Login grants the admin role only for the configured credentials; any other
// non-empty username logs in as a regular user. It issues no token: clients
// send the username itself as the Authorization label afterwards.
func (g *IdentityGate) Login(username, password string) (string, string, error) {
	if strings.TrimSpace(username) == "" {
		return "", "", ErrUsernameRequired
	}
	if username == g.adminUsername && g.checkAdminPassword(password) {
		return username, RoleAdmin, nil
	}
	return username, RoleUser, nil
}

// IsAdmin reports whether identity is the configured administrator.
func (g *IdentityGate) IsAdmin(identity string) bool {
	return g.adminUsername != "" && identity == g.adminUsername
}

func (g *IdentityGate) checkAdminPassword(password string) bool {
	if g.adminPassword == "" {
		return false
	}
	if utils.IsPasswordHash(g.adminPassword) {
		ok, err := utils.VerifyPassword(password, g.adminPassword)
		if err != nil {
			slog.Error("ADMIN_PASSWORD hash is malformed", "error", err)
			return false
		}
		return ok
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(g.adminPassword)) == 1
}
