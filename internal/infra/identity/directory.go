package identity

import (
	"context"
	"sync"

	"campusnest/internal/app/policies"
)

// Role partitions the user base for authorization decisions.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

// Principal is the authenticated caller as the HTTP layer sees it.
type Principal struct {
	UserID string
	Role   Role
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Directory is an in-memory stand-in for the campus identity service. It
// resolves bearer tokens to principals and answers existence checks for the
// booking core.
type Directory struct {
	mu       sync.RWMutex
	byToken  map[string]Principal
	byUserID map[string]Principal
}

var _ policies.IdentityPort = (*Directory)(nil)

func NewDirectory() *Directory {
	return &Directory{
		byToken:  make(map[string]Principal),
		byUserID: make(map[string]Principal),
	}
}

// Register binds a token to a principal, replacing any previous binding for
// the same user.
func (d *Directory) Register(token string, p Principal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byToken[token] = p
	d.byUserID[p.UserID] = p
}

func (d *Directory) Resolve(token string) (Principal, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byToken[token]
	return p, ok
}

func (d *Directory) UserExists(ctx context.Context, userID string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.byUserID[userID]
	return ok, nil
}
