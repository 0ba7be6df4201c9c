// Package authctx holds the per-request authorization context: the tenant
// resolved from the request host and, once the bearer token is verified,
// the authenticated subject and role.
//
// The context moves through three states, strictly in order:
//
//	Unresolved → TenantResolved → Authenticated
//
// Each request gets exactly one context, owned by that request's handling
// path, so no locking is needed. Once Authenticated, the tenant id is
// locked and later stages cannot overwrite it.
package authctx

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// State of the request authorization context.
type State int

const (
	// Unresolved is the initial state, before tenant resolution runs.
	Unresolved State = iota
	// TenantResolved means the subdomain lookup is done; a tenant id may
	// or may not be present.
	TenantResolved
	// Authenticated means the bearer credential has been verified and
	// the subject attached. Terminal for the request's duration.
	Authenticated
)

var (
	// ErrInvalidTransition is returned when a stage runs out of order.
	ErrInvalidTransition = errors.New("authctx: invalid state transition")
	// ErrTenantLocked is returned when a stage attempts to change the
	// tenant id after authentication.
	ErrTenantLocked = errors.New("authctx: tenant id locked after authentication")
)

// Context is the per-request authorization state.
type Context struct {
	state    State
	tenantID string
	subject  string
	role     string
	isAdmin  bool
}

// New creates a context in the Unresolved state.
func New() *Context {
	return &Context{state: Unresolved}
}

// State returns the current state.
func (c *Context) State() State {
	return c.state
}

// ResolveTenant records the tenant id derived from the request host.
// An empty id means no tenant (global/admin scope). The transition is
// only valid from Unresolved.
func (c *Context) ResolveTenant(tenantID string) error {
	if c.state != Unresolved {
		return ErrInvalidTransition
	}
	c.tenantID = tenantID
	c.state = TenantResolved
	return nil
}

// Authenticate attaches the verified subject and role. Only valid from
// TenantResolved, and only once.
func (c *Context) Authenticate(subject, role string, isAdmin bool) error {
	if c.state != TenantResolved {
		return ErrInvalidTransition
	}
	c.subject = subject
	c.role = role
	c.isAdmin = isAdmin
	c.state = Authenticated
	return nil
}

// TenantID returns the resolved tenant id. The second return is false
// when no tenant was resolved for the request.
func (c *Context) TenantID() (string, bool) {
	if c.state == Unresolved || c.tenantID == "" {
		return "", false
	}
	return c.tenantID, true
}

// Subject returns the authenticated subject. The second return is false
// before credential verification has run.
func (c *Context) Subject() (string, bool) {
	if c.state != Authenticated {
		return "", false
	}
	return c.subject, true
}

// Role returns the authenticated role, or "" before authentication.
func (c *Context) Role() string {
	if c.state != Authenticated {
		return ""
	}
	return c.role
}

// IsAdmin reports whether the authenticated subject has the admin
// super-scope. Always false before authentication.
func (c *Context) IsAdmin() bool {
	return c.state == Authenticated && c.isAdmin
}

// contextKey is the echo context key the authorization context lives under.
const contextKey = "authctx"

// Attach stores the context on the echo request context.
func Attach(c echo.Context, ac *Context) {
	c.Set(contextKey, ac)
}

// FromEcho returns the request's authorization context, creating and
// attaching a fresh one if no resolver has run yet.
func FromEcho(c echo.Context) *Context {
	if ac, ok := c.Get(contextKey).(*Context); ok {
		return ac
	}
	ac := New()
	Attach(c, ac)
	return ac
}
