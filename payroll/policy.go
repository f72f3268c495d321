/*
policy.go - Access control and pause gating collaborators

PURPOSE:
  The engine does not own identity: admin rights are an injected predicate
  so a single-admin deployment is just the degenerate case of a role
  system. The pause gate is a single global on/off switch consulted at
  the entry of every mutating operation.
*/
package payroll

import "sync/atomic"

// =============================================================================
// ADMIN POLICY - Binary capability check
// =============================================================================

// AdminPolicy decides whether an actor may invoke admin-only operations.
type AdminPolicy interface {
	IsAdmin(actor string) bool
}

// AdminFunc adapts a plain predicate to AdminPolicy.
type AdminFunc func(actor string) bool

func (f AdminFunc) IsAdmin(actor string) bool { return f(actor) }

// SingleAdmin grants admin rights to exactly one identity.
func SingleAdmin(id string) AdminPolicy {
	return AdminFunc(func(actor string) bool { return actor != "" && actor == id })
}

// Admins grants admin rights to a fixed set of identities.
func Admins(ids ...string) AdminPolicy {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return AdminFunc(func(actor string) bool { return set[actor] })
}

// =============================================================================
// PAUSE GATE - Global mutation switch
// =============================================================================

// PauseGate is consulted before every mutating operation except
// pause/unpause themselves.
type PauseGate interface {
	IsPaused() bool
	Pause()
	Unpause()
}

// Gate is the default in-process pause switch. Mutations are serialized
// by the engine's guard, but IsPaused is also read lock-free from the
// query surface, so the flag itself is atomic.
type Gate struct {
	paused atomic.Bool
}

func NewGate() *Gate { return &Gate{} }

func (g *Gate) IsPaused() bool { return g.paused.Load() }
func (g *Gate) Pause()         { g.paused.Store(true) }
func (g *Gate) Unpause()       { g.paused.Store(false) }
