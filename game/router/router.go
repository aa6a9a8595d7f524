// Package router maps live connections to the session they play in.
//
// The Router is the connection-to-session index and, in reverse, the
// broadcast group of every session: Members(sessionID) lists the
// connections that should receive that session's events. It does not know
// what a session contains; the session registry remains the authority on
// membership and the dispatcher keeps the two in step.
//
// A Router is not safe for concurrent use. It is owned by the dispatch
// loop, which is the only goroutine that binds, unbinds or resolves.
package router

import (
	"sort"

	"github.com/samber/lo"
)

// Router is a 1:1 connection to session index with a reverse group lookup
type Router struct {
	byConn    map[string]string
	bySession map[string]map[string]struct{}
}

// New creates an empty router
func New() *Router {
	return &Router{
		byConn:    make(map[string]string),
		bySession: make(map[string]map[string]struct{}),
	}
}

// Bind records that connID plays in sessionID, replacing any earlier binding
func (r *Router) Bind(connID, sessionID string) {
	if prev, ok := r.byConn[connID]; ok {
		if prev == sessionID {
			return
		}
		r.removeMember(prev, connID)
	}
	r.byConn[connID] = sessionID
	if r.bySession[sessionID] == nil {
		r.bySession[sessionID] = make(map[string]struct{})
	}
	r.bySession[sessionID][connID] = struct{}{}
}

// Resolve returns the session connID is bound to
func (r *Router) Resolve(connID string) (string, bool) {
	sessionID, ok := r.byConn[connID]
	return sessionID, ok
}

// Unbind forgets connID. It must be called only after the registry has
// removed the connection's seat.
func (r *Router) Unbind(connID string) {
	sessionID, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)
	r.removeMember(sessionID, connID)
}

// Members returns the connections bound to sessionID in a stable order
func (r *Router) Members(sessionID string) []string {
	members := lo.Keys(r.bySession[sessionID])
	sort.Strings(members)
	return members
}

// Len returns the number of bound connections
func (r *Router) Len() int {
	return len(r.byConn)
}

func (r *Router) removeMember(sessionID, connID string) {
	group, ok := r.bySession[sessionID]
	if !ok {
		return
	}
	delete(group, connID)
	if len(group) == 0 {
		delete(r.bySession, sessionID)
	}
}
