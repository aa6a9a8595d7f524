// Package session provides the session registry for tic-tac-toe matches.
//
// The session package implements:
//   - Session creation with collision-checked random ids
//   - Seat assignment (X for the creator, the free symbol for the joiner)
//   - Join validation in a fixed order
//   - Renormalization when a two-player session loses a player
//   - The bounded chat log
//   - The public lobby projection
//
// Core Types:
//
// Registry owns every live Session and is the only code that mutates one.
// Methods return Session values that are deep copies, so callers can
// serialize them without holding any lock. Player.ConnectionID is a plain
// identifier; resolving it to a live connection is the router's job.
//
// Session Identifiers:
//
// Sessions use 8-character tokens cut from a random UUID. The registry
// checks every candidate against the live set and draws again on
// collision; an id is never reused while its session exists.
//
// Lifecycle:
//
//	waiting  --join (2nd player)-->  playing  --winning/drawing move-->  finished
//	   ^                                |                                    |
//	   +------------- leave (1 player remains) ------------------------------+
//
// Restart sets the status to playing from any state without looking at
// the player count. A session whose last player leaves is destroyed.
//
// Concurrency:
//
// Mutations are intended to come from one dispatch goroutine. The registry
// still guards its map with a sync.RWMutex so that health checks and lobby
// reads from other goroutines never observe a half-applied change.
//
// Usage:
//
//	reg := session.NewRegistry(logger)
//
//	sess, err := reg.Create(connID, "alice", "")
//	if err != nil {
//		return err
//	}
//
//	sess, err = reg.Join(sess.ID, otherConnID, "bob", "")
package session
