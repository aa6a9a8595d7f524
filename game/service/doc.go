// Package service turns inbound client events into session mutations and
// the messages that report them.
//
// The package implements:
//   - Event routing (create, join, move, chat, restart, list, leave)
//   - Payload decoding and required-field validation
//   - Mapping of domain failures onto wire error codes
//   - Recipient resolution for connection, room and broadcast scopes
//   - Lobby list derivation
//
// Core Interfaces:
//
// GameService is what a transport drives: Connect, Disconnect and Handle.
// SessionStore is the session registry the Dispatcher mutates through.
//
// Architecture:
//
// The service layer sits between the transport (WebSocket hub) and the
// session registry. It performs no I/O. Every call returns a slice of
// Outbound values in delivery order; the transport writes them. Calls must
// be serialized by the caller, which makes each event atomic with respect
// to every other event.
//
// Usage:
//
//	reg := session.NewRegistry(logger)
//	svc := service.NewDispatcher(reg, router.New(), logger)
//
//	outs := svc.Connect("c1")
//	outs = svc.Handle("c1", service.EventCreateSession, []byte(`{"player_name":"Alice"}`))
//	for _, out := range outs {
//		deliver(out)
//	}
//
// Errors:
//
// A rejected request produces exactly one "error" Outbound addressed to the
// requester, carrying a Code and a human-readable message. Nothing is
// mutated and nobody else is notified.
package service
