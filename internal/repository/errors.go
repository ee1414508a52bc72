// Package repository holds the persistence layer. Sentinel errors defined
// here let handlers distinguish failure modes without inspecting driver
// errors: "no seats" maps to 409, "already joined" to 409 with a different
// body, "not found" to 404.
package repository

import "errors"

var (
	// ErrSeatsExhausted is returned when a join loses the seat race: the
	// conditional decrement matched no row because seats_left was zero.
	ErrSeatsExhausted = errors.New("no seats left")

	// ErrAlreadyJoined is returned when the (ride, user) unique pair already
	// exists.
	ErrAlreadyJoined = errors.New("user already joined this ride")

	ErrRideNotFound  = errors.New("ride not found")
	ErrRideNotActive = errors.New("ride is not active")

	// ErrUnknownSession is returned when no payment row exists for a
	// checkout session id. Settlement must not fabricate state for it.
	ErrUnknownSession = errors.New("unknown checkout session")
)
