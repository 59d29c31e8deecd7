// Package repository implements data access over MySQL. Sentinel error
// values defined here are shared across repositories so that handlers can
// distinguish failure scenarios. For example, ErrForbidden indicates that
// the current user tried to touch a calendar event owned by someone else,
// while ErrConflict signals that a write collided with existing state.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an HTTP
// 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state, such as a duplicate unique key. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
