// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates the entity already has an operation in flight or was
// modified concurrently.
var ErrConflict = errors.New("conflict: another operation is pending for this entity")

// ErrValidation marks malformed input. It is reported back to the caller and
// never reaches a store.
var ErrValidation = errors.New("validation")

// ErrUnauthenticated indicates that no valid session accompanies a call that
// requires one.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrForbidden indicates the caller's role does not permit the operation.
var ErrForbidden = errors.New("forbidden")
