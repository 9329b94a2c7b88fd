// Package idgen produces opaque record identifiers.
package idgen

import "github.com/google/uuid"

// Generator allocates identifiers that are unique for the lifetime of a collection.
type Generator interface {
	NewID() string
}

// UUID issues random (version 4) UUIDs.
type UUID struct{}

func (UUID) NewID() string { return uuid.NewString() }

// Func adapts a plain function to Generator.
type Func func() string

func (f Func) NewID() string { return f() }
