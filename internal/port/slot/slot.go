// Package slot defines the durable named-blob port backing local mode.
//
// A slot holds one serialized collection. Implementations store the payload
// verbatim and never interpret it.
package slot

import "context"

// Well-known slot names.
const (
	Tasks     = "todos"
	Clients   = "clients"
	Employees = "employees"
)

// Store persists whole-collection blobs under fixed names.
type Store interface {
	// Load returns the payload saved under name. ok is false when nothing
	// has been saved yet.
	Load(ctx context.Context, name string) (payload []byte, ok bool, err error)

	// Save replaces the payload under name. It returns only once the write
	// is durable.
	Save(ctx context.Context, name string, payload []byte) error

	// Close releases the underlying resources.
	Close() error
}
