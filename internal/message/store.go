// Package message is the read-only port onto the external message/template
// store. The orchestration core only resolves a message reference to its
// content; authoring and versioning live elsewhere.
package message

import "context"

// Message is the resolved content behind a message reference.
type Message struct {
	Ref     string
	Subject string
	Body    string
}

// Store resolves message references. Unknown refs return
// sentinel.ErrNotFound.
type Store interface {
	Find(ctx context.Context, ref string) (*Message, error)
}
