package directory

import (
	"context"
	"errors"
	"time"
)

// DefaultResolveTimeout bounds a resolution when the caller supplies none.
const DefaultResolveTimeout = 5 * time.Second

var (
	// ErrCodeNotFound is returned when no party answered before the timeout.
	ErrCodeNotFound = errors.New("linking code not found")

	// ErrSelfLink is returned when a code resolves to the local identity.
	ErrSelfLink = errors.New("cannot link to self")

	// ErrClosed is returned by Resolve after Close.
	ErrClosed = errors.New("directory closed")
)

// Result is a successful resolution.
type Result struct {
	Code        string
	PublicKey   string
	DisplayName string
}

// Directory maps a linking code to the identity that currently owns it.
type Directory interface {
	Resolve(ctx context.Context, code string) (Result, error)
}

// Self is the view of the local identity the resolver needs to answer
// queries and reject self links. identity.Manager implements it.
type Self interface {
	PublicKey() string
	DisplayName() string
	CurrentCode() string
}
