package relay

import "errors"

var (
	// ErrMalformedFrame marks an inbound frame that failed validation.
	// The relay drops these without answering — the connection stays
	// open and the peer is told nothing.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrEndpointClosed is returned by Send on an endpoint whose
	// transport has already terminated.
	ErrEndpointClosed = errors.New("endpoint closed")

	// ErrSendBufferFull is returned by Send when a recipient's outbound
	// buffer is saturated. The frame is dropped for that recipient only.
	ErrSendBufferFull = errors.New("send buffer full")
)
