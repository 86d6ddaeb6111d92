package exception

import "errors"

// ErrRecordNotFound custom database error for failure to find record
var ErrRecordNotFound = errors.New("record not found")

// ErrNotSSDP returned when a datagram is neither a search response nor a
// NOTIFY announcement
var ErrNotSSDP = errors.New("not an ssdp message")

// ErrNoAVTransport returned when a device description advertises no
// AVTransport service
var ErrNoAVTransport = errors.New("no AVTransport service found")

// ErrNotPlayable returned when playback is requested for a device whose
// control endpoint was never resolved
var ErrNotPlayable = errors.New("device has no resolved control endpoint")
