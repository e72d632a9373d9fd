package game

import "errors"

var (
	// ErrMalformedGrid is returned when walkable-mask resource data cannot be decoded.
	ErrMalformedGrid = errors.New("malformed walkable grid")
	// ErrUnknownHotspot is returned for a hotspot id with no active entity or template.
	ErrUnknownHotspot = errors.New("unknown hotspot")
	// ErrUnknownRoom is returned for a room id with no room record.
	ErrUnknownRoom = errors.New("unknown room")
	// ErrStaleHandle is returned when a handle refers to a deactivated slot.
	ErrStaleHandle = errors.New("stale hotspot handle")
	// ErrMalformedSurface is returned when raw surface bytes cannot be converted.
	ErrMalformedSurface = errors.New("malformed surface data")
)
