package viewer

import "errors"

var (
	// ErrUnknownViewType is returned when no constructor is registered for a tag.
	ErrUnknownViewType = errors.New("unknown view type")

	// ErrAlreadyRegistered is returned when a tag is registered twice.
	ErrAlreadyRegistered = errors.New("view type already registered")

	// ErrContentUnresolved means the viewer's backing resource is unreachable.
	ErrContentUnresolved = errors.New("content could not be resolved")

	// ErrInvalidLayer is returned for a layer outside Background..Top.
	ErrInvalidLayer = errors.New("invalid view layer")

	// ErrViewerNotFound is returned when an id does not match a live viewer.
	ErrViewerNotFound = errors.New("viewer not found")
)
