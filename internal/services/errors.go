package services

import "errors"

// Service errors, mapped onto problem documents by the transport layer via
// errors.Is.
var (
	// ErrInvalidFilter rejects month selectors that are neither the
	// wildcard nor a well-formed MM/YYYY label.
	ErrInvalidFilter = errors.New("invalid month filter")

	// ErrInvalidFormat rejects export formats other than csv and xlsx.
	ErrInvalidFormat = errors.New("unsupported export format")
)
