package qcm

import "github.com/cjchua/qcodes-measurements/param"

// Error kinds shared across the module, checked with errors.Is.
var (
	ErrInvalidArgument = param.ErrInvalidArgument
	ErrNotFound        = param.ErrNotFound
)
