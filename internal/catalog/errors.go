package catalog

import "errors"

// ErrUnknownTemplate is returned when a mint names a template that is not
// in the table. Fatal to the mint call only; the session stays valid.
var ErrUnknownTemplate = errors.New("unknown card template")
