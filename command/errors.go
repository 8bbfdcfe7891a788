package command

import "errors"

// ErrUnsupportedInput indicates that the received sarah.Input does not carry guild information.
var ErrUnsupportedInput = errors.New("input does not carry guild information")
