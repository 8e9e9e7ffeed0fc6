package core

import "errors"

var ErrBadArguments = errors.New("arguments are not acceptable")
var ErrNotFound = errors.New("resource is not found")
var ErrNilDependency = errors.New("web: nil dependency")
var ErrMissingContext = errors.New("session is missing: sign in first")
var ErrBadTransform = errors.New("no transform given and item types differ")
