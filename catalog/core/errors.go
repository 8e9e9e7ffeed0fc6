package core

import "errors"

var (
	ErrBadArguments  = errors.New("arguments are not acceptable")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrNilDependency = errors.New("catalog service: nil dependency")
)
