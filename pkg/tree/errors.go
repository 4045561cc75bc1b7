package tree

import "errors"

var (
	ErrNilNode       = errors.New("tree: nil node")
	ErrEmptyName     = errors.New("tree: empty name")
	ErrDuplicateName = errors.New("tree: duplicate sibling name")
	ErrSlotMismatch  = errors.New("tree: child kind not accepted")
	ErrAttached      = errors.New("tree: node already has a parent")
	ErrCycle         = errors.New("tree: node cannot contain itself")
	ErrNotTask       = errors.New("tree: connections can only be stored on tasks")
)
