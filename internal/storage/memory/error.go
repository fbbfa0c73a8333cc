package memory

import "errors"

var (
	ErrDuplicateRoom  = errors.New("room already exists")
	ErrDuplicateHotel = errors.New("hotel already exists")
	ErrDuplicateEmail = errors.New("email already exists")
)
