package gravel

import "errors"

var (
	// ErrUnknownBody is returned when a body was not created by the world.
	ErrUnknownBody = errors.New("gravel: body does not belong to this world")

	// ErrSkinOwned is returned when adding a skin already registered in a
	// collision system.
	ErrSkinOwned = errors.New("gravel: skin already belongs to a collision system")

	// ErrUnknownSkin is returned when removing a skin the world does not hold.
	ErrUnknownSkin = errors.New("gravel: skin does not belong to this world")
)
