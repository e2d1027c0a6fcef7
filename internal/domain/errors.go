package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidOption      = errors.New("invalid option")
	ErrIndexOutOfRange    = errors.New("image index out of range")
	ErrNoImages           = errors.New("no source images")
	ErrDecode             = errors.New("failed to read image files")
	ErrEmptyResult        = errors.New("no image in generation response")
	ErrProviderFailure    = errors.New("provider failure")
	ErrGenerationInFlight = errors.New("generation already in progress")
	ErrMissingCredential  = errors.New("api credential is not set")
	ErrNoResult           = errors.New("no generated image")
)
