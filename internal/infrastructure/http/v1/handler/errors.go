package handler

import "errors"

var (
	ErrFailedToDecodeRequestBody = errors.New("failed to decode request body")
	ErrInternalServer            = errors.New("server encountered a problem and could not process your request")
	ErrFavoriteNameTooLong       = errors.New("favorite name is too long")
)
