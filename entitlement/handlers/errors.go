package handlers

import "errors"

var (
	ErrInvalidRequestBody = errors.New("invalid request body")
	ErrInvalidLimitParam  = errors.New("invalid limit parameter")
)
