package application

import "errors"

var (
	// ErrNullExplorer ...
	ErrNullExplorer = errors.New("explorer service must not be null")
	// ErrInvalidConcurrency ...
	ErrInvalidConcurrency = errors.New("max concurrent requests must be a positive number")
	// ErrInvalidLoadMoreIncrement ...
	ErrInvalidLoadMoreIncrement = errors.New("load more increment must be a positive number")
)
