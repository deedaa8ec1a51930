package reconcile

import "errors"

var (
	ErrFetch         = errors.New("fetch orders")
	ErrParse         = errors.New("malformed order")
	ErrPersistence   = errors.New("persist order")
	ErrNotFound      = errors.New("order not found")
	ErrRunInProgress = errors.New("sync already in progress")
)
