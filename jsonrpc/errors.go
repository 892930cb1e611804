package jsonrpc

import (
	"errors"
)

var (
	// ErrTimeout happens when the node does not answer a request in time
	ErrTimeout = errors.New("timeout")

	// ErrClosed is returned for requests on a closed client and pending requests when the connection drops
	ErrClosed = errors.New("connection closed")

	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// Error is an error the node returned for a request
type Error interface {
	Error() string
	ErrorCode() int
}

var _ Error = (*ErrorObject)(nil)

// Substrate error codes for rejected extrinsics
const (
	// CodePoolInvalidTx is returned for extrinsics the pool deems invalid
	CodePoolInvalidTx = 1010
	// CodePoolUnknownValidity is returned when validity could not be determined
	CodePoolUnknownValidity = 1011
	// CodePoolTemporarilyBanned is returned for recently rejected extrinsics
	CodePoolTemporarilyBanned = 1012
	// CodePoolAlreadyImported is returned when the extrinsic is already in the pool
	CodePoolAlreadyImported = 1013
	// CodePoolTooLowPriority is returned when a same-nonce extrinsic has higher priority
	CodePoolTooLowPriority = 1014
)

// IsPoolRejection reports whether err is a node refusal to pool an extrinsic
func IsPoolRejection(err error) bool {
	var obj *ErrorObject
	if !errors.As(err, &obj) {
		return false
	}

	return obj.Code >= CodePoolInvalidTx && obj.Code <= CodePoolTooLowPriority
}
