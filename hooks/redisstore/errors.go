package redisstore

import "errors"

var (
	ErrFailedToParseURL = errors.New("redisstore: failed to parse redis connection url")
	ErrNotReady         = errors.New("redisstore: redis did not become ready within the given time period")
	ErrDecode           = errors.New("redisstore: failed to decode value")
	ErrEncode           = errors.New("redisstore: failed to encode value")
)
