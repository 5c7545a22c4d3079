package attendance

import "errors"

var (
	ErrEmptyDeviceUserID = errors.New("attendance: empty device user id")
	ErrInvalidPunchType  = errors.New("attendance: invalid punch type")
	ErrInvalidTimestamp  = errors.New("attendance: invalid timestamp")
)
