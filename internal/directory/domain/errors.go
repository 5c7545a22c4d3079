package directory

import "errors"

var (
	ErrEmptyEmployeeID = errors.New("directory: empty employee id")
	ErrNegativeRate    = errors.New("directory: negative hourly rate")
)
