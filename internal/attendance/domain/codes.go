package attendance

// ZKTeco punch state codes as reported by the device firmware.
const (
	codeCheckIn  = 0
	codeCheckOut = 1
	codeBreakOut = 2
	codeBreakIn  = 3
)

// PunchTypeFromCode maps a device punch state code to a punch type.
func PunchTypeFromCode(code int) (PunchType, bool) {
	switch code {
	case codeCheckIn:
		return PunchClockIn, true
	case codeCheckOut:
		return PunchClockOut, true
	case codeBreakOut:
		return PunchBreakOut, true
	case codeBreakIn:
		return PunchBreakIn, true
	default:
		return "", false
	}
}
