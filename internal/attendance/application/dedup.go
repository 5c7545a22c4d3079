package application

import (
	"context"
	"sort"

	attendance "github.com/ju4700/ZKTecho-sub001/internal/attendance/domain"
	directory "github.com/ju4700/ZKTecho-sub001/internal/directory/domain"
)

// DedupResult is the outcome of filtering one raw batch.
type DedupResult struct {
	// Accepted events, with EmployeeID resolved from the directory.
	Accepted []attendance.PunchEvent
	// Duplicates counts punches dropped because their (deviceUserId,
	// timestamp) pair was already stored or repeated inside the batch.
	Duplicates int
	// UnmappedDeviceUsers lists device user ids with no directory entry,
	// one entry per id, sorted. Their punches are dropped, not fatal.
	UnmappedDeviceUsers []string
}

// Deduplicate filters a raw punch batch down to events not already seen,
// resolving device users to employees on the way. Pure with respect to
// storage: the caller persists the accepted events.
func Deduplicate(ctx context.Context, batch []attendance.PunchEvent, existing map[attendance.DedupKey]struct{}, dir directory.Repository) (DedupResult, error) {
	result := DedupResult{}
	if len(batch) == 0 {
		return result, nil
	}

	seen := make(map[attendance.DedupKey]struct{}, len(batch))
	employees := make(map[string]*directory.Employee)
	unmapped := make(map[string]struct{})

	for _, punch := range batch {
		if punch.DeviceUserID == "" {
			return result, attendance.ErrEmptyDeviceUserID
		}
		if punch.Timestamp.IsZero() {
			return result, attendance.ErrInvalidTimestamp
		}
		if !punch.Type.IsValid() {
			return result, attendance.ErrInvalidPunchType
		}

		key := punch.Key()
		if _, ok := existing[key]; ok {
			result.Duplicates++
			continue
		}
		if _, ok := seen[key]; ok {
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		employee, cached := employees[punch.DeviceUserID]
		if !cached {
			found, err := dir.FindByDeviceUserID(ctx, punch.DeviceUserID)
			if err != nil {
				return result, err
			}
			employee = found
			employees[punch.DeviceUserID] = found
		}
		if employee == nil {
			unmapped[punch.DeviceUserID] = struct{}{}
			continue
		}

		punch.EmployeeID = employee.ID
		result.Accepted = append(result.Accepted, punch)
	}

	for id := range unmapped {
		result.UnmappedDeviceUsers = append(result.UnmappedDeviceUsers, id)
	}
	sort.Strings(result.UnmappedDeviceUsers)
	return result, nil
}
