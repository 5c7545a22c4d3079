package memory

import (
	"context"
	"sync"

	directory "github.com/ju4700/ZKTecho-sub001/internal/directory/domain"
)

// EmployeeRepository is an in-memory employee directory.
type EmployeeRepository struct {
	mu       sync.RWMutex
	byID     map[string]directory.Employee
	byDevice map[string]string
}

// NewEmployeeRepository constructs a repository.
func NewEmployeeRepository() *EmployeeRepository {
	return &EmployeeRepository{
		byID:     make(map[string]directory.Employee),
		byDevice: make(map[string]string),
	}
}

// Put stores or replaces an employee record.
func (r *EmployeeRepository) Put(employee directory.Employee) {
	r.mu.Lock()
	r.byID[employee.ID] = employee
	if employee.DeviceUserID != "" {
		r.byDevice[employee.DeviceUserID] = employee.ID
	}
	r.mu.Unlock()
}

// Remove deletes an employee record (mapping churn in tests).
func (r *EmployeeRepository) Remove(employeeID string) {
	r.mu.Lock()
	if employee, ok := r.byID[employeeID]; ok {
		delete(r.byDevice, employee.DeviceUserID)
		delete(r.byID, employeeID)
	}
	r.mu.Unlock()
}

// FindByDeviceUserID resolves a device user, nil on a miss.
func (r *EmployeeRepository) FindByDeviceUserID(ctx context.Context, deviceUserID string) (*directory.Employee, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	employeeID, ok := r.byDevice[deviceUserID]
	if !ok {
		return nil, nil
	}
	employee, ok := r.byID[employeeID]
	if !ok {
		return nil, nil
	}
	return &employee, nil
}

// Get loads an employee by id, nil when absent.
func (r *EmployeeRepository) Get(ctx context.Context, employeeID string) (*directory.Employee, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	employee, ok := r.byID[employeeID]
	if !ok {
		return nil, nil
	}
	return &employee, nil
}
