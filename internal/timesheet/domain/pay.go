package timesheet

// PayFact is the derived pay for one day session.
type PayFact struct {
	RegularPay  float64
	OvertimePay float64
	TotalPay    float64
}

// Validate ensures basic domain invariants for a fact.
func (f PayFact) Validate() error {
	if f.RegularPay < 0 || f.OvertimePay < 0 || f.TotalPay < 0 {
		return ErrNegativeFigure
	}
	return nil
}

// ComputePay applies the employee's rate and overtime multiplier to a
// hours breakdown. Pure; no rounding here. Callers round for display only,
// never for storage, so period aggregation never drifts.
func ComputePay(hours HoursFact, hourlyRate, overtimeMultiplier float64) (PayFact, error) {
	if hourlyRate < 0 {
		return PayFact{}, ErrNegativeRate
	}
	if overtimeMultiplier <= 0 {
		overtimeMultiplier = 1
	}
	if err := hours.Validate(); err != nil {
		return PayFact{}, err
	}

	regular := hours.RegularHours * hourlyRate
	overtime := hours.OvertimeHours * hourlyRate * overtimeMultiplier
	return PayFact{
		RegularPay:  regular,
		OvertimePay: overtime,
		TotalPay:    regular + overtime,
	}, nil
}
