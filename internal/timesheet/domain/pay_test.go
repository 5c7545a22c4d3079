package timesheet

import "testing"

func TestComputePayWithOvertime(t *testing.T) {
	hours := HoursFact{TotalHours: 9, BreakHours: 0.5, RegularHours: 8, OvertimeHours: 0.5}

	pay, err := ComputePay(hours, 20, 1.5)
	if err != nil {
		t.Fatalf("compute pay: %v", err)
	}
	if pay.RegularPay != 160 {
		t.Fatalf("regular pay: got %v want 160", pay.RegularPay)
	}
	if pay.OvertimePay != 15 {
		t.Fatalf("overtime pay: got %v want 15", pay.OvertimePay)
	}
	if pay.TotalPay != 175 {
		t.Fatalf("total pay: got %v want 175", pay.TotalPay)
	}
}

func TestComputePayZeroHours(t *testing.T) {
	pay, err := ComputePay(HoursFact{}, 20, 1.5)
	if err != nil {
		t.Fatalf("compute pay: %v", err)
	}
	if pay.TotalPay != 0 {
		t.Fatalf("empty day must pay zero, got %v", pay.TotalPay)
	}
}

func TestComputePayRejectsNegativeRate(t *testing.T) {
	if _, err := ComputePay(HoursFact{RegularHours: 8}, -1, 1.5); err == nil {
		t.Fatalf("expected negative rate error")
	}
}

func TestComputePayDefaultsMultiplier(t *testing.T) {
	pay, err := ComputePay(HoursFact{OvertimeHours: 2}, 10, 0)
	if err != nil {
		t.Fatalf("compute pay: %v", err)
	}
	if pay.OvertimePay != 20 {
		t.Fatalf("zero multiplier must fall back to 1x, got %v", pay.OvertimePay)
	}
}
