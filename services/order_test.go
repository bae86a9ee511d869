package services

import "testing"

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusPreparing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusServed, false},
		{OrderStatusPreparing, OrderStatusServed, true},
		{OrderStatusPreparing, OrderStatusCancelled, true},
		{OrderStatusPreparing, OrderStatusPending, false},
		{OrderStatusServed, OrderStatusPending, false},
		{OrderStatusServed, OrderStatusPreparing, false},
		{OrderStatusCancelled, OrderStatusPreparing, false},
		{"", OrderStatusPending, false},
		{OrderStatusPending, "", false},
	}
	for _, tt := range tests {
		got := ValidStatusTransition(tt.from, tt.to)
		if got != tt.want {
			t.Errorf("ValidStatusTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
