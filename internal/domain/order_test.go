package domain

import "testing"

func TestCanTransitionForwardOnly(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusDelivered, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusProcessing, false},
		{StatusDelivered, StatusPending, false},
		{StatusPending, StatusPending, false},
		{StatusPending, OrderStatus("cancelled"), false},
		{OrderStatus(""), StatusShipped, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCartCount(t *testing.T) {
	c := Cart{Items: []CartItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 3}}}
	if c.Count() != 5 {
		t.Fatalf("expected count 5, got %d", c.Count())
	}
	if (Cart{}).Count() != 0 {
		t.Fatalf("empty cart should count 0")
	}
}
