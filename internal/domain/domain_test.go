package domain

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{" Employee ", RoleEmployee},
		{"customer", RoleCustomer},
		{"superuser", RoleCustomer},
		{"", RoleCustomer},
	}
	for _, tt := range tests {
		if got := ParseRole(tt.in); got != tt.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRolePrivileged(t *testing.T) {
	if !RoleAdmin.Privileged() || !RoleEmployee.Privileged() {
		t.Error("admin and employee should be privileged")
	}
	if RoleCustomer.Privileged() {
		t.Error("customer should not be privileged")
	}
}

func TestStockLabels(t *testing.T) {
	tests := []struct {
		stock        int
		level        StockLevel
		availability StockLevel
	}{
		{0, OutOfStock, OutOfStock},
		{1, LowStock, LowStock},
		{9, LowStock, LowStock},
		{10, InStock, LowStock},
		{11, InStock, InStock},
	}
	for _, tt := range tests {
		p := Product{Stock: tt.stock}
		if got := p.StockLevel(); got != tt.level {
			t.Errorf("stock %d: StockLevel() = %s, want %s", tt.stock, got, tt.level)
		}
		if got := p.Availability(); got != tt.availability {
			t.Errorf("stock %d: Availability() = %s, want %s", tt.stock, got, tt.availability)
		}
		if got, want := p.IsLowStock(), tt.stock < LowStockThreshold; got != want {
			t.Errorf("stock %d: IsLowStock() = %v", tt.stock, got)
		}
	}
}

func TestLineTotal(t *testing.T) {
	p := Purchase{Price: 129999, Quantity: 2}
	if got := p.LineTotal(); got != 259998 {
		t.Errorf("LineTotal() = %d, want 259998", got)
	}
}
