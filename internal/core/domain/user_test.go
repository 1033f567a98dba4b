package domain

import (
	"context"
	"testing"
)

func TestUserIDPrefix(t *testing.T) {
	cases := map[string]string{
		"doctor":       "DOC",
		"Pharmacist":   "PHM",
		"RECEPTIONIST": "RCP",
		" admin ":      "ADM",
		"nurse":        "USR",
		"":             "USR",
	}
	for role, want := range cases {
		if got := UserIDPrefix(role); got != want {
			t.Errorf("UserIDPrefix(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestNormalizeRole(t *testing.T) {
	if got := NormalizeRole(" pharmacist"); got != RolePharmacist {
		t.Fatalf("expected %s, got %s", RolePharmacist, got)
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := IdentityFromContext(context.Background()); ok {
		t.Fatalf("empty context must be unauthenticated")
	}

	ctx := ContextWithIdentity(context.Background(), &Identity{Role: RoleAdmin})
	if _, ok := IdentityFromContext(ctx); ok {
		t.Fatalf("identity without a user must be unauthenticated")
	}

	user := &User{UserID: "ADM-00000001", Role: RoleAdmin}
	ctx = ContextWithIdentity(context.Background(), &Identity{User: user, Role: user.Role})
	id, ok := IdentityFromContext(ctx)
	if !ok || id.User.UserID != "ADM-00000001" || id.Role != RoleAdmin {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestStockStatusFor(t *testing.T) {
	cases := []struct {
		stock int
		want  StockStatus
	}{
		{0, StockCritical},
		{10, StockCritical},
		{11, StockLow},
		{50, StockLow},
		{51, StockAdequate},
	}
	for _, tc := range cases {
		if got := StockStatusFor(tc.stock); got != tc.want {
			t.Errorf("StockStatusFor(%d) = %s, want %s", tc.stock, got, tc.want)
		}
	}
}

func TestPrescriptionStatus_CanFill(t *testing.T) {
	if !PrescriptionActive.CanFill() {
		t.Fatalf("active prescriptions must be fillable")
	}
	if PrescriptionCompleted.CanFill() {
		t.Fatalf("completed prescriptions must not be fillable")
	}
}

func TestParseStockStatus(t *testing.T) {
	if got, ok := ParseStockStatus("low"); !ok || got != StockLow {
		t.Fatalf("ParseStockStatus(low) = %q, %v", got, ok)
	}
	if _, ok := ParseStockStatus("plenty"); ok {
		t.Fatalf("expected unknown status to be rejected")
	}
}
