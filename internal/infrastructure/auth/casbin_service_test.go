package auth

import (
	"testing"

	"github.com/casbin/casbin/v2"
)

const modelPath = "../../../config/casbin_model.conf"

func newTestEnforcer(t *testing.T) *EnforcerWrapper {
	t.Helper()
	e, err := casbin.NewEnforcer(modelPath)
	if err != nil {
		t.Fatalf("new enforcer: %v", err)
	}
	return NewEnforcerWrapper(e)
}

func TestEnforcerWrapper_PolicyRoundTrip(t *testing.T) {
	w := newTestEnforcer(t)

	added, err := w.AddPolicy("MANAGER", "sale:create")
	if err != nil {
		t.Fatalf("add policy: %v", err)
	}
	if !added {
		t.Fatal("policy not added")
	}

	rules, err := w.GetFilteredPolicy(0, "MANAGER")
	if err != nil {
		t.Fatalf("get filtered policy: %v", err)
	}
	if len(rules) != 1 || rules[0][1] != "sale:create" {
		t.Fatalf("rules = %v", rules)
	}

	ok, err := w.Enforce("MANAGER", "sale:create")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if !ok {
		t.Error("granted permission denied")
	}
	ok, err = w.Enforce("MANAGER", "sale:cancel")
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if ok {
		t.Error("ungranted permission allowed")
	}
}

func TestEnforcerWrapper_RemoveFilteredPolicy(t *testing.T) {
	w := newTestEnforcer(t)

	if _, err := w.AddPolicy("MANAGER", "sale:create"); err != nil {
		t.Fatalf("add policy: %v", err)
	}
	if _, err := w.AddPolicy("MANAGER", "sale:read"); err != nil {
		t.Fatalf("add policy: %v", err)
	}
	if _, err := w.AddPolicy("CASHIER", "sale:read"); err != nil {
		t.Fatalf("add policy: %v", err)
	}

	removed, err := w.RemoveFilteredPolicy(0, "MANAGER")
	if err != nil {
		t.Fatalf("remove filtered policy: %v", err)
	}
	if !removed {
		t.Fatal("nothing removed")
	}

	rules, err := w.GetFilteredPolicy(0, "MANAGER")
	if err != nil {
		t.Fatalf("get filtered policy: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("manager rules remain: %v", rules)
	}
	rules, err = w.GetFilteredPolicy(0, "CASHIER")
	if err != nil {
		t.Fatalf("get filtered policy: %v", err)
	}
	if len(rules) != 1 {
		t.Errorf("cashier rules = %v", rules)
	}
}
