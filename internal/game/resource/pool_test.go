package resource

import (
	"testing"
)

func TestPoolPaySpendsLedgerFirst(t *testing.T) {
	pool := NewPool()
	pool.AddBones(2)
	pool.AddSacrifice()

	pay, ok := pool.Pay(2)
	if !ok {
		t.Fatal("expected payment of 2 to succeed")
	}
	if pay.FromSacrifices != 1 || pay.FromBones != 1 {
		t.Fatalf("expected split 1/1, got %d/%d", pay.FromSacrifices, pay.FromBones)
	}
	if pool.Bones() != 1 || pool.Sacrifices() != 0 {
		t.Fatalf("expected 1 bone and empty ledger, got %d/%d", pool.Bones(), pool.Sacrifices())
	}
}

func TestPoolPayInsufficient(t *testing.T) {
	pool := NewPool()
	pool.AddBones(1)

	if _, ok := pool.Pay(2); ok {
		t.Fatal("expected payment of 2 to fail with 1 bone")
	}
	if pool.Bones() != 1 {
		t.Fatalf("failed payment mutated pool: %d bones", pool.Bones())
	}
}

func TestPoolRefundRestoresSplit(t *testing.T) {
	pool := NewPool()
	pool.AddBones(1)
	pool.AddSacrifice()

	pay, ok := pool.Pay(2)
	if !ok {
		t.Fatal("expected payment to succeed")
	}
	pool.Refund(pay)

	if pool.Bones() != 1 || pool.Sacrifices() != 1 {
		t.Fatalf("refund did not restore 1/1, got %d/%d", pool.Bones(), pool.Sacrifices())
	}
}

func TestResetSacrificesDoesNotBankLedger(t *testing.T) {
	pool := NewPool()
	pool.AddSacrifice()
	pool.AddSacrifice()

	pool.ResetSacrifices()

	if pool.Sacrifices() != 0 {
		t.Fatalf("expected empty ledger, got %d", pool.Sacrifices())
	}
	if pool.Bones() != 0 {
		t.Fatalf("ledger leaked into bones: %d", pool.Bones())
	}
}

func TestPoolNeverNegative(t *testing.T) {
	pool := NewPool()
	pool.AddBones(-3)
	if pool.Bones() != 0 {
		t.Fatalf("negative credit accepted: %d", pool.Bones())
	}
	if _, ok := pool.Pay(-1); ok {
		t.Fatal("negative payment accepted")
	}
	if pool.Total() != 0 {
		t.Fatalf("expected empty pool, got %d", pool.Total())
	}
}
