package handle

import (
	"testing"

	"pgregory.net/rapid"
)

func TestDeriveRoundTrip(t *testing.T) {
	base := RequestBase(7)
	d := Derive(base, 3)
	if Owner(d) != 7 {
		t.Fatalf("Owner(%d) = %d, want 7", d, Owner(d))
	}
	if Local(d) != 3 {
		t.Fatalf("Local(%d) = %d, want 3", d, Local(d))
	}
}

func TestDeriveInjective(t *testing.T) {
	seen := make(map[uint32]struct{})
	for req := uint32(1); req < 20; req++ {
		for local := uint32(0); local < 20; local++ {
			d := Derive(RequestBase(req), local)
			if _, ok := seen[d]; ok {
				t.Fatalf("handle %d produced by more than one (req,local) pair", d)
			}
			seen[d] = struct{}{}
		}
	}
}

func TestDeriveOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on local overflow")
		}
	}()
	Derive(RequestBase(1), 1<<widthBits)
}

func TestNoneSentinel(t *testing.T) {
	var p Param
	if !p.IsNone() {
		t.Fatal("zero-value Param should be None")
	}
	var e Entity = EntityOrigin
	if e.IsNone() {
		t.Fatal("EntityOrigin should not be None")
	}
}

// TestDeriveIsInjectiveOverSession checks Testable Property 6: handle
// derivation stays an injection over a session. Any two distinct
// (owner index, local) pairs must never derive the same handle, and the
// owner/local extracted back out of a derived handle must reproduce the
// pair that produced it.
func TestDeriveIsInjectiveOverSession(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ownerA := rapid.Uint32Range(1, 1<<15).Draw(t, "ownerA")
		localA := rapid.Uint32Range(0, (1<<widthBits)-1).Draw(t, "localA")
		ownerB := rapid.Uint32Range(1, 1<<15).Draw(t, "ownerB")
		localB := rapid.Uint32Range(0, (1<<widthBits)-1).Draw(t, "localB")

		da := Derive(RequestBase(ownerA), localA)
		db := Derive(RequestBase(ownerB), localB)

		if Owner(da) != ownerA || Local(da) != localA {
			t.Fatalf("round trip failed for (%d,%d): got owner=%d local=%d", ownerA, localA, Owner(da), Local(da))
		}
		if ownerA == ownerB && localA == localB {
			return
		}
		if da == db {
			t.Fatalf("distinct pairs (%d,%d) and (%d,%d) derived the same handle %d", ownerA, localA, ownerB, localB, da)
		}
	})
}
