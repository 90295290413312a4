package rational

import "testing"

func TestToInt64RoundDown(t *testing.T) {
	// 3 * 3/10 = 9/10, floor = 0.
	r := New(3, 10).MulInt64(3)
	got, err := r.ToInt64(false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Fatalf("want 0, got %d", got)
	}
}

func TestToInt64RoundUp(t *testing.T) {
	// 22/7 * 3 = 66/7 = 9.42857..., ceil = 10.
	r := New(22, 7).MulInt64(3)
	got, err := r.ToInt64(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 10 {
		t.Fatalf("want 10, got %d", got)
	}
}

func TestToInt64ExactNoRoundingDifference(t *testing.T) {
	r := New(200, 100) // == 2
	down, err := r.ToInt64(false)
	if err != nil {
		t.Fatal(err)
	}
	up, err := r.ToInt64(true)
	if err != nil {
		t.Fatal(err)
	}
	if down != 2 || up != 2 {
		t.Fatalf("exact value should round the same both ways, got down=%d up=%d", down, up)
	}
}

func TestToInt64RangeError(t *testing.T) {
	huge := New(1, 1).MulInt64(1 << 62).Mul(New(1, 1).MulInt64(1 << 62))
	if _, err := huge.ToInt64(false); err != ErrRange {
		t.Fatalf("want ErrRange, got %v", err)
	}
}

func TestCmpAndEqual(t *testing.T) {
	a := New(22, 7)
	b := New(220, 70)
	if !a.Equal(b) {
		t.Fatal("22/7 should equal 220/70 after reduction")
	}

	c := New(3, 1)
	if !c.Less(a) {
		t.Fatal("3 should be less than 22/7")
	}
	if !c.LessOrEqual(New(3, 1)) {
		t.Fatal("3 should be <= 3")
	}
}

func TestZeroDenominatorConventionIsCallerResponsibility(t *testing.T) {
	// New panics on a zero denominator per math/big.Rat's contract;
	// price constructors in package metadex guard against this by
	// returning the Zero rational instead of calling New(n, 0).
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic constructing a rational with zero denominator")
		}
	}()
	New(1, 0)
}
