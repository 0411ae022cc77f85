package resource

import "testing"

func TestBundleSubtractBounds(t *testing.T) {
	b := Bundle{Wood: 2, Brick: 1}
	if err := b.Subtract(Bundle{Wood: 3}); err == nil {
		t.Fatal("expected error subtracting below zero")
	}
	// Failed subtract must not mutate.
	if b[Wood] != 2 || b[Brick] != 1 {
		t.Fatalf("bundle mutated on failed subtract: %v", b)
	}
	if err := b.Subtract(Bundle{Wood: 2, Brick: 1}); err != nil {
		t.Fatalf("subtract: %v", err)
	}
	if b.Total() != 0 {
		t.Fatalf("expected empty bundle, got %v", b)
	}
}

func TestNormalizeRejectsUnknownKind(t *testing.T) {
	if _, err := (Bundle{"GOLD": 1}).Normalize(); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if _, err := (Bundle{Wood: -1}).Normalize(); err == nil {
		t.Fatal("expected error for negative count")
	}
	out, err := (Bundle{Wood: 2, Brick: 0}).Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(out) != 1 || out[Wood] != 2 {
		t.Fatalf("unexpected normalized bundle: %v", out)
	}
}

func TestTransferAtomicity(t *testing.T) {
	a := Bundle{Wood: 1, Sheep: 1}
	b := Bundle{Brick: 1}

	// a gives 1 WOOD + 1 SHEEP, receives 1 BRICK.
	give := Bundle{Wood: 1, Sheep: 1}
	take := Bundle{Brick: 1}
	if err := Transfer(a, b, give, take); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if a[Wood] != 0 || a[Sheep] != 0 || a[Brick] != 1 {
		t.Fatalf("giver ledger wrong: %v", a)
	}
	if b[Wood] != 1 || b[Sheep] != 1 || b[Brick] != 0 {
		t.Fatalf("taker ledger wrong: %v", b)
	}
}

func TestTransferAllOrNothing(t *testing.T) {
	a := Bundle{Wood: 1}
	b := Bundle{}
	before := a.Clone()
	if err := Transfer(a, b, Bundle{Wood: 1}, Bundle{Brick: 1}); err == nil {
		t.Fatal("expected transfer to fail when taker cannot pay")
	}
	if a[Wood] != before[Wood] || b.Total() != 0 {
		t.Fatalf("half-applied transfer: a=%v b=%v", a, b)
	}
}

func TestBankRatio(t *testing.T) {
	cases := []struct {
		name  string
		ports []Port
		kind  Kind
		want  int
	}{
		{"no ports", nil, Wood, 4},
		{"generic port", []Port{{Ratio: 3}}, Wood, 3},
		{"specific port", []Port{{Ratio: 2, Kind: Wood}}, Wood, 2},
		{"specific other kind", []Port{{Ratio: 2, Kind: Ore}}, Wood, 4},
		{"both", []Port{{Ratio: 3}, {Ratio: 2, Kind: Wood}}, Wood, 2},
	}
	for _, tc := range cases {
		if got := BankRatio(tc.ports, tc.kind); got != tc.want {
			t.Errorf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}
