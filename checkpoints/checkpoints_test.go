package checkpoints_test

import (
	"math/big"
	"testing"

	"bitbucket.org/ventureslash/go-slash-governance/checkpoints"
	"bitbucket.org/ventureslash/go-slash-governance/types"
)

func addr(b byte) types.Address {
	a := types.Address{}
	a[types.AddressLength-1] = b
	return a
}

func TestCurrentValue(t *testing.T) {
	store := checkpoints.New()
	a := addr(1)

	if store.CurrentValue(a).Sign() != 0 {
		t.Fatal("unseen account should have zero current value")
	}

	if err := store.Push(a, 1, big.NewInt(10)); err != nil {
		t.Fatal(err)
	}
	if err := store.Push(a, 4, big.NewInt(25)); err != nil {
		t.Fatal(err)
	}

	if store.CurrentValue(a).Cmp(big.NewInt(25)) != 0 {
		t.Fatal("current value should be the last pushed value")
	}
	if store.Len(a) != 2 {
		t.Fatal("expected 2 checkpoints")
	}
}

func TestValueAt(t *testing.T) {
	store := checkpoints.New()
	a := addr(1)

	seqs := []uint64{1, 3, 5, 9}
	vals := []int64{10, 20, 30, 40}
	for i := range seqs {
		if err := store.Push(a, seqs[i], big.NewInt(vals[i])); err != nil {
			t.Fatal(err)
		}
	}

	cases := []struct {
		seq  uint64
		want int64
	}{
		{0, 0},
		{1, 10},
		{2, 10},
		{3, 20},
		{4, 20},
		{5, 30},
		{8, 30},
		{9, 40},
		{1000, 40},
	}
	for _, c := range cases {
		got := store.ValueAt(a, c.seq)
		if got.Cmp(big.NewInt(c.want)) != 0 {
			t.Fatalf("ValueAt(%d) = %s, want %d", c.seq, got, c.want)
		}
	}
}

func TestValueAtUnseenAccount(t *testing.T) {
	store := checkpoints.New()
	if store.ValueAt(addr(9), 42).Sign() != 0 {
		t.Fatal("unseen account should have zero historical value")
	}
}

func TestPushSameSeqReplaces(t *testing.T) {
	store := checkpoints.New()
	a := addr(1)

	if err := store.Push(a, 7, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := store.Push(a, 7, big.NewInt(60)); err != nil {
		t.Fatal(err)
	}

	if store.Len(a) != 1 {
		t.Fatal("same key push should replace, not append")
	}
	if store.CurrentValue(a).Cmp(big.NewInt(60)) != 0 {
		t.Fatal("only the final value at a key matters")
	}
}

func TestPushOutOfOrder(t *testing.T) {
	store := checkpoints.New()
	a := addr(1)

	if err := store.Push(a, 5, big.NewInt(1)); err != nil {
		t.Fatal(err)
	}
	if err := store.Push(a, 4, big.NewInt(2)); err != checkpoints.ErrSeqOutOfOrder {
		t.Fatal("expected ErrSeqOutOfOrder, got ", err)
	}
	if store.Len(a) != 1 {
		t.Fatal("rejected push should not extend the timeline")
	}
}

func TestValuesAreCopies(t *testing.T) {
	store := checkpoints.New()
	a := addr(1)

	votes := big.NewInt(50)
	if err := store.Push(a, 1, votes); err != nil {
		t.Fatal(err)
	}
	votes.SetInt64(999)

	if store.CurrentValue(a).Cmp(big.NewInt(50)) != 0 {
		t.Fatal("pushed value should be copied into the store")
	}

	store.CurrentValue(a).SetInt64(777)
	if store.CurrentValue(a).Cmp(big.NewInt(50)) != 0 {
		t.Fatal("returned value should be a copy")
	}
}

func TestTimeline(t *testing.T) {
	store := checkpoints.New()
	a := addr(1)

	if err := store.Push(a, 2, big.NewInt(5)); err != nil {
		t.Fatal(err)
	}
	if err := store.Push(a, 6, big.NewInt(8)); err != nil {
		t.Fatal(err)
	}

	timeline := store.Timeline(a)
	if len(timeline) != 2 {
		t.Fatal("expected 2 entries")
	}
	if timeline[0].Seq != 2 || timeline[1].Seq != 6 {
		t.Fatal("timeline keys should be in push order")
	}
	timeline[1].Votes.SetInt64(0)
	if store.CurrentValue(a).Cmp(big.NewInt(8)) != 0 {
		t.Fatal("timeline should be a copy")
	}
}
