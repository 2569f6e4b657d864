package ledger_test

import (
	"errors"
	"math/big"
	"testing"

	"bitbucket.org/ventureslash/go-slash-governance/ledger"
	"bitbucket.org/ventureslash/go-slash-governance/types"
)

func addr(b byte) types.Address {
	a := types.Address{}
	a[types.AddressLength-1] = b
	return a
}

type testVault struct {
	released []*big.Int
	err      error
}

func (v *testVault) Release(to types.Address, amount *big.Int) error {
	if v.err != nil {
		return v.err
	}
	v.released = append(v.released, new(big.Int).Set(amount))
	return nil
}

func newLedger(maxSupply int64) *ledger.Ledger {
	return ledger.New(&ledger.Config{MaxSupply: big.NewInt(maxSupply)})
}

func TestDeposit(t *testing.T) {
	l := newLedger(1000)
	a := addr(1)

	if err := l.Deposit(a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if l.BalanceOf(a).Cmp(big.NewInt(100)) != 0 {
		t.Fatal("balance should be 100")
	}
	if l.CollateralOf(a).Cmp(big.NewInt(100)) != 0 {
		t.Fatal("collateral should be 100")
	}
	if l.TotalSupply().Cmp(big.NewInt(100)) != 0 {
		t.Fatal("supply should be 100")
	}
	if l.GetVotes(a).Cmp(big.NewInt(100)) != 0 {
		t.Fatal("undelegated holder votes with its own balance")
	}
}

func TestDepositInvalidAmount(t *testing.T) {
	l := newLedger(1000)
	a := addr(1)

	if err := l.Deposit(a, big.NewInt(0)); err != ledger.ErrInvalidAmount {
		t.Fatal("zero deposit should be rejected, got ", err)
	}
	if err := l.Deposit(a, big.NewInt(-5)); err != ledger.ErrInvalidAmount {
		t.Fatal("negative deposit should be rejected, got ", err)
	}
	if err := l.Deposit(a, nil); err != ledger.ErrInvalidAmount {
		t.Fatal("nil deposit should be rejected, got ", err)
	}
	if l.Seq() != 0 {
		t.Fatal("rejected deposits should not burn sequence keys")
	}
}

func TestDepositSupplyCap(t *testing.T) {
	l := newLedger(100)
	a := addr(1)

	if err := l.Deposit(a, big.NewInt(90)); err != nil {
		t.Fatal(err)
	}
	if err := l.Deposit(a, big.NewInt(15)); err != ledger.ErrSupplyExceeded {
		t.Fatal("cap breach should be rejected, got ", err)
	}
	if l.TotalSupply().Cmp(big.NewInt(90)) != 0 {
		t.Fatal("failed deposit should leave supply unchanged")
	}
	if l.BalanceOf(a).Cmp(big.NewInt(90)) != 0 {
		t.Fatal("failed deposit should leave balance unchanged")
	}
	// filling up to the cap exactly is fine
	if err := l.Deposit(a, big.NewInt(10)); err != nil {
		t.Fatal(err)
	}
}

func TestWithdrawRoundTrip(t *testing.T) {
	vault := &testVault{}
	l := ledger.New(&ledger.Config{MaxSupply: big.NewInt(1000), Vault: vault})
	a := addr(1)

	if err := l.Deposit(a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := l.Withdraw(a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}

	if l.BalanceOf(a).Sign() != 0 || l.CollateralOf(a).Sign() != 0 {
		t.Fatal("round trip should return the account to zero")
	}
	if l.TotalSupply().Sign() != 0 {
		t.Fatal("round trip should burn the whole supply")
	}
	if l.GetVotes(a).Sign() != 0 {
		t.Fatal("round trip should zero the voting power")
	}
	if len(vault.released) != 1 || vault.released[0].Cmp(big.NewInt(100)) != 0 {
		t.Fatal("exactly the deposited currency should be released")
	}
}

func TestWithdrawRejectedRelease(t *testing.T) {
	vault := &testVault{err: errors.New("recipient reverted")}
	l := ledger.New(&ledger.Config{MaxSupply: big.NewInt(1000), Vault: vault})
	a := addr(1)

	if err := l.Deposit(a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	seq := l.Seq()

	if err := l.Withdraw(a, big.NewInt(40)); err != ledger.ErrTransferRejected {
		t.Fatal("rejected release should fail the withdrawal, got ", err)
	}

	if l.BalanceOf(a).Cmp(big.NewInt(100)) != 0 {
		t.Fatal("balance must be untouched after a rejected release")
	}
	if l.CollateralOf(a).Cmp(big.NewInt(100)) != 0 {
		t.Fatal("collateral must be untouched after a rejected release")
	}
	if l.TotalSupply().Cmp(big.NewInt(100)) != 0 {
		t.Fatal("supply must be untouched after a rejected release")
	}
	if l.Seq() != seq {
		t.Fatal("a rejected withdrawal must not commit a mutation")
	}
}

func TestWithdrawInsufficientCollateral(t *testing.T) {
	l := newLedger(1000)
	a, b := addr(1), addr(2)

	if err := l.Deposit(a, big.NewInt(50)); err != nil {
		t.Fatal(err)
	}
	if err := l.Deposit(b, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := l.Transfer(b, a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}

	// a now holds 150 credits but only ever deposited 50
	if err := l.Withdraw(a, big.NewInt(100)); err != ledger.ErrInsufficientCollateral {
		t.Fatal("withdraw above deposits should be rejected, got ", err)
	}
	if err := l.Withdraw(a, big.NewInt(200)); err != ledger.ErrInsufficientBalance {
		t.Fatal("withdraw above balance should be rejected, got ", err)
	}
	if err := l.Withdraw(a, big.NewInt(50)); err != nil {
		t.Fatal(err)
	}
}

func TestTransferMovesVotes(t *testing.T) {
	l := newLedger(1000)
	a, b := addr(1), addr(2)

	if err := l.Deposit(a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := l.Transfer(a, b, big.NewInt(30)); err != nil {
		t.Fatal(err)
	}

	if l.BalanceOf(a).Cmp(big.NewInt(70)) != 0 {
		t.Fatal("sender balance should be 70")
	}
	if l.BalanceOf(b).Cmp(big.NewInt(30)) != 0 {
		t.Fatal("receiver balance should be 30")
	}
	if l.GetVotes(a).Cmp(big.NewInt(70)) != 0 {
		t.Fatal("sender votes should be 70")
	}
	if l.GetVotes(b).Cmp(big.NewInt(30)) != 0 {
		t.Fatal("receiver votes should be 30")
	}
}

func TestZeroAddressRejected(t *testing.T) {
	l := newLedger(1000)
	a := addr(1)
	zero := types.Address{}

	if err := l.Deposit(zero, big.NewInt(10)); err != ledger.ErrZeroAddress {
		t.Fatal("deposit to the zero address should be rejected, got ", err)
	}
	if err := l.Deposit(a, big.NewInt(10)); err != nil {
		t.Fatal(err)
	}
	if err := l.Transfer(a, zero, big.NewInt(5)); err != ledger.ErrZeroAddress {
		t.Fatal("transfer to the zero address should be rejected, got ", err)
	}
	if err := l.Transfer(zero, a, big.NewInt(5)); err != ledger.ErrZeroAddress {
		t.Fatal("transfer from the zero address should be rejected, got ", err)
	}
	if err := l.Withdraw(zero, big.NewInt(5)); err != ledger.ErrZeroAddress {
		t.Fatal("withdraw from the zero address should be rejected, got ", err)
	}
}

func TestTransferInsufficientBalance(t *testing.T) {
	l := newLedger(1000)
	a, b := addr(1), addr(2)

	if err := l.Transfer(a, b, big.NewInt(1)); err != ledger.ErrInsufficientBalance {
		t.Fatal("transfer from empty account should be rejected, got ", err)
	}
}

func TestTransferSameDelegate(t *testing.T) {
	l := newLedger(1000)
	a, b, c := addr(1), addr(2), addr(3)

	if err := l.Deposit(a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := l.Deposit(b, big.NewInt(50)); err != nil {
		t.Fatal(err)
	}
	if err := l.Delegate(a, c); err != nil {
		t.Fatal(err)
	}
	if err := l.Delegate(b, c); err != nil {
		t.Fatal(err)
	}
	if l.GetVotes(c).Cmp(big.NewInt(150)) != 0 {
		t.Fatal("delegate should hold both balances")
	}

	// both sides route to c: no voting power moves
	if err := l.Transfer(a, b, big.NewInt(40)); err != nil {
		t.Fatal(err)
	}
	if l.GetVotes(c).Cmp(big.NewInt(150)) != 0 {
		t.Fatal("same delegate transfer should not move votes")
	}
}

func TestDelegateScenario(t *testing.T) {
	l := newLedger(10000)
	a, b := addr(1), addr(2)

	if err := l.Deposit(a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if l.GetVotes(a).Cmp(big.NewInt(100)) != 0 {
		t.Fatal("votes(a) should be 100")
	}

	if err := l.Delegate(a, b); err != nil {
		t.Fatal(err)
	}
	if l.GetVotes(a).Sign() != 0 {
		t.Fatal("votes(a) should be 0 after delegating away")
	}
	if l.GetVotes(b).Cmp(big.NewInt(100)) != 0 {
		t.Fatal("votes(b) should be 100")
	}

	if err := l.Deposit(a, big.NewInt(50)); err != nil {
		t.Fatal(err)
	}
	if l.GetVotes(b).Cmp(big.NewInt(150)) != 0 {
		t.Fatal("new deposits should route to the delegate")
	}
	if l.GetVotes(a).Sign() != 0 {
		t.Fatal("votes(a) should stay 0")
	}

	if err := l.Withdraw(a, big.NewInt(30)); err != nil {
		t.Fatal(err)
	}
	if l.BalanceOf(a).Cmp(big.NewInt(120)) != 0 {
		t.Fatal("balance(a) should be 120")
	}
	if l.GetVotes(b).Cmp(big.NewInt(120)) != 0 {
		t.Fatal("votes(b) should be 120")
	}
}

func TestDelegateIdempotent(t *testing.T) {
	l := newLedger(1000)
	a, b := addr(1), addr(2)

	if err := l.Deposit(a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := l.Delegate(a, b); err != nil {
		t.Fatal(err)
	}
	seq := l.Seq()

	if err := l.Delegate(a, b); err != nil {
		t.Fatal(err)
	}
	if l.Seq() != seq {
		t.Fatal("re-delegating to the same target should be a no-op")
	}
	if l.GetVotes(b).Cmp(big.NewInt(100)) != 0 {
		t.Fatal("votes must not be double applied")
	}

	// moving back to self releases the delegation
	if err := l.Delegate(a, a); err != nil {
		t.Fatal(err)
	}
	if l.GetVotes(a).Cmp(big.NewInt(100)) != 0 {
		t.Fatal("self delegation should restore own votes")
	}
	if l.GetVotes(b).Sign() != 0 {
		t.Fatal("old delegate should be emptied")
	}
	if l.EffectiveDelegate(a) != a {
		t.Fatal("account should be its own delegate again")
	}
}

func TestHistoricalAccuracy(t *testing.T) {
	l := newLedger(10000)
	a, b := addr(1), addr(2)

	if err := l.Deposit(a, big.NewInt(100)); err != nil { // seq 1
		t.Fatal(err)
	}
	if err := l.Deposit(a, big.NewInt(20)); err != nil { // seq 2
		t.Fatal(err)
	}
	if err := l.Delegate(a, b); err != nil { // seq 3
		t.Fatal(err)
	}
	if err := l.Deposit(a, big.NewInt(5)); err != nil { // seq 4
		t.Fatal(err)
	}

	votes, err := l.GetPastVotes(a, 2)
	if err != nil {
		t.Fatal(err)
	}
	if votes.Cmp(big.NewInt(120)) != 0 {
		t.Fatal("votes(a) as of seq 2 should be 120, got ", votes)
	}

	votes, err = l.GetPastVotes(a, 3)
	if err != nil {
		t.Fatal(err)
	}
	if votes.Sign() != 0 {
		t.Fatal("votes(a) as of seq 3 should be 0, got ", votes)
	}

	votes, err = l.GetPastVotes(b, 3)
	if err != nil {
		t.Fatal(err)
	}
	if votes.Cmp(big.NewInt(120)) != 0 {
		t.Fatal("votes(b) as of seq 3 should be 120, got ", votes)
	}

	votes, err = l.GetPastVotes(b, 1)
	if err != nil {
		t.Fatal(err)
	}
	if votes.Sign() != 0 {
		t.Fatal("votes(b) as of seq 1 should be 0, got ", votes)
	}
}

func TestGetPastVotesFutureLookup(t *testing.T) {
	l := newLedger(1000)
	a := addr(1)

	if _, err := l.GetPastVotes(a, 0); err != ledger.ErrFutureLookup {
		t.Fatal("nothing is finalized on a fresh ledger, got ", err)
	}

	if err := l.Deposit(a, big.NewInt(10)); err != nil { // seq 1
		t.Fatal(err)
	}
	if err := l.Deposit(a, big.NewInt(10)); err != nil { // seq 2
		t.Fatal(err)
	}

	if _, err := l.GetPastVotes(a, 2); err != ledger.ErrFutureLookup {
		t.Fatal("the current point is not queryable, got ", err)
	}
	if _, err := l.GetPastVotes(a, 5); err != ledger.ErrFutureLookup {
		t.Fatal("future points are not queryable, got ", err)
	}
	if _, err := l.GetPastVotes(a, 1); err != nil {
		t.Fatal(err)
	}
}

func TestNonce(t *testing.T) {
	l := newLedger(1000)
	a := addr(1)

	if l.Nonce(a) != 0 {
		t.Fatal("fresh account nonce should be 0")
	}
	if err := l.UseNonce(a, 3); err != ledger.ErrBadNonce {
		t.Fatal("wrong nonce should be rejected, got ", err)
	}
	if err := l.UseNonce(a, 0); err != nil {
		t.Fatal(err)
	}
	if err := l.UseNonce(a, 0); err != ledger.ErrBadNonce {
		t.Fatal("nonce replay should be rejected, got ", err)
	}
	if l.Nonce(a) != 1 {
		t.Fatal("nonce should have advanced to 1")
	}
}

func TestBackingInvariant(t *testing.T) {
	vault := &testVault{}
	l := ledger.New(&ledger.Config{MaxSupply: big.NewInt(100000), Vault: vault})
	accounts := []types.Address{addr(1), addr(2), addr(3), addr(4)}

	if err := l.Deposit(accounts[0], big.NewInt(500)); err != nil {
		t.Fatal(err)
	}
	if err := l.Deposit(accounts[1], big.NewInt(300)); err != nil {
		t.Fatal(err)
	}
	if err := l.Transfer(accounts[0], accounts[2], big.NewInt(120)); err != nil {
		t.Fatal(err)
	}
	if err := l.Delegate(accounts[1], accounts[3]); err != nil {
		t.Fatal(err)
	}
	if err := l.Withdraw(accounts[0], big.NewInt(80)); err != nil {
		t.Fatal(err)
	}
	if err := l.Deposit(accounts[3], big.NewInt(40)); err != nil {
		t.Fatal(err)
	}

	balances := big.NewInt(0)
	collateral := big.NewInt(0)
	votes := big.NewInt(0)
	for _, a := range accounts {
		balances.Add(balances, l.BalanceOf(a))
		collateral.Add(collateral, l.CollateralOf(a))
		votes.Add(votes, l.GetVotes(a))
	}

	supply := l.TotalSupply()
	if supply.Cmp(balances) != 0 {
		t.Fatalf("supply %s != sum of balances %s", supply, balances)
	}
	if supply.Cmp(collateral) != 0 {
		t.Fatalf("supply %s != sum of collateral %s", supply, collateral)
	}
	if supply.Cmp(votes) != 0 {
		t.Fatalf("supply %s != sum of votes %s: every unit must be counted once", supply, votes)
	}
}

func TestNotify(t *testing.T) {
	var got []types.Event
	l := ledger.New(&ledger.Config{
		MaxSupply: big.NewInt(1000),
		Notify:    func(e types.Event) { got = append(got, e) },
	})
	a, b := addr(1), addr(2)

	if err := l.Deposit(a, big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := l.Transfer(a, b, big.NewInt(10)); err != nil {
		t.Fatal(err)
	}
	if err := l.Delegate(a, b); err != nil {
		t.Fatal(err)
	}
	if err := l.Delegate(a, b); err != nil { // no-op, no event
		t.Fatal(err)
	}
	if err := l.Withdraw(a, big.NewInt(5)); err != nil {
		t.Fatal(err)
	}

	if len(got) != 4 {
		t.Fatal("expected 4 events, got ", len(got))
	}
	if dep, ok := got[0].(types.DepositEvent); !ok || dep.Seq != 1 {
		t.Fatal("first event should be the deposit at seq 1")
	}
	if _, ok := got[1].(types.TransferEvent); !ok {
		t.Fatal("second event should be the transfer")
	}
	if del, ok := got[2].(types.DelegateEvent); !ok || del.To != b {
		t.Fatal("third event should be the delegation to b")
	}
	if wd, ok := got[3].(types.WithdrawEvent); !ok || wd.Seq != 4 {
		t.Fatal("fourth event should be the withdrawal at seq 4")
	}
}
