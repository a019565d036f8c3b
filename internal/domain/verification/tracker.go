// Package verification tracks whether the bank details on a profile are still
// the ones the backend verified.
package verification

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/target/profilegate/internal/domain/profile"
)

// State of the bank-verified flag.
type State string

const (
	StateVerified   State = "verified"
	StateUnverified State = "unverified"
)

// Field identifies a bank-identifying form field.
type Field string

const (
	FieldBankName      Field = "bank_name"
	FieldAccountNumber Field = "account_number"
	FieldRoutingCode   Field = "ifsc_code"
	FieldBranchName    Field = "branch_name"
)

// ErrNotConfirmed is returned when the remote service declines the confirmation.
var ErrNotConfirmed = errors.New("bank details not confirmed")

// ErrChangedDuringConfirm is returned when the details were edited while a
// confirmation was in flight.
var ErrChangedDuringConfirm = errors.New("bank details changed during confirmation")

// Snapshot holds the bank-identifying values.
type Snapshot struct {
	BankName      string
	AccountNumber string
	RoutingCode   string
	BranchName    string
}

// SnapshotOf copies the identifying values out of b. A nil b yields the zero snapshot.
func SnapshotOf(b *profile.BankDetails) Snapshot {
	if b == nil {
		return Snapshot{}
	}
	return Snapshot{
		BankName:      string(b.BankName),
		AccountNumber: string(b.AccountNumber),
		RoutingCode:   string(b.RoutingCode),
		BranchName:    string(b.BranchName),
	}
}

func (s *Snapshot) field(f Field) (*string, error) {
	switch f {
	case FieldBankName:
		return &s.BankName, nil
	case FieldAccountNumber:
		return &s.AccountNumber, nil
	case FieldRoutingCode:
		return &s.RoutingCode, nil
	case FieldBranchName:
		return &s.BranchName, nil
	default:
		return nil, fmt.Errorf("unknown bank field %q", f)
	}
}

// Confirmer performs the external confirmation step (for example a user
// acknowledging receipt of a small test disbursement).
type Confirmer interface {
	ConfirmBank(ctx context.Context) (bool, error)
}

// Tracker is the Verified/Unverified state machine for one profile.
//
// Load is the only programmatic entry point and never invalidates. Edit is
// for user input and invalidates whenever a value differs from the snapshot
// taken at the last Load. Confirm is the only way back to Verified.
type Tracker struct {
	mu       sync.Mutex
	state    State
	snapshot Snapshot
	current  Snapshot
}

// NewTracker returns a tracker in the Unverified state with empty details.
func NewTracker() *Tracker {
	return &Tracker{state: StateUnverified}
}

// Load repopulates the tracker from server data, taking a fresh snapshot.
// The state mirrors the backend's stored flag.
func (t *Tracker) Load(b *profile.BankDetails) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snapshot = SnapshotOf(b)
	t.current = t.snapshot
	t.state = StateUnverified
	if b != nil && b.Verified {
		t.state = StateVerified
	}
}

// Edit records a user edit. It reports whether the edit revoked verification.
func (t *Tracker) Edit(f Field, value string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, err := t.current.field(f)
	if err != nil {
		return false, err
	}
	*cur = value

	snap, _ := t.snapshot.field(f)
	if t.state == StateVerified && value != *snap {
		t.state = StateUnverified
		return true, nil
	}
	return false, nil
}

// Confirm runs the external confirmation and moves to Verified on success.
// The current details become the new snapshot.
func (t *Tracker) Confirm(ctx context.Context, c Confirmer) error {
	t.mu.Lock()
	started := t.current
	t.mu.Unlock()

	ok, err := c.ConfirmBank(ctx)
	if err != nil {
		return fmt.Errorf("confirm bank details: %w", err)
	}
	if !ok {
		return ErrNotConfirmed
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current != started {
		return ErrChangedDuringConfirm
	}
	t.snapshot = t.current
	t.state = StateVerified
	return nil
}

// State returns the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Verified reports whether the state is Verified.
func (t *Tracker) Verified() bool { return t.State() == StateVerified }

// Current returns the values as edited so far.
func (t *Tracker) Current() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
