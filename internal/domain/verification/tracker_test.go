package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/profilegate/internal/domain/profile"
)

type confirmFunc func(ctx context.Context) (bool, error)

func (f confirmFunc) ConfirmBank(ctx context.Context) (bool, error) { return f(ctx) }

func verifiedBank() *profile.BankDetails {
	return &profile.BankDetails{
		BankName:      "State Bank",
		AccountNumber: "000123",
		RoutingCode:   "SBIN0001",
		BranchName:    "MG Road",
		Verified:      true,
	}
}

func TestTracker_LoadMirrorsBackendFlag(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, StateUnverified, tr.State())

	tr.Load(verifiedBank())
	assert.Equal(t, StateVerified, tr.State())

	b := verifiedBank()
	b.Verified = false
	tr.Load(b)
	assert.Equal(t, StateUnverified, tr.State())

	tr.Load(nil)
	assert.Equal(t, StateUnverified, tr.State())
}

func TestTracker_EditAccountNumberRevokes(t *testing.T) {
	tr := NewTracker()
	tr.Load(verifiedBank())

	revoked, err := tr.Edit(FieldAccountNumber, "999999")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, StateUnverified, tr.State())
}

func TestTracker_EditEveryIdentifyingField(t *testing.T) {
	for _, f := range []Field{FieldBankName, FieldAccountNumber, FieldRoutingCode, FieldBranchName} {
		t.Run(string(f), func(t *testing.T) {
			tr := NewTracker()
			tr.Load(verifiedBank())
			revoked, err := tr.Edit(f, "changed")
			require.NoError(t, err)
			assert.True(t, revoked)
			assert.False(t, tr.Verified())
		})
	}
}

func TestTracker_EditToSameValueKeepsVerified(t *testing.T) {
	tr := NewTracker()
	tr.Load(verifiedBank())

	revoked, err := tr.Edit(FieldAccountNumber, "000123")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.True(t, tr.Verified())
}

func TestTracker_RevertDoesNotRestore(t *testing.T) {
	tr := NewTracker()
	tr.Load(verifiedBank())

	_, err := tr.Edit(FieldAccountNumber, "111")
	require.NoError(t, err)
	_, err = tr.Edit(FieldAccountNumber, "000123")
	require.NoError(t, err)
	assert.Equal(t, StateUnverified, tr.State())

	_, err = tr.Edit(FieldAccountNumber, "222")
	require.NoError(t, err)
	assert.Equal(t, StateUnverified, tr.State())
}

func TestTracker_ReloadDoesNotRevoke(t *testing.T) {
	tr := NewTracker()
	tr.Load(verifiedBank())

	// Loading the same profile again sets every field programmatically.
	tr.Load(verifiedBank())
	assert.True(t, tr.Verified())

	changed := verifiedBank()
	changed.AccountNumber = "424242"
	tr.Load(changed)
	assert.True(t, tr.Verified())
	assert.Equal(t, "424242", tr.Current().AccountNumber)
}

func TestTracker_UnknownField(t *testing.T) {
	tr := NewTracker()
	_, err := tr.Edit(Field("swift"), "x")
	require.Error(t, err)
}

func TestTracker_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("success verifies and resnapshots", func(t *testing.T) {
		tr := NewTracker()
		tr.Load(verifiedBank())
		_, _ = tr.Edit(FieldAccountNumber, "777")

		err := tr.Confirm(ctx, confirmFunc(func(context.Context) (bool, error) { return true, nil }))
		require.NoError(t, err)
		assert.True(t, tr.Verified())

		revoked, _ := tr.Edit(FieldAccountNumber, "777")
		assert.False(t, revoked)
	})

	t.Run("declined stays unverified", func(t *testing.T) {
		tr := NewTracker()
		err := tr.Confirm(ctx, confirmFunc(func(context.Context) (bool, error) { return false, nil }))
		assert.ErrorIs(t, err, ErrNotConfirmed)
		assert.False(t, tr.Verified())
	})

	t.Run("remote error stays unverified", func(t *testing.T) {
		tr := NewTracker()
		boom := errors.New("boom")
		err := tr.Confirm(ctx, confirmFunc(func(context.Context) (bool, error) { return false, boom }))
		assert.ErrorIs(t, err, boom)
		assert.False(t, tr.Verified())
	})

	t.Run("edit during confirmation", func(t *testing.T) {
		tr := NewTracker()
		err := tr.Confirm(ctx, confirmFunc(func(context.Context) (bool, error) {
			_, _ = tr.Edit(FieldBranchName, "elsewhere")
			return true, nil
		}))
		assert.ErrorIs(t, err, ErrChangedDuringConfirm)
		assert.False(t, tr.Verified())
	})
}
