package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/domain/profile"
	"github.com/target/profilegate/internal/domain/verification"
	apperrors "github.com/target/profilegate/internal/errors"
	"github.com/target/profilegate/internal/multipart"
	"github.com/target/profilegate/internal/testutil"
)

type confirmerFunc func(ctx context.Context) (bool, error)

func (f confirmerFunc) ConfirmBank(ctx context.Context) (bool, error) { return f(ctx) }

func verifiedEmployeeForm(t *testing.T) *ProfileForm {
	t.Helper()
	form, err := NewProfileForm(domainauth.RoleEmployee)
	require.NoError(t, err)
	require.NoError(t, form.Load(testutil.NewEmployee().BankVerified().Build()))
	require.Equal(t, verification.StateVerified, form.BankState())
	return form
}

func TestNewProfileForm_ClientHasNoForm(t *testing.T) {
	_, err := NewProfileForm(domainauth.RoleClient)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProfileForm_LoadNeverRevokes(t *testing.T) {
	form := verifiedEmployeeForm(t)

	other := testutil.NewEmployee().BankVerified().With(func(e *profile.Employee) {
		e.Bank = &profile.BankDetails{BankName: "Canara", AccountNumber: "999", RoutingCode: "CNRB0000001", Verified: true}
	}).Build()
	require.NoError(t, form.Load(other))
	assert.Equal(t, verification.StateVerified, form.BankState())

	require.NoError(t, form.Load(testutil.NewEmployee().Build()))
	assert.Equal(t, verification.StateUnverified, form.BankState())
}

func TestProfileForm_LoadCopiesRecord(t *testing.T) {
	form, err := NewProfileForm(domainauth.RoleEmployee)
	require.NoError(t, err)
	rec := testutil.NewEmployee().Build()
	require.NoError(t, form.Load(rec))

	_, err = form.SetField("correspondence_address[city]", "Mysuru")
	require.NoError(t, err)
	assert.Equal(t, profile.Text("Bengaluru"), rec.Employee.CorrespondenceAddress.City)
	assert.Equal(t, profile.Text("Mysuru"), form.Record().Employee.CorrespondenceAddress.City)
}

func TestProfileForm_LoadRejectsWrongKind(t *testing.T) {
	form, err := NewProfileForm(domainauth.RoleEmployee)
	require.NoError(t, err)
	assert.True(t, apperrors.IsValidation(form.Load(testutil.NewRetailer().Build())))
}

func TestProfileForm_LoadNilResets(t *testing.T) {
	form := verifiedEmployeeForm(t)
	require.NoError(t, form.Load(nil))
	assert.Equal(t, verification.StateUnverified, form.BankState())
	assert.Empty(t, form.Parts())
}

func TestProfileForm_SetField(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		value       string
		wantRevoked bool
	}{
		{name: "non-bank field", field: "gender", value: "male"},
		{name: "bank field unchanged", field: "bank_details[account_number]", value: "000123456789"},
		{name: "account number", field: "bank_details[account_number]", value: "000987654321", wantRevoked: true},
		{name: "routing code", field: "bank_details[ifsc_code]", value: "SBIN0000001", wantRevoked: true},
		{name: "bank name", field: "bank_details[bank_name]", value: "Canara", wantRevoked: true},
		{name: "branch name", field: "bank_details[branch_name]", value: "Indiranagar", wantRevoked: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := verifiedEmployeeForm(t)

			revoked, err := form.SetField(tt.field, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRevoked, revoked)
			assert.Equal(t, !tt.wantRevoked, form.Record().Employee.Bank.Verified)
		})
	}
}

func TestProfileForm_SetFieldRevertDoesNotReverify(t *testing.T) {
	form := verifiedEmployeeForm(t)

	revoked, err := form.SetField("bank_details[account_number]", "111")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = form.SetField("bank_details[account_number]", "000123456789")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, verification.StateUnverified, form.BankState())
}

func TestProfileForm_SetFieldUnknown(t *testing.T) {
	form, err := NewProfileForm(domainauth.RoleRetailer)
	require.NoError(t, err)

	_, err = form.SetField("dob", "1992-04-18")
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "dob", apperrors.GetField(err))
}

func TestProfileForm_SetFieldAllocatesNested(t *testing.T) {
	form, err := NewProfileForm(domainauth.RoleRetailer)
	require.NoError(t, err)

	_, err = form.SetField("shop_address[pincode]", "395003")
	require.NoError(t, err)
	rec := form.Record()
	require.NotNil(t, rec.Retailer.ShopAddress)
	assert.Equal(t, profile.Text("395003"), rec.Retailer.ShopAddress.PostalCode)
}

func TestProfileForm_ConfirmBank(t *testing.T) {
	form, err := NewProfileForm(domainauth.RoleEmployee)
	require.NoError(t, err)
	require.NoError(t, form.Load(testutil.NewEmployee().Build()))

	err = form.ConfirmBank(context.Background(), confirmerFunc(func(context.Context) (bool, error) { return false, nil }))
	assert.ErrorIs(t, err, verification.ErrNotConfirmed)
	assert.False(t, form.Record().Employee.Bank.Verified)

	require.NoError(t, form.ConfirmBank(context.Background(), confirmerFunc(func(context.Context) (bool, error) { return true, nil })))
	assert.True(t, form.Record().Employee.Bank.Verified)
	assert.Equal(t, verification.StateVerified, form.BankState())
}

func TestProfileForm_Attachments(t *testing.T) {
	form, err := NewProfileForm(domainauth.RoleRetailer)
	require.NoError(t, err)

	form.LoadAttachments([]multipart.Attachment{
		{Name: "shop_photo", Source: "https://cdn.example.com/shop.jpg"},
		{Name: "gst_certificate", Source: "https://cdn.example.com/gst.pdf"},
	})
	require.NoError(t, form.Attach(multipart.Attachment{Name: "shop_photo", Source: "/tmp/new-shop.jpg", FromServer: true}))
	assert.Error(t, form.Attach(multipart.Attachment{}))

	atts := form.Attachments()
	require.Len(t, atts, 2)
	assert.Equal(t, "shop_photo", atts[0].Name)
	assert.False(t, atts[0].FromServer)
	assert.Equal(t, "/tmp/new-shop.jpg", atts[0].Source)
	assert.True(t, atts[1].FromServer)

	pending := multipart.Pending(form.Parts())
	require.Len(t, pending, 1)
}

func TestProfileForm_Required(t *testing.T) {
	form, err := NewProfileForm(domainauth.RoleEmployee)
	require.NoError(t, err)
	form.Require("aadhaar_front", "pan_card")
	assert.True(t, form.Required("pan_card"))
	assert.False(t, form.Required("profile_photo"))
}
