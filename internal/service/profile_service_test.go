package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	stdmultipart "mime/multipart"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/profilegate/internal/adapters/profileapi"
	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/domain/gate"
	"github.com/target/profilegate/internal/domain/profile"
	"github.com/target/profilegate/internal/domain/verification"
	apperrors "github.com/target/profilegate/internal/errors"
	"github.com/target/profilegate/internal/multipart"
	"github.com/target/profilegate/internal/observability/statsd"
	"github.com/target/profilegate/internal/ports"
	"github.com/target/profilegate/internal/testutil"
)

type serviceFixture struct {
	controllerFixture
	svc *ProfileService
}

// newServiceFixture logs in an employee whose profile is missing dob.
func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	f := newControllerFixture(t)
	f.api.EXPECT().FetchProfile(gomock.Any(), "tok", domainauth.RoleEmployee).
		Return(testutil.NewEmployee().WithoutDOB().Build(), nil)
	st, err := f.ctrl.Login(context.Background(), LoginInput{Token: "tok", RawRole: "employee", UserID: "e1"})
	require.NoError(t, err)
	require.Equal(t, gate.ProfileIncomplete(domainauth.RoleEmployee), st.Mode)

	svc, err := NewProfileService(ProfileServiceOptions{API: f.api, Sessions: f.ctrl})
	require.NoError(t, err)
	return serviceFixture{controllerFixture: f, svc: svc}
}

func formNames(t *testing.T, body []byte, contentType string) []string {
	t.Helper()
	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	r := stdmultipart.NewReader(bytes.NewReader(body), params["boundary"])
	var names []string
	for {
		p, err := r.NextPart()
		if errors.Is(err, io.EOF) {
			return names
		}
		require.NoError(t, err)
		names = append(names, p.FormName())
	}
}

func TestNewProfileService_RequiresDependencies(t *testing.T) {
	_, err := NewProfileService(ProfileServiceOptions{})
	require.Error(t, err)
}

func TestSubmit_SendsFieldsAndNewAttachmentsOnly(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	dir := t.TempDir()
	photo := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(photo, []byte("png-bytes"), 0o600))

	form, err := f.svc.LoadForm(ctx, nil)
	require.NoError(t, err)
	_, err = form.SetField("dob", "1992-04-18")
	require.NoError(t, err)
	require.NoError(t, form.Attach(multipart.Attachment{Name: "profile_photo", Source: photo}))
	form.LoadAttachments([]multipart.Attachment{{Name: "aadhaar_front", Source: "https://cdn.example.com/a.jpg"}})

	var names []string
	f.api.EXPECT().
		SubmitProfile(gomock.Any(), "tok", domainauth.RoleEmployee, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ domainauth.Role, body []byte, ct string) (*profile.Record, error) {
			names = formNames(t, body, ct)
			return nil, nil
		})

	res, err := f.svc.Submit(ctx, form)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.Complete)

	assert.Contains(t, names, "dob")
	assert.Contains(t, names, "profile_photo")
	assert.NotContains(t, names, "aadhaar_front")
	assert.Equal(t, "name", names[0])
	assert.Equal(t, "profile_photo", names[len(names)-1])

	for _, a := range form.Attachments() {
		assert.True(t, a.FromServer, a.Name)
	}
}

func TestSubmit_UnreadableOptionalAttachmentWarns(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	form, err := f.svc.LoadForm(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, form.Attach(multipart.Attachment{Name: "pan_card", Source: filepath.Join(t.TempDir(), "missing.jpg")}))

	f.api.EXPECT().SubmitProfile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	res, err := f.svc.Submit(ctx, form)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "pan_card", res.Warnings[0].Field)
	assert.False(t, res.Complete)
	assert.Equal(t, gate.ProfileIncomplete(domainauth.RoleEmployee), res.Mode)
}

func TestSubmit_UnreadableRequiredAttachmentAborts(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	form, err := f.svc.LoadForm(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, form.Attach(multipart.Attachment{Name: "pan_card", Source: filepath.Join(t.TempDir(), "missing.jpg")}))
	form.Require("pan_card")

	_, err = f.svc.Submit(ctx, form)
	var readErr *multipart.AttachmentReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "pan_card", readErr.Field)
}

func TestSubmit_RejectionChangesNothing(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	before := f.ctrl.State()

	form, err := f.svc.LoadForm(ctx, nil)
	require.NoError(t, err)
	_, err = form.SetField("dob", "1992-04-18")
	require.NoError(t, err)

	rejection := &profileapi.ServerRejection{Status: 422, Message: "dob is in the future"}
	f.api.EXPECT().SubmitProfile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperrors.Wrap(rejection, apperrors.ErrCodeRejected, "submit profile"))

	_, err = f.svc.Submit(ctx, form)
	var got *profileapi.ServerRejection
	require.ErrorAs(t, err, &got)
	assert.True(t, apperrors.IsRejected(err))

	assert.Equal(t, before, f.ctrl.State())
	assert.False(t, cachedComplete(t, f.cache, "e1"))
	assert.Equal(t, profile.Text("1992-04-18"), form.Record().Employee.DateOfBirth)
}

func TestSubmit_UnauthorizedLogsOut(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	form, err := f.svc.LoadForm(ctx, nil)
	require.NoError(t, err)

	f.api.EXPECT().SubmitProfile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperrors.Unauthorized("401 Unauthorized"))

	_, err = f.svc.Submit(ctx, form)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, gate.LoggedOut, f.ctrl.Mode())
	assert.Zero(t, f.cache.Len())
}

func TestSubmit_UsesServerEcho(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	form, err := f.svc.LoadForm(ctx, nil)
	require.NoError(t, err)

	echo := testutil.NewEmployee().BankVerified().Build()
	f.api.EXPECT().SubmitProfile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(echo, nil)

	res, err := f.svc.Submit(ctx, form)
	require.NoError(t, err)
	assert.True(t, res.Complete)
	assert.Equal(t, echo, res.Record)
	assert.Equal(t, verification.StateVerified, form.BankState())
	assert.Equal(t, echo, f.ctrl.Session().Profile)
}

func TestSubmit_Guards(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, nil)
	assert.True(t, apperrors.IsValidation(err))

	retailerForm, err := NewProfileForm(domainauth.RoleRetailer)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, retailerForm)
	assert.True(t, apperrors.IsValidation(err))

	require.NoError(t, f.ctrl.Logout(ctx))
	form, err := NewProfileForm(domainauth.RoleEmployee)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, form)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestDocuments_SkipsMissingAndKeepsOrder(t *testing.T) {
	f := newServiceFixture(t)

	f.api.EXPECT().FetchDocument(gomock.Any(), "tok", domainauth.RoleEmployee, "aadhaar_front").
		Return(ports.Document{Type: "aadhaar_front", URL: "https://cdn.example.com/a.jpg", Filename: "a.jpg"}, true, nil)
	f.api.EXPECT().FetchDocument(gomock.Any(), "tok", domainauth.RoleEmployee, "pan_card").
		Return(ports.Document{}, false, nil)
	f.api.EXPECT().FetchDocument(gomock.Any(), "tok", domainauth.RoleEmployee, "profile_photo").
		Return(ports.Document{Type: "profile_photo", URL: "https://cdn.example.com/p.png", ContentType: "image/png"}, true, nil)

	docs, err := f.svc.Documents(context.Background(), []string{"aadhaar_front", "pan_card", "profile_photo"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "aadhaar_front", docs[0].Name)
	assert.Equal(t, "profile_photo", docs[1].Name)
	for _, d := range docs {
		assert.True(t, d.FromServer)
		assert.True(t, d.AlreadyUploaded())
	}
}

func TestDocuments_FailurePropagates(t *testing.T) {
	f := newServiceFixture(t)

	f.api.EXPECT().FetchDocument(gomock.Any(), gomock.Any(), gomock.Any(), "pan_card").
		Return(ports.Document{}, false, apperrors.Network(errors.New("reset"), "GET document"))

	_, err := f.svc.Documents(context.Background(), []string{"pan_card"})
	assert.True(t, apperrors.IsNetwork(err))
	assert.True(t, f.ctrl.Session().LoggedIn())
}

func TestLoadForm_PopulatesFromSessionAndDocuments(t *testing.T) {
	f := newServiceFixture(t)

	f.api.EXPECT().FetchDocument(gomock.Any(), gomock.Any(), gomock.Any(), "profile_photo").
		Return(ports.Document{URL: "https://cdn.example.com/p.png"}, true, nil)

	form, err := f.svc.LoadForm(context.Background(), []string{"profile_photo"})
	require.NoError(t, err)
	assert.Equal(t, profile.Text("Asha Rao"), form.Record().Employee.Name)
	require.Len(t, form.Attachments(), 1)

	missing, err := form.Missing()
	require.NoError(t, err)
	assert.Equal(t, []string{"dob"}, missing)
}

func TestConfirmBank(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	form, err := f.svc.LoadForm(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, verification.StateUnverified, form.BankState())

	f.api.EXPECT().ConfirmBank(gomock.Any(), "tok", domainauth.RoleEmployee).Return(false, nil)
	err = f.svc.ConfirmBank(ctx, form)
	assert.ErrorIs(t, err, verification.ErrNotConfirmed)
	assert.Equal(t, verification.StateUnverified, form.BankState())

	f.api.EXPECT().ConfirmBank(gomock.Any(), "tok", domainauth.RoleEmployee).Return(true, nil)
	require.NoError(t, f.svc.ConfirmBank(ctx, form))
	assert.Equal(t, verification.StateVerified, form.BankState())
	assert.True(t, form.Record().Employee.Bank.Verified)
}

func TestConfirmBank_UnauthorizedLogsOut(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	form, err := f.svc.LoadForm(ctx, nil)
	require.NoError(t, err)

	f.api.EXPECT().ConfirmBank(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, apperrors.Unauthorized("expired"))
	err = f.svc.ConfirmBank(ctx, form)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, gate.LoggedOut, f.ctrl.Mode())
}

func TestSubmit_EmitsMetrics(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	rec := &statsd.Recorder{}
	svc, err := NewProfileService(ProfileServiceOptions{API: f.api, Sessions: f.ctrl, Metrics: rec})
	require.NoError(t, err)

	form, err := svc.LoadForm(ctx, nil)
	require.NoError(t, err)

	f.api.EXPECT().SubmitProfile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, apperrors.Wrap(&profileapi.ServerRejection{Status: 400}, apperrors.ErrCodeRejected, "submit profile"))
	_, err = svc.Submit(ctx, form)
	require.Error(t, err)

	f.api.EXPECT().SubmitProfile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err = svc.Submit(ctx, form)
	require.NoError(t, err)

	submits := rec.Named("profile.submit")
	require.Len(t, submits, 2)
	assert.Equal(t, "rejected", submits[0].Tags["result"])
	assert.Equal(t, "success", submits[1].Tags["result"])
	assert.Len(t, rec.Named("profile.submit.bytes"), 1)
	assert.Len(t, rec.Named("profile.submit.duration"), 2)
}
