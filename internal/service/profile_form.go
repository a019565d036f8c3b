package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/domain/policy"
	"github.com/target/profilegate/internal/domain/profile"
	"github.com/target/profilegate/internal/domain/verification"
	apperrors "github.com/target/profilegate/internal/errors"
	"github.com/target/profilegate/internal/multipart"
)

// ProfileForm is the editable copy of one user's profile.
//
// Server data enters through Load and LoadAttachments and never touches the
// bank-verified flag. User input enters through SetField and Attach; editing a
// bank-identifying field after verification revokes it.
type ProfileForm struct {
	mu          sync.Mutex
	role        domainauth.Role
	record      *profile.Record
	attachments []multipart.Attachment
	required    map[string]bool
	tracker     *verification.Tracker
}

// NewProfileForm returns an empty form for role.
func NewProfileForm(role domainauth.Role) (*ProfileForm, error) {
	if !role.RequiresProfile() {
		return nil, apperrors.ValidationField("role", fmt.Sprintf("role %q has no profile form", role))
	}
	rec, err := emptyRecord(profileKind(role))
	if err != nil {
		return nil, err
	}
	return &ProfileForm{
		role:     role,
		record:   rec,
		required: make(map[string]bool),
		tracker:  verification.NewTracker(),
	}, nil
}

// Role returns the role the form was created for.
func (f *ProfileForm) Role() domainauth.Role { return f.role }

// Load repopulates the form from server data. The verified flag mirrors the
// record's and no invalidation fires. A nil record resets the form.
func (f *ProfileForm) Load(rec *profile.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if rec == nil {
		empty, err := emptyRecord(profileKind(f.role))
		if err != nil {
			return err
		}
		f.record = empty
		f.tracker.Load(nil)
		return nil
	}
	if rec.Kind != profileKind(f.role) {
		return apperrors.Validation(fmt.Sprintf("%s record cannot load into a %s form", rec.Kind, f.role))
	}
	f.record = rec.Clone()
	f.tracker.Load(f.record.BankDetails())
	return nil
}

// SetField applies a user edit by wire field name. It reports whether the
// edit revoked bank verification.
func (f *ProfileForm) SetField(name, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var target *profile.Text
	for _, r := range fieldRefs(f.record, true) {
		if r.name == name {
			target = r.ptr
			break
		}
	}
	if target == nil {
		return false, apperrors.ValidationField(name, "unknown profile field")
	}

	revoked := false
	if bf, ok := bankFieldNames[name]; ok {
		var err error
		if revoked, err = f.tracker.Edit(bf, value); err != nil {
			return false, err
		}
	}
	*target = profile.Text(value)
	if bank := f.record.BankDetails(); bank != nil {
		bank.Verified = f.tracker.Verified()
	}
	return revoked, nil
}

// Attach adds or replaces a user-selected attachment. The attachment is
// always sent on the next submission.
func (f *ProfileForm) Attach(a multipart.Attachment) error {
	if a.Name == "" {
		return apperrors.ValidationField("name", "attachment name is required")
	}
	a.FromServer = false
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putLocked(a)
	return nil
}

// LoadAttachments records documents the server already holds. They are
// never re-sent.
func (f *ProfileForm) LoadAttachments(atts []multipart.Attachment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range atts {
		a.FromServer = true
		f.putLocked(a)
	}
}

func (f *ProfileForm) putLocked(a multipart.Attachment) {
	for i := range f.attachments {
		if f.attachments[i].Name == a.Name {
			f.attachments[i] = a
			return
		}
	}
	f.attachments = append(f.attachments, a)
}

// Require marks attachment fields whose read failure must abort a submission.
func (f *ProfileForm) Require(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.required[n] = true
	}
}

// Required reports whether name was marked required.
func (f *ProfileForm) Required(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.required[name]
}

// Record returns a copy of the current record.
func (f *ProfileForm) Record() *profile.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record.Clone()
}

// Attachments returns a copy of the current attachments in insertion order.
func (f *ProfileForm) Attachments() []multipart.Attachment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.attachments)
}

// Parts returns the fields followed by the attachments.
func (f *ProfileForm) Parts() []multipart.Part {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := ProfileFields(f.record)
	for _, a := range f.attachments {
		parts = append(parts, a)
	}
	return parts
}

// Missing lists the field groups the completeness policy still wants.
func (f *ProfileForm) Missing() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return policy.MissingFields(f.role, f.record)
}

// BankState returns the bank-verified state.
func (f *ProfileForm) BankState() verification.State { return f.tracker.State() }

// ConfirmBank runs the external confirmation step. Only a successful
// confirmation marks the bank details verified.
func (f *ProfileForm) ConfirmBank(ctx context.Context, c verification.Confirmer) error {
	if err := f.tracker.Confirm(ctx, c); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if bank := f.record.BankDetails(); bank != nil {
		bank.Verified = true
	}
	return nil
}

// saved re-snapshots the form from a successful submission echo and marks
// every sent attachment as held by the server.
func (f *ProfileForm) saved(rec *profile.Record, sent []multipart.Part) error {
	if err := f.Load(rec); err != nil {
		return err
	}
	names := make(map[string]bool, len(sent))
	for _, p := range sent {
		if a, ok := p.(multipart.Attachment); ok {
			names[a.Name] = true
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.attachments {
		if names[f.attachments[i].Name] {
			f.attachments[i].FromServer = true
		}
	}
	return nil
}
