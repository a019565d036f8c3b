package service

import (
	"fmt"

	"github.com/target/profilegate/internal/domain/profile"
	"github.com/target/profilegate/internal/domain/verification"
	"github.com/target/profilegate/internal/multipart"
)

// fieldRef binds a wire field name to the value it carries inside a record.
type fieldRef struct {
	name string
	ptr  *profile.Text
}

var bankFieldNames = map[string]verification.Field{
	"bank_details[bank_name]":      verification.FieldBankName,
	"bank_details[account_number]": verification.FieldAccountNumber,
	"bank_details[ifsc_code]":      verification.FieldRoutingCode,
	"bank_details[branch_name]":    verification.FieldBranchName,
}

// fieldRefs lists the record's submittable fields in wire order. When
// allocate is true, nil nested structs are created so every ref is writable;
// otherwise nil nested structs contribute no refs.
func fieldRefs(rec *profile.Record, allocate bool) []fieldRef {
	if rec == nil {
		return nil
	}
	switch {
	case rec.Employee != nil:
		e := rec.Employee
		refs := []fieldRef{
			{"name", &e.Name},
			{"gender", &e.Gender},
			{"dob", &e.DateOfBirth},
			{"aadhaar_number", &e.NationalID},
			{"employee_type", &e.EmployeeType},
			{"pan_number", &e.TaxID},
			{"highest_qualification", &e.HighestQualification},
			{"marital_status", &e.MaritalStatus},
		}
		if allocate && e.CorrespondenceAddress == nil {
			e.CorrespondenceAddress = &profile.Address{}
		}
		if allocate && e.Bank == nil {
			e.Bank = &profile.BankDetails{}
		}
		refs = append(refs, addressRefs("correspondence_address", e.CorrespondenceAddress)...)
		return append(refs, bankRefs(e.Bank)...)
	case rec.Retailer != nil:
		r := rec.Retailer
		refs := []fieldRef{
			{"owner_name", &r.OwnerName},
			{"shop_name", &r.ShopName},
		}
		if allocate && r.ShopAddress == nil {
			r.ShopAddress = &profile.Address{}
		}
		if allocate && r.Bank == nil {
			r.Bank = &profile.BankDetails{}
		}
		refs = append(refs, addressRefs("shop_address", r.ShopAddress)...)
		refs = append(refs,
			fieldRef{"govt_id_type", &r.GovIDType},
			fieldRef{"govt_id_number", &r.GovIDNumber},
		)
		return append(refs, bankRefs(r.Bank)...)
	default:
		return nil
	}
}

func addressRefs(prefix string, a *profile.Address) []fieldRef {
	if a == nil {
		return nil
	}
	return []fieldRef{
		{prefix + "[address_line]", &a.Line},
		{prefix + "[city]", &a.City},
		{prefix + "[state]", &a.State},
		{prefix + "[pincode]", &a.PostalCode},
	}
}

func bankRefs(b *profile.BankDetails) []fieldRef {
	if b == nil {
		return nil
	}
	return []fieldRef{
		{"bank_details[bank_name]", &b.BankName},
		{"bank_details[account_number]", &b.AccountNumber},
		{"bank_details[ifsc_code]", &b.RoutingCode},
		{"bank_details[branch_name]", &b.BranchName},
	}
}

// ProfileFields converts a record into ordered multipart fields. Blank values
// are left out so a partial form never clears what the server already holds.
func ProfileFields(rec *profile.Record) []multipart.Part {
	refs := fieldRefs(rec, false)
	parts := make([]multipart.Part, 0, len(refs))
	for _, r := range refs {
		if !r.ptr.Present() {
			continue
		}
		parts = append(parts, multipart.Field{Name: r.name, Value: r.ptr.String()})
	}
	return parts
}

// FieldNames lists the editable field names for a record kind.
func FieldNames(kind profile.Kind) ([]string, error) {
	rec, err := emptyRecord(kind)
	if err != nil {
		return nil, err
	}
	refs := fieldRefs(rec, true)
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.name
	}
	return names, nil
}

func emptyRecord(kind profile.Kind) (*profile.Record, error) {
	switch kind {
	case profile.KindEmployee:
		return &profile.Record{Kind: kind, Employee: &profile.Employee{}}, nil
	case profile.KindRetailer:
		return &profile.Record{Kind: kind, Retailer: &profile.Retailer{}}, nil
	default:
		return nil, fmt.Errorf("no profile shape for kind %q", kind)
	}
}
