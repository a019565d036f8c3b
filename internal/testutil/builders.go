// Package testutil provides testing utilities and helpers for the profile gate.
package testutil

import (
	"github.com/target/profilegate/internal/domain/profile"
)

// EmployeeBuilder provides a fluent interface for building employee profiles for testing.
// The default profile is complete for a contractual employee.
type EmployeeBuilder struct {
	e *profile.Employee
}

// NewEmployee creates a new EmployeeBuilder with a complete contractual profile.
func NewEmployee() *EmployeeBuilder {
	return &EmployeeBuilder{
		e: &profile.Employee{
			Name:         "Asha Rao",
			Gender:       "female",
			DateOfBirth:  "1992-04-18",
			NationalID:   "1234 5678 9012",
			EmployeeType: "contractual",
			CorrespondenceAddress: &profile.Address{
				Line:       "12 Lake View",
				City:       "Bengaluru",
				State:      "KA",
				PostalCode: "560001",
			},
			Bank: &profile.BankDetails{
				BankName:      "State Bank",
				AccountNumber: "000123456789",
				RoutingCode:   "SBIN0000813",
				BranchName:    "MG Road",
			},
		},
	}
}

// Permanent switches the employee to the permanent sub-type and fills its extra fields.
func (b *EmployeeBuilder) Permanent() *EmployeeBuilder {
	b.e.EmployeeType = profile.EmployeeTypePermanent
	b.e.TaxID = "ABCDE1234F"
	b.e.HighestQualification = "graduate"
	b.e.MaritalStatus = "single"
	return b
}

// With applies an arbitrary mutation.
func (b *EmployeeBuilder) With(fn func(e *profile.Employee)) *EmployeeBuilder {
	fn(b.e)
	return b
}

// WithoutDOB clears the date of birth.
func (b *EmployeeBuilder) WithoutDOB() *EmployeeBuilder {
	b.e.DateOfBirth = ""
	return b
}

// BankVerified marks the bank details as verified by the backend.
func (b *EmployeeBuilder) BankVerified() *EmployeeBuilder {
	b.e.Bank.Verified = true
	return b
}

// Build returns the record.
func (b *EmployeeBuilder) Build() *profile.Record {
	e := *b.e
	return &profile.Record{Kind: profile.KindEmployee, Employee: &e}
}

// RetailerBuilder provides a fluent interface for building retailer profiles for testing.
type RetailerBuilder struct {
	r *profile.Retailer
}

// NewRetailer creates a new RetailerBuilder with a complete profile.
func NewRetailer() *RetailerBuilder {
	return &RetailerBuilder{
		r: &profile.Retailer{
			OwnerName: "Vikram Shah",
			ShopName:  "Shah General Store",
			ShopAddress: &profile.Address{
				Line:       "7 Station Road",
				City:       "Surat",
				State:      "GJ",
				PostalCode: "395003",
			},
			GovIDType:   "gst",
			GovIDNumber: "24ABCDE1234F1Z5",
			Bank: &profile.BankDetails{
				BankName:      "HDFC Bank",
				AccountNumber: "50100012345678",
				RoutingCode:   "HDFC0000123",
				BranchName:    "Ring Road",
			},
		},
	}
}

// With applies an arbitrary mutation.
func (b *RetailerBuilder) With(fn func(r *profile.Retailer)) *RetailerBuilder {
	fn(b.r)
	return b
}

// Build returns the record.
func (b *RetailerBuilder) Build() *profile.Record {
	r := *b.r
	return &profile.Record{Kind: profile.KindRetailer, Retailer: &r}
}
