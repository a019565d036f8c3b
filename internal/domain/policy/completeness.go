// Package policy decides whether a profile satisfies its role's required-field
// set. The verdict is a pure function of the role and the record itself.
package policy

import (
	"fmt"
	"strings"

	"github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/domain/profile"
)

// Field-group names reported by MissingFields.
const (
	GroupGender        = "gender"
	GroupDateOfBirth   = "dob"
	GroupNationalID    = "national_id"
	GroupAddress       = "correspondence_address"
	GroupBank          = "bank_details"
	GroupTaxID         = "tax_id"
	GroupQualification = "highest_qualification"
	GroupMaritalStatus = "marital_status"
	GroupShopName      = "shop_name"
	GroupShopAddress   = "shop_address"
	GroupGovID         = "govt_id"
)

const nationalIDDigits = 12

// EvaluationError reports a profile whose shape cannot be evaluated for its role.
type EvaluationError struct {
	Role   auth.Role
	Reason string
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("completeness evaluation [%s]: %s", e.Role, e.Reason)
}

// IsComplete returns the completeness verdict. Evaluation errors yield false.
func IsComplete(role auth.Role, rec *profile.Record) bool {
	ok, err := Evaluate(role, rec)
	return err == nil && ok
}

// Evaluate returns the verdict, or an *EvaluationError when the record cannot
// be evaluated for the role.
func Evaluate(role auth.Role, rec *profile.Record) (bool, error) {
	missing, err := MissingFields(role, rec)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

// MissingFields lists the required field-groups the record does not satisfy,
// in policy order. Clients never have missing fields.
func MissingFields(role auth.Role, rec *profile.Record) ([]string, error) {
	switch role {
	case auth.RoleClient:
		return nil, nil
	case auth.RoleEmployee:
		if rec == nil || rec.Employee == nil {
			return nil, &EvaluationError{Role: role, Reason: "employee profile missing"}
		}
		return missingEmployee(rec.Employee), nil
	case auth.RoleRetailer:
		if rec == nil || rec.Retailer == nil {
			return nil, &EvaluationError{Role: role, Reason: "retailer profile missing"}
		}
		return missingRetailer(rec.Retailer), nil
	default:
		return nil, &EvaluationError{Role: role, Reason: "no policy for role"}
	}
}

func missingEmployee(e *profile.Employee) []string {
	var missing []string
	need := func(ok bool, group string) {
		if !ok {
			missing = append(missing, group)
		}
	}

	need(e.Gender.Present(), GroupGender)
	need(e.DateOfBirth.Present(), GroupDateOfBirth)
	need(validNationalID(e.NationalID), GroupNationalID)
	need(addressComplete(e.CorrespondenceAddress), GroupAddress)
	need(bankComplete(e.Bank), GroupBank)

	if e.Permanent() {
		need(e.TaxID.Present(), GroupTaxID)
		need(e.HighestQualification.Present(), GroupQualification)
		need(e.MaritalStatus.Present(), GroupMaritalStatus)
	}
	return missing
}

func missingRetailer(r *profile.Retailer) []string {
	var missing []string
	need := func(ok bool, group string) {
		if !ok {
			missing = append(missing, group)
		}
	}

	need(r.ShopName.Present(), GroupShopName)
	need(addressComplete(r.ShopAddress), GroupShopAddress)
	need(r.GovIDType.Present() && r.GovIDNumber.Present(), GroupGovID)
	need(bankComplete(r.Bank), GroupBank)
	return missing
}

func addressComplete(a *profile.Address) bool {
	return a != nil && a.Line.Present() && a.City.Present() && a.State.Present() && a.PostalCode.Present()
}

func bankComplete(b *profile.BankDetails) bool {
	return b != nil && b.AccountNumber.Present() && b.RoutingCode.Present()
}

// validNationalID accepts exactly twelve digits; spaces and hyphens used for
// grouping are ignored.
func validNationalID(v profile.Text) bool {
	s := strings.NewReplacer(" ", "", "-", "").Replace(string(v))
	if len(s) != nationalIDDigits {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
