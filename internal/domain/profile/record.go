// Package profile holds the role-shaped profile records returned by the remote
// service. Records are plain data; completeness rules live in domain/policy.
package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies which role-shaped record a Record carries.
type Kind string

const (
	KindEmployee Kind = "employee"
	KindRetailer Kind = "retailer"
)

// EmployeeTypePermanent is the employee sub-type with the extended requirement set.
const EmployeeTypePermanent = "permanent"

// Text is a scalar profile value. The backend is inconsistent about quoting
// numeric values (postal codes, account numbers), so both JSON strings and
// numbers decode into Text. Objects and arrays are rejected.
type Text string

// UnmarshalJSON accepts strings, numbers, booleans and null. Null, false and
// a numeric zero decode to the empty value; the string "0" is kept.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("false")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		return fmt.Errorf("profile value must be a scalar, got %s", string(data[:1]))
	default:
		if f, err := strconv.ParseFloat(string(data), 64); err == nil && f == 0 {
			*t = ""
			return nil
		}
		*t = Text(data)
	}
	return nil
}

// UnmarshalYAML accepts any scalar node.
func (t *Text) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: profile value must be a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*t = ""
		return nil
	}
	*t = Text(node.Value)
	return nil
}

// Present reports whether the value is non-blank.
func (t Text) Present() bool { return strings.TrimSpace(string(t)) != "" }

func (t Text) String() string { return string(t) }

// Address is a postal address with the four sub-fields the policy checks.
type Address struct {
	Line       Text `json:"address_line" yaml:"address_line"`
	City       Text `json:"city"         yaml:"city"`
	State      Text `json:"state"        yaml:"state"`
	PostalCode Text `json:"pincode"      yaml:"pincode"`
}

// BankDetails identifies the account payouts are sent to.
type BankDetails struct {
	BankName      Text `json:"bank_name"      yaml:"bank_name"`
	AccountNumber Text `json:"account_number" yaml:"account_number"`
	RoutingCode   Text `json:"ifsc_code"      yaml:"ifsc_code"`
	BranchName    Text `json:"branch_name"    yaml:"branch_name"`
	Verified      bool `json:"is_verified"    yaml:"is_verified"`
}

// Employee is the profile shape for employee accounts.
type Employee struct {
	Name                  Text         `json:"name"                   yaml:"name"`
	Gender                Text         `json:"gender"                 yaml:"gender"`
	DateOfBirth           Text         `json:"dob"                    yaml:"dob"`
	NationalID            Text         `json:"aadhaar_number"         yaml:"aadhaar_number"`
	EmployeeType          Text         `json:"employee_type"          yaml:"employee_type"`
	TaxID                 Text         `json:"pan_number"             yaml:"pan_number"`
	HighestQualification  Text         `json:"highest_qualification"  yaml:"highest_qualification"`
	MaritalStatus         Text         `json:"marital_status"         yaml:"marital_status"`
	CorrespondenceAddress *Address     `json:"correspondence_address" yaml:"correspondence_address"`
	Bank                  *BankDetails `json:"bank_details"           yaml:"bank_details"`
}

// Permanent reports whether the employee declares the permanent sub-type.
func (e *Employee) Permanent() bool {
	return strings.EqualFold(strings.TrimSpace(string(e.EmployeeType)), EmployeeTypePermanent)
}

// Retailer is the profile shape for retailer accounts.
type Retailer struct {
	OwnerName   Text         `json:"owner_name"     yaml:"owner_name"`
	ShopName    Text         `json:"shop_name"      yaml:"shop_name"`
	ShopAddress *Address     `json:"shop_address"   yaml:"shop_address"`
	GovIDType   Text         `json:"govt_id_type"   yaml:"govt_id_type"`
	GovIDNumber Text         `json:"govt_id_number" yaml:"govt_id_number"`
	Bank        *BankDetails `json:"bank_details"   yaml:"bank_details"`
}

// Record is a fetched profile. Exactly one of Employee or Retailer is set,
// matching Kind.
type Record struct {
	Kind     Kind
	Employee *Employee
	Retailer *Retailer
}

// BankDetails returns the record's bank details, or nil.
func (r *Record) BankDetails() *BankDetails {
	switch {
	case r == nil:
		return nil
	case r.Employee != nil:
		return r.Employee.Bank
	case r.Retailer != nil:
		return r.Retailer.Bank
	default:
		return nil
	}
}

// Decode parses a JSON document of the given kind into a Record.
func Decode(kind Kind, data []byte) (*Record, error) {
	rec := &Record{Kind: kind}
	switch kind {
	case KindEmployee:
		rec.Employee = &Employee{}
		if err := json.Unmarshal(data, rec.Employee); err != nil {
			return nil, fmt.Errorf("decode employee profile: %w", err)
		}
	case KindRetailer:
		rec.Retailer = &Retailer{}
		if err := json.Unmarshal(data, rec.Retailer); err != nil {
			return nil, fmt.Errorf("decode retailer profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("no profile shape for kind %q", kind)
	}
	return rec, nil
}

// DecodeYAML parses a YAML document of the given kind into a Record.
func DecodeYAML(kind Kind, data []byte) (*Record, error) {
	rec := &Record{Kind: kind}
	switch kind {
	case KindEmployee:
		rec.Employee = &Employee{}
		if err := yaml.Unmarshal(data, rec.Employee); err != nil {
			return nil, fmt.Errorf("decode employee profile: %w", err)
		}
	case KindRetailer:
		rec.Retailer = &Retailer{}
		if err := yaml.Unmarshal(data, rec.Retailer); err != nil {
			return nil, fmt.Errorf("decode retailer profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("no profile shape for kind %q", kind)
	}
	return rec, nil
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{Kind: r.Kind}
	if r.Employee != nil {
		e := *r.Employee
		e.CorrespondenceAddress = cloneAddress(e.CorrespondenceAddress)
		e.Bank = cloneBank(e.Bank)
		out.Employee = &e
	}
	if r.Retailer != nil {
		rt := *r.Retailer
		rt.ShopAddress = cloneAddress(rt.ShopAddress)
		rt.Bank = cloneBank(rt.Bank)
		out.Retailer = &rt
	}
	return out
}

func cloneAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func cloneBank(b *BankDetails) *BankDetails {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
