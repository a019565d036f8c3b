package authroles

import (
	"fmt"
	"sort"
	"strings"

	domainauth "github.com/target/profilegate/internal/domain/auth"
)

// UnmappedRoleError reports a raw role missing from the table. It is a
// configuration defect and must not be defaulted.
type UnmappedRoleError struct {
	Raw domainauth.RawRole
}

func (e *UnmappedRoleError) Error() string {
	return fmt.Sprintf("unmapped role %q", string(e.Raw))
}

// DefaultTable maps every raw role the backend emits onto a normalized role.
// The administrative hierarchy all lands on the client dashboard.
var DefaultTable = map[domainauth.RawRole]domainauth.Role{
	"employee":   domainauth.RoleEmployee,
	"retailer":   domainauth.RoleRetailer,
	"client":     domainauth.RoleClient,
	"admin":      domainauth.RoleClient,
	"superadmin": domainauth.RoleClient,
	"state":      domainauth.RoleClient,
	"district":   domainauth.RoleClient,
	"block":      domainauth.RoleClient,
}

// StaticRoleMapper normalizes raw roles by table lookup.
type StaticRoleMapper struct {
	Table map[domainauth.RawRole]domainauth.Role
}

// NewStaticRoleMapper returns a mapper over DefaultTable.
func NewStaticRoleMapper() StaticRoleMapper {
	return StaticRoleMapper{Table: DefaultTable}
}

// Normalize looks raw up after trimming and lower-casing it.
func (m StaticRoleMapper) Normalize(raw domainauth.RawRole) (domainauth.Role, error) {
	key := domainauth.RawRole(strings.ToLower(strings.TrimSpace(string(raw))))
	if role, ok := m.Table[key]; ok {
		return role, nil
	}
	return "", &UnmappedRoleError{Raw: raw}
}

// RawRoles lists the table keys in sorted order.
func (m StaticRoleMapper) RawRoles() []domainauth.RawRole {
	out := make([]domainauth.RawRole, 0, len(m.Table))
	for raw := range m.Table {
		out = append(out, raw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
