package attendance

import "strings"

// Role is the worker category a shift is computed for. The zero value is
// RoleUnknown, which always takes the default computation path.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleOwner
	RoleCast
	RoleDriver
)

// ParseRole maps a stored role code to a Role. Empty and unrecognised codes
// become RoleUnknown.
func ParseRole(code string) Role {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "owner":
		return RoleOwner
	case "cast":
		return RoleCast
	case "driver":
		return RoleDriver
	default:
		return RoleUnknown
	}
}

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleCast:
		return "cast"
	case RoleDriver:
		return "driver"
	default:
		return "unknown"
	}
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// RoleLookup resolves a user identifier to its role.
type RoleLookup map[string]Role

// resolve prefers the lookup entry and falls back to the role carried on the
// record itself.
func (l RoleLookup) resolve(rec ShiftRecord) Role {
	if role, ok := l[rec.UserIdentifier]; ok && role != RoleUnknown {
		return role
	}
	return rec.Role
}
