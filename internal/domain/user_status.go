package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type UserStatus int16

const (
	UserStatusUnactivated UserStatus = 0
	UserStatusActivated   UserStatus = 1
	UserStatusBanned      UserStatus = 2
)

func (s UserStatus) String() string {
	switch s {
	case UserStatusUnactivated:
		return "unactivated"
	case UserStatusActivated:
		return "activated"
	case UserStatusBanned:
		return "banned"
	default:
		return fmt.Sprintf("unknown(%d)", int16(s))
	}
}

func (s UserStatus) Valid() bool {
	return s == UserStatusUnactivated || s == UserStatusActivated || s == UserStatusBanned
}

func (s UserStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *UserStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseUserStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseUserStatus(raw string) (UserStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "unactivated":
		return UserStatusUnactivated, nil
	case "activated":
		return UserStatusActivated, nil
	case "banned":
		return UserStatusBanned, nil
	}
	return 0, fmt.Errorf("unknown user status %q", raw)
}
