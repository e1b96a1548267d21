package physics

import (
	"fmt"
	"strings"
)

// GravityMode selects the gravity model.
type GravityMode int

const (
	// GravityLocal is a uniform downward field.
	GravityLocal GravityMode = iota
	// GravityOrbital is an inverse-square field about the origin.
	GravityOrbital
)

func (m GravityMode) String() string {
	switch m {
	case GravityLocal:
		return "local"
	case GravityOrbital:
		return "orbital"
	default:
		return fmt.Sprintf("GravityMode(%d)", int(m))
	}
}

// ParseGravityMode accepts "local" or "orbital", case-insensitive.
func ParseGravityMode(s string) (GravityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local":
		return GravityLocal, nil
	case "orbital":
		return GravityOrbital, nil
	default:
		return 0, fmt.Errorf("unknown gravity mode %q", s)
	}
}

func (m GravityMode) MarshalText() ([]byte, error) {
	if m != GravityLocal && m != GravityOrbital {
		return nil, fmt.Errorf("unknown gravity mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *GravityMode) UnmarshalText(b []byte) error {
	v, err := ParseGravityMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// EDTMode selects how the electrodynamic tether biases its force sign.
type EDTMode int

const (
	EDTOff EDTMode = iota
	EDTBoost
	EDTDrag
)

func (m EDTMode) String() string {
	switch m {
	case EDTOff:
		return "off"
	case EDTBoost:
		return "boost"
	case EDTDrag:
		return "drag"
	default:
		return fmt.Sprintf("EDTMode(%d)", int(m))
	}
}

// ParseEDTMode accepts "off", "boost" or "drag", case-insensitive.
func ParseEDTMode(s string) (EDTMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off":
		return EDTOff, nil
	case "boost":
		return EDTBoost, nil
	case "drag":
		return EDTDrag, nil
	default:
		return 0, fmt.Errorf("unknown EDT mode %q", s)
	}
}

func (m EDTMode) MarshalText() ([]byte, error) {
	if m < EDTOff || m > EDTDrag {
		return nil, fmt.Errorf("unknown EDT mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *EDTMode) UnmarshalText(b []byte) error {
	v, err := ParseEDTMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
