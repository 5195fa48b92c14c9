package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const guestPrefix = "guest:"

// Seat is one of the four slots of a doubles match: a registered player,
// a guest (rated for opponent-strength estimation only, never mutated),
// or empty.
type Seat struct {
	PlayerID string
	Guest    *GuestInfo
}

type GuestInfo struct {
	Name  string
	Level float64
}

func (s Seat) IsEmpty() bool {
	return s.PlayerID == "" && s.Guest == nil
}

func (s Seat) IsGuest() bool {
	return s.Guest != nil
}

// ParseSeat decodes the wire encoding of a seat slot: a plain player id,
// a "guest:<name>:<level>" string, or the empty string.
func ParseSeat(raw string) (Seat, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Seat{}, nil
	}
	if !strings.HasPrefix(raw, guestPrefix) {
		return Seat{PlayerID: raw}, nil
	}

	parts := strings.SplitN(strings.TrimPrefix(raw, guestPrefix), ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return Seat{}, fmt.Errorf("malformed guest seat %q", raw)
	}
	level, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Seat{}, fmt.Errorf("malformed guest level in %q: %w", raw, err)
	}

	return Seat{Guest: &GuestInfo{Name: parts[0], Level: level}}, nil
}

// Encode is the inverse of ParseSeat, used when persisting seat columns.
func (s Seat) Encode() string {
	if s.Guest != nil {
		return fmt.Sprintf("%s%s:%g", guestPrefix, s.Guest.Name, s.Guest.Level)
	}
	return s.PlayerID
}
