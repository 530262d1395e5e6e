package mockapi

import (
	"net/netip"
	"slices"
	"strings"
)

// Validator holds the request checks of the mock API.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateCredentials checks the fields login and registration both require.
func (v *Validator) ValidateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return errCredentialsRequired
	}
	return nil
}

// ValidateLoginEvent lists every problem with an analysis request. An empty result
// means the request is acceptable.
func (v *Validator) ValidateLoginEvent(b *analyzeBody) []string {
	var problems []string
	if b == nil {
		return []string{"Missing request body"}
	}

	for field, present := range map[string]bool{
		"user_id":     b.UserID != nil,
		"username":    b.Username != nil,
		"ip_address":  b.IPAddress != nil,
		"device_info": b.DeviceInfo != nil,
	} {
		if !present {
			problems = append(problems, "Missing required field: "+field)
		}
	}

	if b.IPAddress != nil {
		if addr, err := netip.ParseAddr(*b.IPAddress); err != nil || !addr.Is4() {
			problems = append(problems, "Invalid IP address format")
		}
	}

	if b.DeviceInfo != nil {
		for field, present := range map[string]bool{
			"browser":     b.DeviceInfo.Browser != nil,
			"os":          b.DeviceInfo.OS != nil,
			"device_type": b.DeviceInfo.DeviceType != nil,
		} {
			if !present {
				problems = append(problems, "Missing device_info field: "+field)
			}
		}
	}

	if b.Location != nil {
		loc := b.Location
		if loc.Latitude == nil || loc.Longitude == nil {
			problems = append(problems, "Location must include latitude and longitude")
		} else {
			if *loc.Latitude < -90 || *loc.Latitude > 90 {
				problems = append(problems, "Invalid latitude value")
			}
			if *loc.Longitude < -180 || *loc.Longitude > 180 {
				problems = append(problems, "Invalid longitude value")
			}
		}
	}

	if b.Timestamp != nil {
		if _, err := parseTimestamp(*b.Timestamp); err != nil {
			problems = append(problems, "Invalid timestamp")
		}
	}

	slices.Sort(problems)
	return problems
}
