package models

// StaffRole groups staff members for routing fan-out.
type StaffRole struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	IsActive    bool     `json:"isActive"`
}

// StaffMember is an internal recipient. ContactPreferences lists the channel
// types the member has opted into; routing never forces a channel outside it.
type StaffMember struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Email              string        `json:"email"`
	Phone              string        `json:"phone,omitempty"`
	RoleIDs            []string      `json:"roleIds"`
	ContactPreferences []ChannelType `json:"contactPreferences"`
	IsActive           bool          `json:"isActive"`
}

// ContactFor returns the member's address for a channel type and whether the
// member has opted into that channel.
func (s StaffMember) ContactFor(ct ChannelType) (string, bool) {
	opted := false
	for _, pref := range s.ContactPreferences {
		if pref == ct {
			opted = true
			break
		}
	}
	if !opted {
		return "", false
	}

	switch ct {
	case ChannelEmail, ChannelTeams:
		return s.Email, s.Email != ""
	case ChannelSMS, ChannelWhatsApp:
		return s.Phone, s.Phone != ""
	}
	return "", false
}
