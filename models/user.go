package models

// CollectionUser is the collection name of [User].
const CollectionUser = "user"

// User is a participant account. Meeting specific relations are template
// fields; their values list the meeting ids the template is filled for.
type User struct {
	Base

	Username       string `json:"username"`
	Title          string `json:"title,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	IsActive       bool   `json:"is_active,omitempty"`
	IsCommittee    bool   `json:"is_committee,omitempty"`
	AboutMe        string `json:"about_me,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Number         string `json:"number,omitempty"`
	StructureLevel string `json:"structure_level,omitempty"`
	Email          string `json:"email,omitempty"`
	VoteWeight     string `json:"vote_weight,omitempty"`
	IsDemoUser     bool   `json:"is_demo_user,omitempty"`

	RoleID                int   `json:"role_id,omitempty"`
	IsPresentInMeetingIDs []int `json:"is_present_in_meeting_ids,omitempty"`
	GuestMeetingIDs       []int `json:"guest_meeting_ids,omitempty"`
	CommitteeAsMemberIDs  []int `json:"committee_as_member_ids,omitempty"`
	CommitteeAsManagerIDs []int `json:"committee_as_manager_ids,omitempty"`

	GroupIDsTemplate   []string `json:"group_$_ids,omitempty"`
	SpeakerIDsTemplate []string `json:"speaker_$_ids,omitempty"`
}

// Collection implements [BaseModel].
func (User) Collection() string { return CollectionUser }

// FullName joins the name parts the way participant lists show them.
func (u User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		name = u.Username
	}
	if u.Title != "" {
		name = u.Title + " " + name
	}
	return name
}
