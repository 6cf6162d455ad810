package models

// Collection names of the organisational models.
const (
	CollectionMeeting   = "meeting"
	CollectionCommittee = "committee"
	CollectionGroup     = "group"
)

// Meeting is one assembly with its own agenda, motions and participants.
type Meeting struct {
	Base

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartTime   int64  `json:"start_time,omitempty"`
	EndTime     int64  `json:"end_time,omitempty"`

	CommitteeID        int   `json:"committee_id,omitempty"`
	GroupIDs           []int `json:"group_ids,omitempty"`
	MotionIDs          []int `json:"motion_ids,omitempty"`
	AgendaItemIDs      []int `json:"agenda_item_ids,omitempty"`
	ProjectorIDs       []int `json:"projector_ids,omitempty"`
	PresentUserIDs     []int `json:"present_user_ids,omitempty"`
	ReferenceProjector int   `json:"reference_projector_id,omitempty"`
}

// Collection implements [BaseModel].
func (Meeting) Collection() string { return CollectionMeeting }

// Committee groups meetings and their managing users.
type Committee struct {
	Base

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MeetingIDs  []int  `json:"meeting_ids,omitempty"`
	MemberIDs   []int  `json:"member_ids,omitempty"`
	ManagerIDs  []int  `json:"manager_ids,omitempty"`
}

// Collection implements [BaseModel].
func (Committee) Collection() string { return CollectionCommittee }

// Group is a permission group inside a meeting.
type Group struct {
	Base

	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
	UserIDs     []int    `json:"user_ids,omitempty"`
	MeetingID   int      `json:"meeting_id,omitempty"`
}

// Collection implements [BaseModel].
func (Group) Collection() string { return CollectionGroup }
