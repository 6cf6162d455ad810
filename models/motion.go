package models

// Collection names of the motion models.
const (
	CollectionMotion      = "motion"
	CollectionMotionBlock = "motion_block"
)

// Motion is a proposal submitted to a meeting.
type Motion struct {
	Base

	Number   string `json:"number,omitempty"`
	Title    string `json:"title"`
	Text     string `json:"text,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Weight   int    `json:"weight,omitempty"`
	Created  int64  `json:"created,omitempty"`
	LastEdit int64  `json:"last_modified,omitempty"`

	MeetingID        int   `json:"meeting_id,omitempty"`
	BlockID          int   `json:"block_id,omitempty"`
	LeadMotionID     int   `json:"lead_motion_id,omitempty"`
	AmendmentIDs     []int `json:"amendment_ids,omitempty"`
	SupporterIDs     []int `json:"supporter_ids,omitempty"`
	PollIDs          []int `json:"poll_ids,omitempty"`
	AgendaItemID     int   `json:"agenda_item_id,omitempty"`
	ListOfSpeakersID int   `json:"list_of_speakers_id,omitempty"`
}

// Collection implements [BaseModel].
func (Motion) Collection() string { return CollectionMotion }

// MotionBlock bundles motions that are handled together.
type MotionBlock struct {
	Base

	Title            string `json:"title"`
	Internal         bool   `json:"internal,omitempty"`
	MotionIDs        []int  `json:"motion_ids,omitempty"`
	MeetingID        int    `json:"meeting_id,omitempty"`
	AgendaItemID     int    `json:"agenda_item_id,omitempty"`
	ListOfSpeakersID int    `json:"list_of_speakers_id,omitempty"`
}

// Collection implements [BaseModel].
func (MotionBlock) Collection() string { return CollectionMotionBlock }
