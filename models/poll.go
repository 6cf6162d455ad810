package models

// Collection names of the poll models.
const (
	CollectionPoll   = "poll"
	CollectionOption = "option"
	CollectionVote   = "vote"
)

// Poll is a vote on a content object (generic relation).
type Poll struct {
	Base

	Title           string `json:"title"`
	Type            string `json:"type,omitempty"`
	Pollmethod      string `json:"pollmethod,omitempty"`
	State           string `json:"state,omitempty"`
	ContentObjectID string `json:"content_object_id,omitempty"`
	OptionIDs       []int  `json:"option_ids,omitempty"`
	VotedIDs        []int  `json:"voted_ids,omitempty"`
	MeetingID       int    `json:"meeting_id,omitempty"`
}

// Collection implements [BaseModel].
func (Poll) Collection() string { return CollectionPoll }

// Option is one answer of a poll. Result values are decimal strings.
type Option struct {
	Base

	Text    string `json:"text,omitempty"`
	Yes     string `json:"yes,omitempty"`
	No      string `json:"no,omitempty"`
	Abstain string `json:"abstain,omitempty"`
	PollID  int    `json:"poll_id,omitempty"`
	VoteIDs []int  `json:"vote_ids,omitempty"`
}

// Collection implements [BaseModel].
func (Option) Collection() string { return CollectionOption }

// Vote is a single cast vote.
type Vote struct {
	Base

	Value    string `json:"value,omitempty"`
	Weight   string `json:"weight,omitempty"`
	OptionID int    `json:"option_id,omitempty"`
	UserID   int    `json:"user_id,omitempty"`
}

// Collection implements [BaseModel].
func (Vote) Collection() string { return CollectionVote }
