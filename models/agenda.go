package models

// Collection names of the agenda models.
const (
	CollectionAgendaItem     = "agenda_item"
	CollectionListOfSpeakers = "list_of_speakers"
	CollectionSpeaker        = "speaker"
	CollectionTopic          = "topic"
)

// AgendaItem places a content object (topic, motion, block) on the agenda.
// ContentObjectID is a generic relation ("collection/id").
type AgendaItem struct {
	Base

	ItemNumber      string `json:"item_number,omitempty"`
	Comment         string `json:"comment,omitempty"`
	Closed          bool   `json:"closed,omitempty"`
	Type            int    `json:"type,omitempty"`
	Duration        int    `json:"duration,omitempty"`
	Weight          int    `json:"weight,omitempty"`
	Level           int    `json:"level,omitempty"`
	ContentObjectID string `json:"content_object_id,omitempty"`
	ParentID        int    `json:"parent_id,omitempty"`
	ChildIDs        []int  `json:"child_ids,omitempty"`
	MeetingID       int    `json:"meeting_id,omitempty"`
}

// Collection implements [BaseModel].
func (AgendaItem) Collection() string { return CollectionAgendaItem }

// ListOfSpeakers belongs to a content object and orders its speakers.
type ListOfSpeakers struct {
	Base

	Closed          bool   `json:"closed,omitempty"`
	ContentObjectID string `json:"content_object_id,omitempty"`
	SpeakerIDs      []int  `json:"speaker_ids,omitempty"`
	MeetingID       int    `json:"meeting_id,omitempty"`
}

// Collection implements [BaseModel].
func (ListOfSpeakers) Collection() string { return CollectionListOfSpeakers }

// SpeakerState is the derived state of a [Speaker].
type SpeakerState int

const (
	SpeakerWaiting SpeakerState = iota
	SpeakerCurrent
	SpeakerFinished
)

// Speaker is one entry of a list of speakers. Times are unix seconds.
type Speaker struct {
	Base

	BeginTime        int64 `json:"begin_time,omitempty"`
	EndTime          int64 `json:"end_time,omitempty"`
	Weight           int   `json:"weight,omitempty"`
	Marked           bool  `json:"marked,omitempty"`
	ListOfSpeakersID int   `json:"list_of_speakers_id,omitempty"`
	UserID           int   `json:"user_id,omitempty"`
	MeetingID        int   `json:"meeting_id,omitempty"`
}

// Collection implements [BaseModel].
func (Speaker) Collection() string { return CollectionSpeaker }

// State derives the speaker state from begin and end time.
func (s Speaker) State() SpeakerState {
	switch {
	case s.BeginTime == 0:
		return SpeakerWaiting
	case s.EndTime == 0:
		return SpeakerCurrent
	default:
		return SpeakerFinished
	}
}

// Topic is a plain agenda subject.
type Topic struct {
	Base

	Title            string `json:"title"`
	Text             string `json:"text,omitempty"`
	AgendaItemID     int    `json:"agenda_item_id,omitempty"`
	ListOfSpeakersID int    `json:"list_of_speakers_id,omitempty"`
	MeetingID        int    `json:"meeting_id,omitempty"`
}

// Collection implements [BaseModel].
func (Topic) Collection() string { return CollectionTopic }
