package storage

import (
	"path"
	"strings"
)

// Paths builds the fixed object keys for one meeting:
//
//	meeting_<ts>/individuals/<participant_id>.<ext>
//	meeting_<ts>/meeting_mix.<ext>
//	meeting_<ts>/transcription.txt
//	meeting_<ts>/meeting_<ts>_metadata.json
type Paths struct {
	Meeting string
}

func NewPaths(meetingName string) Paths {
	return Paths{Meeting: meetingName}
}

func (p Paths) Individual(participantID, ext string) string {
	return path.Join(p.Meeting, "individuals", sanitize(participantID)+"."+ext)
}

func (p Paths) Mix(ext string) string {
	return path.Join(p.Meeting, "meeting_mix."+ext)
}

func (p Paths) Transcription() string {
	return path.Join(p.Meeting, "transcription.txt")
}

func (p Paths) Metadata() string {
	return path.Join(p.Meeting, p.Meeting+"_metadata.json")
}

// sanitize keeps participant ids from escaping their folder.
func sanitize(id string) string {
	id = strings.ReplaceAll(id, "/", "_")
	id = strings.ReplaceAll(id, "..", "_")
	if id == "" {
		return "unknown"
	}
	return id
}
