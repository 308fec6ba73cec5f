package learning

type LectureStatus string

const (
	StatusLocked           LectureStatus = "locked"
	StatusUnlocked         LectureStatus = "unlocked"
	StatusContentCompleted LectureStatus = "content-completed"
	StatusCompleted        LectureStatus = "completed"
)

// Accessible is true for every status except locked.
func (s LectureStatus) Accessible() bool {
	return s == StatusUnlocked || s == StatusContentCompleted || s == StatusCompleted
}

type LectureState struct {
	Index  int           `json:"index"`
	Status LectureStatus `json:"status"`
}
