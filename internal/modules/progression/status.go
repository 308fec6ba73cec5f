// Package progression derives per-lecture lock state from a course and a
// learner's persisted progress. Every function here is pure: the same snapshot
// always yields the same statuses, and nothing is cached between calls.
package progression

import (
	"strconv"

	"github.com/yungbote/lecturegate-backend/internal/domain/learning"
)

// Status returns the status of the lecture at position index. A nil enrollment
// means the caller is not enrolled and every lecture is locked.
func Status(course *learning.Course, enrollment *learning.Enrollment, index int) (learning.LectureStatus, error) {
	if err := checkIndex(course, index); err != nil {
		return "", err
	}
	return derive(course, enrollment, index), nil
}

// Statuses returns the status of every lecture in course order.
func Statuses(course *learning.Course, enrollment *learning.Enrollment) ([]learning.LectureState, error) {
	if course == nil || len(course.Lectures) == 0 {
		return nil, learning.NewNotFoundError("lecture", "")
	}
	out := make([]learning.LectureState, 0, len(course.Lectures))
	for i := range course.Lectures {
		out = append(out, learning.LectureState{Index: i, Status: derive(course, enrollment, i)})
	}
	return out, nil
}

// Advance reports whether the learner may move on from index to index+1.
func Advance(course *learning.Course, enrollment *learning.Enrollment, index int) bool {
	if checkIndex(course, index) != nil || index+1 >= len(course.Lectures) {
		return false
	}
	return derive(course, enrollment, index+1).Accessible()
}

// Current returns the lecture the learner should work on: the first accessible
// lecture that is not completed, or the last accessible one when all are done.
// ok is false when nothing is accessible.
func Current(course *learning.Course, enrollment *learning.Enrollment) (index int, ok bool) {
	if course == nil {
		return 0, false
	}
	last := -1
	for i := range course.Lectures {
		s := derive(course, enrollment, i)
		if !s.Accessible() {
			continue
		}
		if s != learning.StatusCompleted {
			return i, true
		}
		last = i
	}
	if last < 0 {
		return 0, false
	}
	return last, true
}

// Cleared is the prerequisite condition a lecture must meet before the next
// one unlocks: content completed and, when an assessment is attached, passed.
func Cleared(lecture learning.Lecture, p learning.LectureProgress) bool {
	if !p.Completed {
		return false
	}
	return !lecture.HasAssessment() || p.QuizPassed
}

func derive(course *learning.Course, enrollment *learning.Enrollment, i int) learning.LectureStatus {
	if enrollment == nil {
		return learning.StatusLocked
	}
	lecture := course.Lectures[i]
	if lecture.IsLocked {
		return learning.StatusLocked
	}
	if i > 0 && !Cleared(course.Lectures[i-1], enrollment.ProgressAt(i-1)) {
		return learning.StatusLocked
	}

	p := enrollment.ProgressAt(i)
	switch {
	case !p.Completed:
		return learning.StatusUnlocked
	case lecture.HasAssessment() && !p.QuizPassed:
		return learning.StatusContentCompleted
	default:
		return learning.StatusCompleted
	}
}

func checkIndex(course *learning.Course, index int) error {
	if course == nil || len(course.Lectures) == 0 {
		return learning.NewNotFoundError("lecture", strconv.Itoa(index))
	}
	if index < 0 || index >= len(course.Lectures) {
		return learning.NewNotFoundError("lecture", strconv.Itoa(index))
	}
	return nil
}
