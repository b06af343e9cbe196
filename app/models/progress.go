package models

// CourseProgress is the set of lectures a user has completed in a course.
// Membership is what matters; lectures are never un-completed.
type CourseProgress struct {
	UserID           string   `json:"userId"`
	CourseID         string   `json:"courseId"`
	LectureCompleted []string `json:"lectureCompleted"`
}
