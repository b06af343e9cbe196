package models

// Request bodies are bound with explicit tagged structs so malformed shapes
// are rejected before any store access.

type PurchaseRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

type ProgressUpdateRequest struct {
	CourseID  string `json:"courseId" binding:"required"`
	LectureID string `json:"lectureId" binding:"required"`
}

type ProgressGetRequest struct {
	CourseID string `json:"courseId" binding:"required"`
}

type RatingRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
}

// AddCourseRequest is the JSON carried in the multipart courseData field.
type AddCourseRequest struct {
	Title    string  `json:"courseTitle"`
	Price    float64 `json:"coursePrice"`
	Discount int     `json:"discount"`
}
