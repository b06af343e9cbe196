package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Course struct {
	ID           string          `json:"id"`
	EducatorID   string          `json:"educator"`
	Title        string          `json:"courseTitle"`
	Price        decimal.Decimal `json:"coursePrice"`
	Discount     int             `json:"discount"`
	ThumbnailURL string          `json:"courseThumbnail,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// CourseRating is one user's rating of a course, latest write wins.
type CourseRating struct {
	UserID string `json:"userId"`
	Rating int    `json:"rating"`
}

// CourseEnrollment is one (student, course) pair on the dashboard roster.
type CourseEnrollment struct {
	CourseTitle string         `json:"courseTitle"`
	Student     StudentSummary `json:"student"`
}

// EnrolledStudent is the purchase-derived roster entry.
type EnrolledStudent struct {
	Student      StudentSummary `json:"student"`
	CourseTitle  string         `json:"courseTitle"`
	PurchaseDate time.Time      `json:"purchaseDate"`
}

type DashboardData struct {
	TotalEarnings        decimal.Decimal    `json:"totalEarnings"`
	EnrolledStudentsData []CourseEnrollment `json:"enrolledStudentsData"`
	TotalCourses         int                `json:"totalCourses"`
}
