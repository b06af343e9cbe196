package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

func newUserHandler(t *testing.T) (*UserHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewUserHandler(NewStore(db), zaptest.NewLogger(t)), mock
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestGetUserData(t *testing.T) {
	handler, mock := newUserHandler(t)

	mock.ExpectQuery("SELECT id, name").
		WithArgs("user_1").
		WillReturnRows(userRows("user_1", "Ada"))

	router := gin.New()
	router.GET("/data", withClaims("user_1"), handler.GetUserData)

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out struct {
		Success bool `json:"success"`
		User    struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !out.Success || out.User.ID != "user_1" || out.User.Name != "Ada" {
		t.Fatalf("unexpected response: %s", resp.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetUserDataNotFound(t *testing.T) {
	handler, mock := newUserHandler(t)

	mock.ExpectQuery("SELECT id, name").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := gin.New()
	router.GET("/data", withClaims("ghost"), handler.GetUserData)

	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if !strings.Contains(resp.Body.String(), "User not found") {
		t.Fatalf("unexpected response: %s", resp.Body.String())
	}
}

func TestUpdateCourseProgress(t *testing.T) {
	handler, mock := newUserHandler(t)

	mock.ExpectExec("INSERT INTO lecture_completions").
		WithArgs("user_1", "course_1", "lecture_3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := gin.New()
	router.POST("/update-course-progress", withClaims("user_1"), handler.UpdateCourseProgress)

	resp := postJSON(router, "/update-course-progress", `{"courseId":"course_1","lectureId":"lecture_3"}`)

	if !strings.Contains(resp.Body.String(), "Progress updated") {
		t.Fatalf("unexpected response: %s", resp.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateCourseProgressAlreadyCompleted(t *testing.T) {
	handler, mock := newUserHandler(t)

	// Conflict on the completion key affects zero rows.
	mock.ExpectExec("INSERT INTO lecture_completions").
		WithArgs("user_1", "course_1", "lecture_3").
		WillReturnResult(sqlmock.NewResult(0, 0))

	router := gin.New()
	router.POST("/update-course-progress", withClaims("user_1"), handler.UpdateCourseProgress)

	resp := postJSON(router, "/update-course-progress", `{"courseId":"course_1","lectureId":"lecture_3"}`)

	if !strings.Contains(resp.Body.String(), "Lecture already completed") {
		t.Fatalf("unexpected response: %s", resp.Body.String())
	}
}

func TestGetCourseProgress(t *testing.T) {
	handler, mock := newUserHandler(t)

	mock.ExpectQuery("SELECT lecture_id").
		WithArgs("user_1", "course_1").
		WillReturnRows(sqlmock.NewRows([]string{"lecture_id"}).
			AddRow("lecture_1").
			AddRow("lecture_2"))

	router := gin.New()
	router.POST("/get-course-progress", withClaims("user_1"), handler.GetCourseProgress)

	resp := postJSON(router, "/get-course-progress", `{"courseId":"course_1"}`)

	var out struct {
		Success      bool `json:"success"`
		ProgressData struct {
			CourseID         string   `json:"courseId"`
			LectureCompleted []string `json:"lectureCompleted"`
		} `json:"progressData"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !out.Success || out.ProgressData.CourseID != "course_1" {
		t.Fatalf("unexpected response: %s", resp.Body.String())
	}
	if len(out.ProgressData.LectureCompleted) != 2 || out.ProgressData.LectureCompleted[0] != "lecture_1" {
		t.Fatalf("unexpected lectures: %v", out.ProgressData.LectureCompleted)
	}
}

func TestAddRatingRejectsOutOfRange(t *testing.T) {
	handler, mock := newUserHandler(t)

	router := gin.New()
	router.POST("/add-rating", withClaims("user_1"), handler.AddRating)

	for _, body := range []string{
		`{"courseId":"course_1","rating":0}`,
		`{"courseId":"course_1","rating":6}`,
	} {
		resp := postJSON(router, "/add-rating", body)
		if !strings.Contains(resp.Body.String(), "Invalid details") {
			t.Fatalf("unexpected response for %s: %s", body, resp.Body.String())
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("store touched for invalid rating: %v", err)
	}
}

func TestAddRatingRequiresEnrollment(t *testing.T) {
	handler, mock := newUserHandler(t)

	mock.ExpectQuery("SELECT id, educator_id").
		WithArgs("course_1").
		WillReturnRows(courseRows("course_1", "edu_1", "Go Basics", "100.00", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("course_1", "user_1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	router := gin.New()
	router.POST("/add-rating", withClaims("user_1"), handler.AddRating)

	resp := postJSON(router, "/add-rating", `{"courseId":"course_1","rating":4}`)

	if !strings.Contains(resp.Body.String(), "User has not purchased this course") {
		t.Fatalf("unexpected response: %s", resp.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddRatingUpserts(t *testing.T) {
	handler, mock := newUserHandler(t)

	mock.ExpectQuery("SELECT id, educator_id").
		WithArgs("course_1").
		WillReturnRows(courseRows("course_1", "edu_1", "Go Basics", "100.00", 0))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("course_1", "user_1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("INSERT INTO course_ratings").
		WithArgs("course_1", "user_1", 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	router := gin.New()
	router.POST("/add-rating", withClaims("user_1"), handler.AddRating)

	resp := postJSON(router, "/add-rating", `{"courseId":"course_1","rating":4}`)

	if !strings.Contains(resp.Body.String(), "Rating added") {
		t.Fatalf("unexpected response: %s", resp.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnrolledCourses(t *testing.T) {
	handler, mock := newUserHandler(t)

	mock.ExpectQuery("SELECT c.id, c.educator_id").
		WithArgs("user_1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "educator_id", "title", "price", "discount", "thumbnail_url", "created_at"}).
			AddRow("course_1", "edu_1", "Go Basics", "100.00", 20, "", time.Now()))

	router := gin.New()
	router.GET("/enrolled-courses", withClaims("user_1"), handler.EnrolledCourses)

	req := httptest.NewRequest(http.MethodGet, "/enrolled-courses", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	var out struct {
		Success         bool `json:"success"`
		EnrolledCourses []struct {
			ID    string `json:"id"`
			Title string `json:"courseTitle"`
		} `json:"enrolledCourses"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !out.Success || len(out.EnrolledCourses) != 1 || out.EnrolledCourses[0].Title != "Go Basics" {
		t.Fatalf("unexpected response: %s", resp.Body.String())
	}
}
