// Package app wires the marketplace HTTP controllers and their persistence.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ankur21bera/edemy-backend/app/config"
	"github.com/Ankur21bera/edemy-backend/app/models"
	"github.com/Ankur21bera/edemy-backend/auth"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// OpenDB connects to Postgres and verifies the connection.
func OpenDB(cfg config.PostgresConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		cfg.Username,
		cfg.Password,
		cfg.URL,
		cfg.Port,
		cfg.Database,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

// Store executes all SQL against the document tables.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ---- users ----

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(image_url, ''), created_at
		FROM users
		WHERE id = $1;
	`, id).Scan(&u.ID, &u.Name, &u.Email, &u.ImageURL, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// UpsertUserFromClaims creates a user row if it does not already exist.
// Runs on every authenticated request so webhook-less deployments still
// get a local mirror of the identity provider's record.
func (s *Store) UpsertUserFromClaims(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.Subject == "" {
		return nil
	}

	name := readStringClaim(claims.Raw, "name")
	email := readStringClaim(claims.Raw, "email")
	image := readStringClaim(claims.Raw, "image_url")

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, image_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING;
	`, claims.Subject, name, nullIfEmpty(email), nullIfEmpty(image))
	return err
}

// SyncUser applies an identity-provider webhook snapshot.
func (s *Store) SyncUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, image_url)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, image_url = EXCLUDED.image_url;
	`, u.ID, u.Name, nullIfEmpty(u.Email), nullIfEmpty(u.ImageURL))
	return err
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1;`, id)
	return err
}

// ---- courses ----

func (s *Store) CreateCourse(ctx context.Context, c models.Course) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO courses (id, educator_id, title, price, discount)
		VALUES ($1, $2, $3, $4, $5);
	`, c.ID, c.EducatorID, c.Title, c.Price, c.Discount)
	return err
}

func (s *Store) SetCourseThumbnail(ctx context.Context, courseID, url string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE courses
		SET thumbnail_url = $1
		WHERE id = $2;
	`, url, courseID)
	return err
}

func (s *Store) GetCourse(ctx context.Context, id string) (models.Course, error) {
	var c models.Course
	err := s.db.QueryRowContext(ctx, `
		SELECT id, educator_id, title, price, discount, COALESCE(thumbnail_url, ''), created_at
		FROM courses
		WHERE id = $1;
	`, id).Scan(&c.ID, &c.EducatorID, &c.Title, &c.Price, &c.Discount, &c.ThumbnailURL, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Course{}, ErrNotFound
	}
	if err != nil {
		return models.Course{}, err
	}
	return c, nil
}

func (s *Store) CoursesByEducator(ctx context.Context, educatorID string) ([]models.Course, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, educator_id, title, price, discount, COALESCE(thumbnail_url, ''), created_at
		FROM courses
		WHERE educator_id = $1
		ORDER BY created_at DESC;
	`, educatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCourses(rows)
}

func (s *Store) EnrolledCourses(ctx context.Context, userID string) ([]models.Course, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.educator_id, c.title, c.price, c.discount, COALESCE(c.thumbnail_url, ''), c.created_at
		FROM courses c
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.user_id = $1
		ORDER BY e.created_at DESC;
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCourses(rows)
}

func scanCourses(rows *sql.Rows) ([]models.Course, error) {
	out := []models.Course{}
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.EducatorID, &c.Title, &c.Price, &c.Discount, &c.ThumbnailURL, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- enrollment ----

// Enroll records the user-course relationship. The insert is idempotent,
// so replayed webhook deliveries never double-enroll.
func (s *Store) Enroll(ctx context.Context, courseID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO enrollments (course_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (course_id, user_id) DO NOTHING;
	`, courseID, userID)
	return err
}

func (s *Store) IsEnrolled(ctx context.Context, courseID, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM enrollments WHERE course_id = $1 AND user_id = $2
		);
	`, courseID, userID).Scan(&exists)
	return exists, err
}

// ---- ratings ----

func (s *Store) UpsertRating(ctx context.Context, courseID, userID string, rating int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO course_ratings (course_id, user_id, rating, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (course_id, user_id) DO UPDATE
		SET rating = EXCLUDED.rating, updated_at = now();
	`, courseID, userID, rating)
	return err
}

// ---- purchases ----

func (s *Store) CreatePurchase(ctx context.Context, p models.Purchase) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchases (id, course_id, user_id, amount, status)
		VALUES ($1, $2, $3, $4, $5);
	`, p.ID, p.CourseID, p.UserID, p.Amount, p.Status)
	return err
}

func (s *Store) GetPurchase(ctx context.Context, id string) (models.Purchase, error) {
	var p models.Purchase
	err := s.db.QueryRowContext(ctx, `
		SELECT id, course_id, user_id, amount, status, created_at
		FROM purchases
		WHERE id = $1;
	`, id).Scan(&p.ID, &p.CourseID, &p.UserID, &p.Amount, &p.Status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Purchase{}, ErrNotFound
	}
	if err != nil {
		return models.Purchase{}, err
	}
	return p, nil
}

// SetPurchaseStatusIfPending transitions a purchase out of pending and
// reports whether this call made the transition. A false return means a
// duplicate delivery already settled the purchase.
func (s *Store) SetPurchaseStatusIfPending(ctx context.Context, id string, status models.PurchaseStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE purchases
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = 'pending';
	`, status, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ---- dashboard ----

func (s *Store) TotalEarnings(ctx context.Context, educatorID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM purchases p
		JOIN courses c ON c.id = p.course_id
		WHERE c.educator_id = $1 AND p.status = 'completed';
	`, educatorID).Scan(&total)
	return total, err
}

// EnrollmentRoster flattens (course title, student) pairs for the
// educator's courses. One round trip instead of the per-course loop the
// fleet size would otherwise tolerate.
func (s *Store) EnrollmentRoster(ctx context.Context, educatorID string) ([]models.CourseEnrollment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.title, u.name, COALESCE(u.image_url, '')
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		JOIN users u ON u.id = e.user_id
		WHERE c.educator_id = $1
		ORDER BY c.title, u.name;
	`, educatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CourseEnrollment{}
	for rows.Next() {
		var entry models.CourseEnrollment
		if err := rows.Scan(&entry.CourseTitle, &entry.Student.Name, &entry.Student.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PurchasedStudents lists completed purchases of the educator's courses
// with the purchasing student and purchase date.
func (s *Store) PurchasedStudents(ctx context.Context, educatorID string) ([]models.EnrolledStudent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.name, COALESCE(u.image_url, ''), c.title, p.created_at
		FROM purchases p
		JOIN courses c ON c.id = p.course_id
		JOIN users u ON u.id = p.user_id
		WHERE c.educator_id = $1 AND p.status = 'completed'
		ORDER BY p.created_at DESC;
	`, educatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.EnrolledStudent{}
	for rows.Next() {
		var entry models.EnrolledStudent
		if err := rows.Scan(&entry.Student.Name, &entry.Student.ImageURL, &entry.CourseTitle, &entry.PurchaseDate); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- progress ----

// MarkLectureComplete records a completed lecture. Returns false without
// mutating when the lecture was already recorded.
func (s *Store) MarkLectureComplete(ctx context.Context, userID, courseID, lectureID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO lecture_completions (user_id, course_id, lecture_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, course_id, lecture_id) DO NOTHING;
	`, userID, courseID, lectureID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) LecturesCompleted(ctx context.Context, userID, courseID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT lecture_id
		FROM lecture_completions
		WHERE user_id = $1 AND course_id = $2
		ORDER BY completed_at;
	`, userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- helpers ----

func readStringClaim(raw map[string]any, key string) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
