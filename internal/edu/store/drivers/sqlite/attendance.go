package sqlite

import (
	"context"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
)

type attendanceRepo struct {
	db dbtx
}

const attendanceColumns = `id, student_id, course_id, date, status, recorded_by, created_at`

func scanAttendance(row interface{ Scan(...any) error }) (domain.AttendanceRecord, error) {
	var (
		rec    domain.AttendanceRecord
		status string
	)
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.CourseID, &rec.Date,
		&status, &rec.RecordedBy, &rec.CreatedAt)
	rec.Status = domain.AttendanceStatus(status)
	return rec, err
}

func (r *attendanceRepo) GetAttendanceByID(ctx context.Context, id string) (domain.AttendanceRecord, error) {
	rec, err := scanAttendance(r.db.QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendance_records WHERE id = ?`, id))
	if err != nil {
		return domain.AttendanceRecord{}, mapNotFound(err)
	}
	return rec, nil
}

func (r *attendanceRepo) listAttendance(ctx context.Context, query string, args ...any) ([]domain.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *attendanceRepo) ListAttendanceByStudent(ctx context.Context, studentID string) ([]domain.AttendanceRecord, error) {
	return r.listAttendance(ctx, `
		SELECT `+attendanceColumns+` FROM attendance_records
		WHERE student_id = ? ORDER BY date`, studentID)
}

func (r *attendanceRepo) ListAttendanceByCourse(ctx context.Context, courseID string, date time.Time) ([]domain.AttendanceRecord, error) {
	return r.listAttendance(ctx, `
		SELECT `+attendanceColumns+` FROM attendance_records
		WHERE course_id = ? AND date = ? ORDER BY student_id`,
		courseID, date.UTC())
}

func (r *attendanceRepo) CreateAttendanceRecord(ctx context.Context, rec domain.AttendanceRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, course_id, date, status, recorded_by)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.StudentID, rec.CourseID, rec.Date.UTC(), string(rec.Status), rec.RecordedBy)
	return mapConstraint(err)
}

func (r *attendanceRepo) UpdateAttendanceStatus(ctx context.Context, id string, status domain.AttendanceStatus) error {
	return requireAffected(r.db.ExecContext(ctx, `
		UPDATE attendance_records SET status = ? WHERE id = ?`,
		string(status), id))
}

func (r *attendanceRepo) DeleteAttendanceRecord(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM attendance_records WHERE id = ?`, id))
}
