package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uems-api/internal/models"
)

// DirectoryRepository serves read-only lookups against the student roster
// and exam catalogue. Both tables are owned by the directory system and this
// service never writes to them.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository constructs the repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// GetStudent returns one roster entry.
func (r *DirectoryRepository) GetStudent(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, roll_number, full_name, program, semester FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListStudents returns roster entries matching the filter.
func (r *DirectoryRepository) ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT id, roll_number, full_name, program, semester FROM students`)

	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	if filter.Program != "" {
		args = append(args, filter.Program)
		conditions = append(conditions, fmt.Sprintf("program = $%d", len(args)))
	}
	if filter.Semester > 0 {
		args = append(args, filter.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR roll_number ILIKE $%d)", len(args), len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY roll_number")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		builder.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		builder.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// GetExam returns one catalogue entry with its subjects.
func (r *DirectoryRepository) GetExam(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, name, program, semester, held_at FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	const subjectsQuery = `SELECT exam_id, code, title FROM exam_subjects WHERE exam_id = $1 ORDER BY code`
	if err := r.db.SelectContext(ctx, &exam.Subjects, subjectsQuery, id); err != nil {
		return nil, fmt.Errorf("load exam subjects: %w", err)
	}
	return &exam, nil
}
