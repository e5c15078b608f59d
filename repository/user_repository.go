package repository

import (
	"context"
	"errors"
	"fmt"

	"celestia/database"
	"celestia/domain/entities"

	"github.com/jackc/pgx/v5"
)

const userColumns = `
	id, reg_number, nin, surname, first_name, middle_name, date_of_birth,
	gender, state_of_origin, lga_of_origin, admission_year, institution,
	institution_code, course, course_code, admission_type, profile_picture,
	request_id, user_type, created_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepository creates a new user repository with a transaction
func newUserRepository(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(fmt.Sprintf("failed to get user %d", id), err)
	}
	return user, nil
}

// GetByRegNumber retrieves a user by exam registration number
func (r *UserRepository) GetByRegNumber(ctx context.Context, regNumber string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reg_number = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, regNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError(fmt.Sprintf("failed to get user by reg number %s", regNumber), err)
	}
	return user, nil
}

// Create inserts a user unless the reg number already exists
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (bool, error) {
	if user.UserType == "" {
		user.UserType = entities.UserTypeStudent
	}

	query := `
		INSERT INTO users (
			reg_number, nin, surname, first_name, middle_name, date_of_birth,
			gender, state_of_origin, lga_of_origin, admission_year, institution,
			institution_code, course, course_code, admission_type, profile_picture,
			request_id, user_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (reg_number) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		user.RegNumber,
		user.NIN,
		user.Surname,
		user.FirstName,
		user.MiddleName,
		user.DateOfBirth,
		user.Gender,
		user.StateOfOrigin,
		user.LGAOfOrigin,
		user.AdmissionYear,
		user.Institution,
		user.InstitutionCode,
		user.Course,
		user.CourseCode,
		user.AdmissionType,
		user.ProfilePicture,
		user.RequestID,
		user.UserType,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrapError(fmt.Sprintf("failed to create user %s", user.RegNumber), err)
	}
	return true, nil
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID,
		&u.RegNumber,
		&u.NIN,
		&u.Surname,
		&u.FirstName,
		&u.MiddleName,
		&u.DateOfBirth,
		&u.Gender,
		&u.StateOfOrigin,
		&u.LGAOfOrigin,
		&u.AdmissionYear,
		&u.Institution,
		&u.InstitutionCode,
		&u.Course,
		&u.CourseCode,
		&u.AdmissionType,
		&u.ProfilePicture,
		&u.RequestID,
		&u.UserType,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
