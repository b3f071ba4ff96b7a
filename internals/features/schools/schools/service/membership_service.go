// file: internals/features/schools/schools/service/membership_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolhub_backend/internals/constants"
	database "schoolhub_backend/internals/databases"
	"schoolhub_backend/internals/features/schools/schools/dto"
	"schoolhub_backend/internals/features/schools/schools/model"
	studentModel "schoolhub_backend/internals/features/schools/students/model"
	teacherModel "schoolhub_backend/internals/features/schools/teachers/model"
	userModel "schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

/* =========================
   Seats (counter + member code)
========================= */

// Seat is one reserved member slot of a school.
type Seat struct {
	School *model.SchoolModel
	Code   string
	Seq    int
}

// ReserveSeat locks the school row, checks the plan limit, bumps the
// counter and returns the sequential member code. It must run inside the
// transaction that inserts the member so both move together.
func ReserveSeat(tx *gorm.DB, schoolID uuid.UUID, kind model.CodeKind) (*Seat, error) {
	m, err := LockSchool(tx, schoolID)
	if err != nil {
		return nil, err
	}
	if !m.CanAdd(kind) {
		return nil, helper.ErrValidation(fmt.Sprintf("School has reached %s limit", kind))
	}

	var col string
	var seq int
	switch kind {
	case model.CodeKindStudent:
		m.SchoolStudentCount++
		col, seq = "school_student_count", m.SchoolStudentCount
	default:
		m.SchoolTeacherCount++
		col, seq = "school_teacher_count", m.SchoolTeacherCount
	}
	if err := tx.Model(&model.SchoolModel{}).Where("school_id = ?", m.SchoolID).Update(col, seq).Error; err != nil {
		return nil, helper.ErrStorage("reserve seat", err)
	}
	return &Seat{School: m, Code: model.MemberCode(kind, m.SchoolID, seq), Seq: seq}, nil
}

func lockUser(tx *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	q := tx
	if database.IsPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var u userModel.UserModel
	if err := q.Where("id = ?", userID).First(&u).Error; err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("User not found")
		}
		return nil, helper.ErrStorage("lock user", err)
	}
	return &u, nil
}

/* =========================
   Join by code
========================= */

type JoinResult struct {
	School  *model.SchoolModel
	User    *userModel.UserModel
	Teacher *teacherModel.TeacherModel
	Student *studentModel.StudentModel
}

// Join links userID to the school owning code and creates the matching
// teacher or student record.
func (s *SchoolService) Join(ctx context.Context, userID uuid.UUID, code string, roleType string) (*JoinResult, error) {
	kind, ok := model.ParseCodeKind(roleType)
	if !ok {
		return nil, &model.ValidationError{Field: "role_type", Message: `role_type must be "teacher" or "student"`}
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, &model.ValidationError{Field: "registration_code", Message: "registration_code is required"}
	}
	codeCol := "school_teacher_registration_code"
	if kind == model.CodeKindStudent {
		codeCol = "school_student_registration_code"
	}

	var out JoinResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := lockUser(tx, userID)
		if err != nil {
			return err
		}

		var school model.SchoolModel
		if err := tx.Where(codeCol+" = ?", code).First(&school).Error; err != nil {
			if helper.IsNotFound(err) {
				return helper.ErrNotFound("Invalid registration code")
			}
			return helper.ErrStorage("find school by code", err)
		}
		if u.HasSchool() {
			return helper.ErrValidation("User already belongs to a school")
		}

		seat, err := ReserveSeat(tx, school.SchoolID, kind)
		if err != nil {
			return err
		}

		now := dbtime.Now()
		switch kind {
		case model.CodeKindTeacher:
			t := &teacherModel.TeacherModel{
				TeacherID:                 u.ID,
				TeacherSchoolID:           school.SchoolID,
				TeacherCode:               seat.Code,
				TeacherFirstName:          u.FirstName,
				TeacherLastName:           u.LastName,
				TeacherEmail:              &u.Email,
				TeacherRole:               teacherModel.TeacherRoleTeacher,
				TeacherEmploymentStatus:   teacherModel.EmploymentActive,
				TeacherIsActive:           true,
				TeacherDateJoinedPlatform: now,
			}
			if err := tx.Create(t).Error; err != nil {
				if helper.IsUniqueViolation(err) {
					return helper.ErrConflict("Teacher record already exists for this user")
				}
				return helper.ErrStorage("create teacher", err)
			}
			out.Teacher = t
		default:
			st := &studentModel.StudentModel{
				StudentSchoolID:           school.SchoolID,
				StudentCode:               seat.Code,
				StudentFirstName:          u.FirstName,
				StudentLastName:           u.LastName,
				StudentEmail:              &u.Email,
				StudentIsActive:           true,
				StudentDateJoinedPlatform: now,
			}
			if err := tx.Create(st).Error; err != nil {
				if helper.IsUniqueViolation(err) {
					return helper.ErrConflict("Student code already taken, please retry")
				}
				return helper.ErrStorage("create student", err)
			}
			out.Student = st
		}

		u.SchoolID = &school.SchoolID
		u.Role = string(kind)
		u.RegistrationCodeUsed = &code
		if err := tx.Model(u).Updates(map[string]any{
			"school_id":              school.SchoolID,
			"role":                   u.Role,
			"registration_code_used": code,
		}).Error; err != nil {
			return helper.ErrStorage("link user to school", err)
		}

		out.School = seat.School
		out.User = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] user %s joined school %s as %s", userID, out.School.SchoolID, kind)
	return &out, nil
}

/* =========================
   Create and join (owner)
========================= */

// CreateAndJoin creates a school for userID and makes them its owner.
// Slug collisions get a numeric suffix instead of failing.
func (s *SchoolService) CreateAndJoin(ctx context.Context, userID uuid.UUID, req dto.CreateAndJoinRequest) (*JoinResult, error) {
	typ, ok := model.ParseSchoolType(req.SchoolType)
	if !ok {
		return nil, &model.ValidationError{Field: "school_type", Message: "School type must be one of: primary, junior, senior, combined"}
	}
	name := strings.TrimSpace(req.SchoolName)
	if name == "" {
		return nil, &model.ValidationError{Field: "school_name", Message: "school_name is required"}
	}

	var out JoinResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := lockUser(tx, userID)
		if err != nil {
			return err
		}
		if u.HasSchool() {
			return helper.ErrValidation("User already belongs to a school")
		}

		slug, err := helper.EnsureUniqueSlugCI(ctx, tx, "schools", "school_slug", helper.Slugify(name, slugMaxLen), nil, slugMaxLen)
		if err != nil {
			return helper.ErrStorage("ensure unique slug", err)
		}

		now := dbtime.Now()
		m, err := model.NewSchool(model.NewSchoolInput{Name: name, Slug: slug, Type: typ}, now, s.rnd())
		if err != nil {
			return err
		}
		if u.Email != "" {
			email := u.Email
			m.SchoolContactEmail = &email
		}
		if err := s.insertWithFreshCodes(tx, m, now); err != nil {
			return err
		}

		u.SchoolID = &m.SchoolID
		u.Role = constants.RoleOwner
		if err := tx.Model(u).Updates(map[string]any{
			"school_id": m.SchoolID,
			"role":      constants.RoleOwner,
		}).Error; err != nil {
			return helper.ErrStorage("link owner to school", err)
		}

		out.School = m
		out.User = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] user %s created school %s (%s)", userID, out.School.SchoolID, out.School.SchoolSlug)
	return &out, nil
}
