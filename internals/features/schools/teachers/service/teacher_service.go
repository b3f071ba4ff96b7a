package service

import (
	"context"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	classModel "schoolhub_backend/internals/features/schools/classes/model"
	schoolModel "schoolhub_backend/internals/features/schools/schools/model"
	schoolService "schoolhub_backend/internals/features/schools/schools/service"
	subjectModel "schoolhub_backend/internals/features/schools/subjects/model"
	"schoolhub_backend/internals/features/schools/teachers/dto"
	"schoolhub_backend/internals/features/schools/teachers/model"
	authHelper "schoolhub_backend/internals/features/users/auth/helper"
	userModel "schoolhub_backend/internals/features/users/user/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

const temporaryPasswordLength = 10

type TeacherService struct {
	DB *gorm.DB
}

func NewTeacherService(db *gorm.DB) *TeacherService {
	return &TeacherService{DB: db}
}

type ListTeachersFilter struct {
	Role       string
	Status     string
	Search     string
	ActiveOnly bool
}

func (s *TeacherService) List(ctx context.Context, schoolID uuid.UUID, f ListTeachersFilter, p helper.Paging) ([]model.TeacherModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.TeacherModel{}).Where("teacher_school_id = ?", schoolID)
	if f.Role != "" {
		q = q.Where("teacher_role = ?", strings.ToLower(f.Role))
	}
	if f.Status != "" {
		q = q.Where("teacher_employment_status = ?", strings.ToLower(f.Status))
	}
	if f.ActiveOnly {
		q = q.Where("teacher_is_active = ?", true)
	}
	if strings.TrimSpace(f.Search) != "" {
		like := helper.LikePattern(f.Search)
		q = q.Where(`LOWER(teacher_first_name) LIKE ? OR LOWER(teacher_last_name) LIKE ?
			OR LOWER(COALESCE(teacher_email,'')) LIKE ? OR LOWER(teacher_code) LIKE ?
			OR LOWER(COALESCE(teacher_staff_number,'')) LIKE ?`, like, like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.ErrStorage("count teachers", err)
	}
	var rows []model.TeacherModel
	if err := q.Order("teacher_date_joined_platform DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error; err != nil {
		return nil, 0, helper.ErrStorage("list teachers", err)
	}
	return rows, total, nil
}

// FindInSchool loads a teacher of schoolID; other schools' teachers are 404.
func FindInSchool(tx *gorm.DB, schoolID, teacherID uuid.UUID) (*model.TeacherModel, error) {
	var t model.TeacherModel
	if err := tx.Where("teacher_id = ? AND teacher_school_id = ?", teacherID, schoolID).First(&t).Error; err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("Teacher not found")
		}
		return nil, helper.ErrStorage("find teacher", err)
	}
	return &t, nil
}

// ReferencedTeacher loads a teacher named by another record (form teacher,
// subject teacher); a miss or a foreign school is 404.
func ReferencedTeacher(tx *gorm.DB, schoolID, teacherID uuid.UUID) (*model.TeacherModel, error) {
	t, err := FindInSchool(tx, schoolID, teacherID)
	if err != nil && helper.IsHTTPStatus(err, fiber.StatusNotFound) {
		return nil, helper.ErrNotFound("Teacher not found or belongs to different school")
	}
	return t, err
}

func (s *TeacherService) Get(ctx context.Context, schoolID, teacherID uuid.UUID) (*model.TeacherModel, error) {
	return FindInSchool(s.DB.WithContext(ctx), schoolID, teacherID)
}

// Detail adds the linked account, form classes and subjects taught.
func (s *TeacherService) Detail(ctx context.Context, schoolID, teacherID uuid.UUID) (*dto.TeacherDetailResponse, error) {
	db := s.DB.WithContext(ctx)
	t, err := FindInSchool(db, schoolID, teacherID)
	if err != nil {
		return nil, err
	}
	out := &dto.TeacherDetailResponse{TeacherResponse: dto.FromModel(t)}

	var u userModel.UserModel
	switch err := db.Where("id = ?", teacherID).First(&u).Error; {
	case err == nil:
		out.UserAccount = &dto.UserAccount{Email: u.Email, Status: u.Status, VerifiedAt: u.VerifiedAt}
	case !helper.IsNotFound(err):
		return nil, helper.ErrStorage("find teacher account", err)
	}

	var classes []classModel.ClassModel
	if err := db.Where("class_form_teacher_id = ?", teacherID).Order("class_display_name").Find(&classes).Error; err != nil {
		return nil, helper.ErrStorage("find form classes", err)
	}
	out.FormTeacherOf = lo.Map(classes, func(c classModel.ClassModel, _ int) dto.ClassBrief { return dto.ToClassBrief(&c) })

	var subjects []subjectModel.SubjectModel
	if err := db.Where("subject_teacher_id = ?", teacherID).Order("subject_name").Find(&subjects).Error; err != nil {
		return nil, helper.ErrStorage("find subjects taught", err)
	}
	out.SubjectsTaught = lo.Map(subjects, func(sb subjectModel.SubjectModel, _ int) dto.SubjectBrief {
		return dto.ToSubjectBrief(&sb, nil)
	})
	return out, nil
}

type CreateTeacherResult struct {
	Teacher           *model.TeacherModel
	User              *userModel.UserModel
	TemporaryPassword *string
}

// Create adds a teacher under the plan limit. With an email, a linked
// active user (same id, role teacher) is created with a temporary password.
func (s *TeacherService) Create(ctx context.Context, schoolID uuid.UUID, req dto.CreateTeacherRequest) (*CreateTeacherResult, error) {
	now := dbtime.Now()
	t := req.ToModel(schoolID, now)
	t.TeacherID = uuid.New()

	var out CreateTeacherResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seat, err := schoolService.ReserveSeat(tx, schoolID, schoolModel.CodeKindTeacher)
		if err != nil {
			return err
		}
		t.TeacherCode = seat.Code

		if t.TeacherEmail != nil {
			var n int64
			if err := tx.Model(&userModel.UserModel{}).Where("email = ?", *t.TeacherEmail).Count(&n).Error; err != nil {
				return helper.ErrStorage("check teacher email", err)
			}
			if n > 0 {
				return helper.ErrConflict("Email already registered")
			}

			plain := authHelper.TemporaryPassword(temporaryPasswordLength)
			hash, err := authHelper.HashPassword(plain)
			if err != nil {
				return helper.ErrStorage("hash password", err)
			}
			u := &userModel.UserModel{
				ID:        t.TeacherID,
				SchoolID:  &schoolID,
				Role:      constants.RoleTeacher,
				FirstName: t.TeacherFirstName,
				LastName:  t.TeacherLastName,
				Email:     *t.TeacherEmail,
				Phone:     t.TeacherPhone,
				Password:  hash,
			}
			u.Activate(now)
			if err := tx.Create(u).Error; err != nil {
				if helper.IsUniqueViolation(err) {
					return helper.ErrConflict("Email or phone already registered")
				}
				return helper.ErrStorage("create teacher account", err)
			}
			out.User = u
			out.TemporaryPassword = &plain
		}

		if err := tx.Create(t).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return helper.ErrConflict("Staff number already exists in this school")
			}
			return helper.ErrStorage("create teacher", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Teacher = t
	log.Printf("[INFO] teacher created id=%s school=%s code=%s", t.TeacherID, schoolID, t.TeacherCode)
	return &out, nil
}

// userStatusFor mirrors employment onto the login account: only a
// suspension blocks sign-in.
func userStatusFor(s model.EmploymentStatus) userModel.UserStatus {
	if s == model.EmploymentSuspended {
		return userModel.UserStatusSuspended
	}
	return userModel.UserStatusActive
}

func (s *TeacherService) Update(ctx context.Context, schoolID, teacherID uuid.UUID, req dto.UpdateTeacherRequest) (*model.TeacherModel, error) {
	var t *model.TeacherModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		t, err = FindInSchool(tx, schoolID, teacherID)
		if err != nil {
			return err
		}
		req.ApplyToModel(t)
		if err := tx.Save(t).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return helper.ErrConflict("Staff number already exists in this school")
			}
			return helper.ErrStorage("update teacher", err)
		}

		userUpdates := map[string]any{}
		if req.Email != nil {
			userUpdates["email"] = *req.Email
		}
		if req.EmploymentStatus != nil {
			userUpdates["status"] = userStatusFor(t.TeacherEmploymentStatus)
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&userModel.UserModel{}).Where("id = ?", teacherID).Updates(userUpdates).Error; err != nil {
				if helper.IsUniqueViolation(err) {
					return helper.ErrConflict("Email already registered")
				}
				return helper.ErrStorage("update teacher account", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Subjects lists the active subjects a teacher teaches, with their class.
func (s *TeacherService) Subjects(ctx context.Context, schoolID, teacherID uuid.UUID) ([]dto.SubjectBrief, error) {
	db := s.DB.WithContext(ctx)
	if _, err := FindInSchool(db, schoolID, teacherID); err != nil {
		return nil, err
	}
	var subjects []subjectModel.SubjectModel
	if err := db.Where("subject_teacher_id = ? AND subject_is_active = ?", teacherID, true).
		Order("subject_name").Find(&subjects).Error; err != nil {
		return nil, helper.ErrStorage("list teacher subjects", err)
	}
	classIDs := lo.Uniq(lo.Map(subjects, func(sb subjectModel.SubjectModel, _ int) uuid.UUID { return sb.SubjectClassID }))
	classes := map[uuid.UUID]*classModel.ClassModel{}
	if len(classIDs) > 0 {
		var rows []classModel.ClassModel
		if err := db.Where("class_id IN ?", classIDs).Find(&rows).Error; err != nil {
			return nil, helper.ErrStorage("load subject classes", err)
		}
		for i := range rows {
			classes[rows[i].ClassID] = &rows[i]
		}
	}
	return lo.Map(subjects, func(sb subjectModel.SubjectModel, _ int) dto.SubjectBrief {
		return dto.ToSubjectBrief(&sb, classes[sb.SubjectClassID])
	}), nil
}

// Activate restores employment and the linked account.
func (s *TeacherService) Activate(ctx context.Context, schoolID, teacherID uuid.UUID) (*model.TeacherModel, error) {
	var t *model.TeacherModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		t, err = FindInSchool(tx, schoolID, teacherID)
		if err != nil {
			return err
		}
		t.SetEmploymentStatus(model.EmploymentActive)
		if err := tx.Save(t).Error; err != nil {
			return helper.ErrStorage("activate teacher", err)
		}

		var u userModel.UserModel
		switch err := tx.Where("id = ?", teacherID).First(&u).Error; {
		case err == nil:
			u.Activate(dbtime.Now())
			if err := tx.Model(&u).Updates(map[string]any{"status": u.Status, "verified_at": u.VerifiedAt}).Error; err != nil {
				return helper.ErrStorage("activate teacher account", err)
			}
		case !helper.IsNotFound(err):
			return helper.ErrStorage("find teacher account", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
