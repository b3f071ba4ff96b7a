// file: internals/features/schools/schools/service/school_service.go
package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	database "schoolhub_backend/internals/databases"
	"schoolhub_backend/internals/features/schools/schools/dto"
	"schoolhub_backend/internals/features/schools/schools/model"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

const slugMaxLen = 100

type SchoolService struct {
	DB   *gorm.DB
	Rand model.RandSource
}

func NewSchoolService(db *gorm.DB) *SchoolService {
	return &SchoolService{DB: db, Rand: model.DefaultRand}
}

func (s *SchoolService) rnd() model.RandSource {
	if s.Rand == nil {
		return model.DefaultRand
	}
	return s.Rand
}

/* =========================
   Reads
========================= */

// LockSchool loads a school, holding a row lock on postgres until tx ends.
func LockSchool(tx *gorm.DB, schoolID uuid.UUID) (*model.SchoolModel, error) {
	q := tx
	if database.IsPostgres(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var m model.SchoolModel
	if err := q.Where("school_id = ?", schoolID).First(&m).Error; err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("School not found")
		}
		return nil, helper.ErrStorage("lock school", err)
	}
	return &m, nil
}

func (s *SchoolService) Get(ctx context.Context, schoolID uuid.UUID) (*model.SchoolModel, error) {
	var m model.SchoolModel
	if err := s.DB.WithContext(ctx).Where("school_id = ?", schoolID).First(&m).Error; err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("School not found")
		}
		return nil, helper.ErrStorage("get school", err)
	}
	return &m, nil
}

func (s *SchoolService) GetBySlug(ctx context.Context, slug string) (*model.SchoolModel, error) {
	var m model.SchoolModel
	err := s.DB.WithContext(ctx).
		Where("LOWER(school_slug) = ?", strings.ToLower(strings.TrimSpace(slug))).
		First(&m).Error
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.ErrNotFound("School not found")
		}
		return nil, helper.ErrStorage("get school by slug", err)
	}
	return &m, nil
}

type ListSchoolsFilter struct {
	Type       string
	State      string
	City       string
	Search     string
	ActiveOnly bool
}

// List returns one page of schools, newest first.
func (s *SchoolService) List(ctx context.Context, f ListSchoolsFilter, p helper.Paging) ([]model.SchoolModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.SchoolModel{})
	if f.ActiveOnly {
		q = q.Where("school_is_active = ?", true)
	}
	if f.Type != "" {
		q = q.Where("school_type = ?", strings.ToLower(f.Type))
	}
	if f.State != "" {
		q = q.Where("school_state = ?", f.State)
	}
	if f.City != "" {
		q = q.Where("school_city = ?", f.City)
	}
	if strings.TrimSpace(f.Search) != "" {
		like := helper.LikePattern(f.Search)
		q = q.Where("LOWER(school_name) LIKE ? OR LOWER(school_slug) LIKE ? OR LOWER(COALESCE(school_contact_email, '')) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, helper.ErrStorage("count schools", err)
	}
	var rows []model.SchoolModel
	if err := q.Order("school_created_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&rows).Error; err != nil {
		return nil, 0, helper.ErrStorage("list schools", err)
	}
	return rows, total, nil
}

// SlugTaken compares case-insensitively.
func SlugTaken(tx *gorm.DB, slug string) (bool, error) {
	var n int64
	err := tx.Model(&model.SchoolModel{}).
		Where("LOWER(school_slug) = ?", strings.ToLower(slug)).
		Count(&n).Error
	return n > 0, err
}

func (s *SchoolService) SlugAvailable(ctx context.Context, slug string) (bool, error) {
	taken, err := SlugTaken(s.DB.WithContext(ctx), slug)
	if err != nil {
		return false, helper.ErrStorage("check slug", err)
	}
	return !taken, nil
}

/* =========================
   Writes
========================= */

// Create inserts a new school. The slug defaults to the slugified name.
func (s *SchoolService) Create(ctx context.Context, req dto.CreateSchoolRequest) (*model.SchoolModel, error) {
	req.Trim()
	typ, ok := model.ParseSchoolType(req.SchoolType)
	if !ok {
		return nil, &model.ValidationError{Field: "school_type", Message: "School type must be one of: primary, junior, senior, combined"}
	}
	slug := helper.Slugify(req.Name, slugMaxLen)
	if req.Slug != nil && *req.Slug != "" {
		slug = *req.Slug
	}

	now := dbtime.Now()
	m, err := model.NewSchool(model.NewSchoolInput{Name: req.Name, Slug: slug, Type: typ}, now, s.rnd())
	if err != nil {
		return nil, err
	}
	req.ApplyContact(m)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := SlugTaken(tx, m.SchoolSlug)
		if err != nil {
			return helper.ErrStorage("check slug", err)
		}
		if taken {
			return helper.ErrConflict("School with this slug already exists")
		}
		return s.insertWithFreshCodes(tx, m, now)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] school created id=%s slug=%s type=%s", m.SchoolID, m.SchoolSlug, m.SchoolType)
	return m, nil
}

// insertWithFreshCodes retries the insert under a savepoint while the
// registration codes collide. A slug collision is reported as-is.
func (s *SchoolService) insertWithFreshCodes(tx *gorm.DB, m *model.SchoolModel, now time.Time) error {
	for attempt := 1; attempt <= model.MaxCodeAttempts; attempt++ {
		err := tx.Transaction(func(sp *gorm.DB) error { return sp.Create(m).Error })
		if err == nil {
			return nil
		}
		if !helper.IsUniqueViolation(err) {
			return helper.ErrStorage("create school", err)
		}
		taken, cerr := SlugTaken(tx, m.SchoolSlug)
		if cerr != nil {
			return helper.ErrStorage("check slug", cerr)
		}
		if taken {
			return helper.ErrConflict("School with this slug already exists")
		}
		log.Printf("[WARN] registration code collision for %q (attempt %d/%d)", m.SchoolName, attempt, model.MaxCodeAttempts)
		m.RegenerateCodes(now, s.rnd())
	}
	return helper.ErrConflict("Could not generate unique registration codes, please retry")
}

// Update applies a partial update; config blocks are merged by the model.
func (s *SchoolService) Update(ctx context.Context, schoolID uuid.UUID, req dto.UpdateSchoolRequest) (*model.SchoolModel, error) {
	var out *model.SchoolModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := LockSchool(tx, schoolID)
		if err != nil {
			return err
		}
		if err := ApplySchoolUpdate(m, req); err != nil {
			return err
		}
		if err := tx.Save(m).Error; err != nil {
			return helper.ErrStorage("update school", err)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplySchoolUpdate runs the in-memory part of Update: plain fields, then
// academic config, operational details, subscription config and stage.
func ApplySchoolUpdate(m *model.SchoolModel, req dto.UpdateSchoolRequest) error {
	req.ApplyToModel(m)
	if req.AcademicConfig != nil {
		if err := m.UpdateAcademicConfig(req.AcademicConfig); err != nil {
			return err
		}
	}
	for category, details := range req.OperationalDetails {
		if err := m.AddOperationalDetail(category, details); err != nil {
			return err
		}
	}
	if req.SubscriptionConfig != nil {
		if err := m.UpdateSubscriptionConfig(req.SubscriptionConfig); err != nil {
			return err
		}
	}
	if req.SetupStage != nil {
		stage, _ := model.ParseSetupStage(*req.SetupStage)
		if err := m.UpdateSetupStage(stage); err != nil {
			return err
		}
	}
	return m.Validate()
}

// RegenerateCodes issues new teacher and student codes, retrying on collision.
func (s *SchoolService) RegenerateCodes(ctx context.Context, schoolID uuid.UUID) (*dto.RegenerateCodesResponse, error) {
	var out dto.RegenerateCodesResponse
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := LockSchool(tx, schoolID)
		if err != nil {
			return err
		}
		now := dbtime.Now()
		for attempt := 1; attempt <= model.MaxCodeAttempts; attempt++ {
			m.RegenerateCodes(now, s.rnd())
			err := tx.Transaction(func(sp *gorm.DB) error {
				return sp.Model(&model.SchoolModel{}).
					Where("school_id = ?", m.SchoolID).
					Updates(map[string]any{
						"school_teacher_registration_code": m.SchoolTeacherRegistrationCode,
						"school_student_registration_code": m.SchoolStudentRegistrationCode,
						"school_codes_generated_at":        m.SchoolCodesGeneratedAt,
					}).Error
			})
			if err == nil {
				out = dto.RegenerateCodesResponse{
					TeacherCode: m.SchoolTeacherRegistrationCode,
					StudentCode: m.SchoolStudentRegistrationCode,
					GeneratedAt: m.SchoolCodesGeneratedAt,
				}
				return nil
			}
			if !helper.IsUniqueViolation(err) {
				return helper.ErrStorage("regenerate codes", err)
			}
			log.Printf("[WARN] registration code collision on regenerate school=%s (attempt %d/%d)", m.SchoolID, attempt, model.MaxCodeAttempts)
		}
		return helper.ErrConflict("Could not generate unique registration codes, please retry")
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetLogo stores the uploaded logo location.
func (s *SchoolService) SetLogo(ctx context.Context, schoolID uuid.UUID, url, objectKey string) (*model.SchoolModel, error) {
	var out *model.SchoolModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := LockSchool(tx, schoolID)
		if err != nil {
			return err
		}
		m.SchoolLogoURL = &url
		m.SchoolLogoObjectKey = &objectKey
		if err := tx.Model(m).Updates(map[string]any{
			"school_logo_url":        url,
			"school_logo_object_key": objectKey,
		}).Error; err != nil {
			return helper.ErrStorage("set school logo", err)
		}
		out = m
		return nil
	})
	return out, err
}

// SetSubscriptionStatus is used by the payment webhook.
func (s *SchoolService) SetSubscriptionStatus(ctx context.Context, schoolID uuid.UUID, status model.SubscriptionStatus) error {
	if !status.Valid() {
		return &model.ValidationError{Field: "subscription_status", Message: "invalid subscription status"}
	}
	res := s.DB.WithContext(ctx).Model(&model.SchoolModel{}).
		Where("school_id = ?", schoolID).
		Update("school_subscription_status", status)
	if res.Error != nil {
		return helper.ErrStorage("set subscription status", res.Error)
	}
	if res.RowsAffected == 0 {
		return helper.ErrNotFound("School not found")
	}
	return nil
}

// SweepExpiredTrials moves every trial school whose trial has ended to expired.
func (s *SchoolService) SweepExpiredTrials(ctx context.Context, now time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&model.SchoolModel{}).
		Where("school_subscription_status = ? AND school_trial_ends_at IS NOT NULL AND school_trial_ends_at < ?",
			model.SubscriptionTrial, now.UTC()).
		Update("school_subscription_status", model.SubscriptionExpired)
	return res.RowsAffected, res.Error
}
