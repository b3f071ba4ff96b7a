// file: internals/features/schools/schools/dto/school_dto.go
package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"schoolhub_backend/internals/features/schools/schools/model"
)

/* ========== REQUEST DTOs ========== */

type CreateSchoolRequest struct {
	Name       string  `json:"name"        validate:"required,min=1,max=200"`
	SchoolType string  `json:"school_type" validate:"required,oneof=primary junior senior combined"`
	Slug       *string `json:"slug"        validate:"omitempty,max=100"`

	Motto           *string `json:"motto"            validate:"omitempty,max=300"`
	Vision          *string `json:"vision"`
	Mission         *string `json:"mission"`
	ContactEmail    *string `json:"contact_email"    validate:"omitempty,max=120"`
	ContactPhone    *string `json:"contact_phone"    validate:"omitempty,max=20"`
	ContactWhatsapp *string `json:"contact_whatsapp" validate:"omitempty,max=20"`
	Website         *string `json:"website"          validate:"omitempty,max=200"`
	Address         *string `json:"address"`
	City            *string `json:"city"             validate:"omitempty,max=100"`
	State           *string `json:"state"            validate:"omitempty,max=100"`
	Country         *string `json:"country"          validate:"omitempty,max=100"`
}

// UpdateSchoolRequest is a partial update. Config blocks are merged, never replaced.
type UpdateSchoolRequest struct {
	Motto           *string `json:"motto"            validate:"omitempty,max=300"`
	Vision          *string `json:"vision"`
	Mission         *string `json:"mission"`
	ContactEmail    *string `json:"contact_email"    validate:"omitempty,max=120"`
	ContactPhone    *string `json:"contact_phone"    validate:"omitempty,max=20"`
	ContactWhatsapp *string `json:"contact_whatsapp" validate:"omitempty,max=20"`
	Website         *string `json:"website"          validate:"omitempty,max=200"`
	Address         *string `json:"address"`
	City            *string `json:"city"             validate:"omitempty,max=100"`
	State           *string `json:"state"            validate:"omitempty,max=100"`
	Country         *string `json:"country"          validate:"omitempty,max=100"`

	AcademicConfig     map[string]any            `json:"academic_config"`
	OperationalDetails map[string]map[string]any `json:"operational_details"`
	SubscriptionConfig map[string]any            `json:"subscription_config"`
	SetupStage         *string                   `json:"setup_stage"`
}

type JoinSchoolRequest struct {
	UserID           *uuid.UUID `json:"user_id"`
	RegistrationCode string     `json:"registration_code" validate:"required,max=50"`
	RoleType         string     `json:"role_type"         validate:"required,oneof=teacher student"`
}

type CreateAndJoinRequest struct {
	UserID     *uuid.UUID `json:"user_id"`
	SchoolName string     `json:"school_name" validate:"required,min=1,max=200"`
	SchoolType string     `json:"school_type" validate:"required,oneof=primary junior senior combined"`
}

// Trim normalises free-text inputs in place.
func (r *CreateSchoolRequest) Trim() {
	r.Name = strings.TrimSpace(r.Name)
	r.SchoolType = strings.ToLower(strings.TrimSpace(r.SchoolType))
	if r.Slug != nil {
		s := strings.TrimSpace(*r.Slug)
		r.Slug = &s
	}
	for _, p := range []**string{&r.ContactEmail, &r.ContactPhone, &r.ContactWhatsapp, &r.Website, &r.City, &r.State, &r.Country} {
		*p = trimOrNil(*p)
	}
}

// ApplyContact copies the optional profile fields onto m.
func (r *CreateSchoolRequest) ApplyContact(m *model.SchoolModel) {
	m.SchoolMotto = r.Motto
	m.SchoolVision = r.Vision
	m.SchoolMission = r.Mission
	m.SchoolContactEmail = r.ContactEmail
	m.SchoolContactPhone = r.ContactPhone
	m.SchoolContactWhatsapp = r.ContactWhatsapp
	m.SchoolWebsite = r.Website
	m.SchoolAddress = r.Address
	m.SchoolCity = r.City
	if r.State != nil {
		m.SchoolState = r.State
	}
	if r.Country != nil {
		m.SchoolCountry = *r.Country
	}
}

// ApplyToModel sets the plain columns. Config blocks and the setup stage go
// through the model's config engine in the service.
func (r *UpdateSchoolRequest) ApplyToModel(m *model.SchoolModel) {
	if r.Motto != nil {
		m.SchoolMotto = r.Motto
	}
	if r.Vision != nil {
		m.SchoolVision = r.Vision
	}
	if r.Mission != nil {
		m.SchoolMission = r.Mission
	}
	if r.ContactEmail != nil {
		m.SchoolContactEmail = trimOrNil(r.ContactEmail)
	}
	if r.ContactPhone != nil {
		m.SchoolContactPhone = trimOrNil(r.ContactPhone)
	}
	if r.ContactWhatsapp != nil {
		m.SchoolContactWhatsapp = trimOrNil(r.ContactWhatsapp)
	}
	if r.Website != nil {
		m.SchoolWebsite = trimOrNil(r.Website)
	}
	if r.Address != nil {
		m.SchoolAddress = r.Address
	}
	if r.City != nil {
		m.SchoolCity = trimOrNil(r.City)
	}
	if r.State != nil {
		m.SchoolState = trimOrNil(r.State)
	}
	if r.Country != nil && strings.TrimSpace(*r.Country) != "" {
		m.SchoolCountry = strings.TrimSpace(*r.Country)
	}
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

/* ========== RESPONSE DTO ========== */

type SchoolResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name       string           `json:"name"`
	Slug       string           `json:"slug"`
	SchoolType model.SchoolType `json:"school_type"`
	Motto      *string          `json:"motto"`
	Vision     *string          `json:"vision"`
	Mission    *string          `json:"mission"`

	ContactEmail    *string `json:"contact_email"`
	ContactPhone    *string `json:"contact_phone"`
	ContactWhatsapp *string `json:"contact_whatsapp"`
	Website         *string `json:"website"`
	Address         *string `json:"address"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	Country         string  `json:"country"`
	LogoURL         *string `json:"logo_url"`

	TeacherRegistrationCode string    `json:"teacher_registration_code"`
	StudentRegistrationCode string    `json:"student_registration_code"`
	CodesGeneratedAt        time.Time `json:"codes_generated_at"`

	OperationalDetails map[string]any  `json:"operational_details"`
	AcademicConfig     json.RawMessage `json:"academic_config"`
	SubscriptionConfig json.RawMessage `json:"subscription_config"`

	SetupCompleted     bool                     `json:"setup_completed"`
	SetupStage         model.SetupStage         `json:"setup_stage"`
	SubscriptionStatus model.SubscriptionStatus `json:"subscription_status"`
	TrialEndsAt        *time.Time               `json:"trial_ends_at"`
	IsActive           bool                     `json:"is_active"`
	StudentCount       int                      `json:"student_count"`
	TeacherCount       int                      `json:"teacher_count"`

	// Derived on every call.
	ContactChannels      []model.ContactChannel `json:"contact_channels"`
	IsTrialExpired       bool                   `json:"is_trial_expired"`
	CanAddStudent        bool                   `json:"can_add_student"`
	CanAddTeacher        bool                   `json:"can_add_teacher"`
	DaysRemainingInTrial int                    `json:"days_remaining_in_trial"`
	SetupProgress        int                    `json:"setup_progress"`
}

// FromSchoolModel builds the full projection; derived fields use now.
func FromSchoolModel(m *model.SchoolModel, now time.Time) SchoolResponse {
	academic := json.RawMessage(m.SchoolAcademicConfig)
	if cfg, err := m.AcademicConfig(); err == nil {
		if b, err := json.Marshal(cfg); err == nil {
			academic = b
		}
	}
	if len(academic) == 0 {
		academic = json.RawMessage("null")
	}
	subscription := json.RawMessage(m.SchoolSubscriptionConfig)
	if len(subscription) == 0 {
		subscription = json.RawMessage("null")
	}
	ops := map[string]any(m.SchoolOperationalDetails)
	if ops == nil {
		ops = map[string]any{}
	}

	return SchoolResponse{
		ID:        m.SchoolID,
		CreatedAt: m.SchoolCreatedAt,
		UpdatedAt: m.SchoolUpdatedAt,

		Name:       m.SchoolName,
		Slug:       m.SchoolSlug,
		SchoolType: m.SchoolType,
		Motto:      m.SchoolMotto,
		Vision:     m.SchoolVision,
		Mission:    m.SchoolMission,

		ContactEmail:    m.SchoolContactEmail,
		ContactPhone:    m.SchoolContactPhone,
		ContactWhatsapp: m.SchoolContactWhatsapp,
		Website:         m.SchoolWebsite,
		Address:         m.SchoolAddress,
		City:            m.SchoolCity,
		State:           m.SchoolState,
		Country:         m.SchoolCountry,
		LogoURL:         m.SchoolLogoURL,

		TeacherRegistrationCode: m.SchoolTeacherRegistrationCode,
		StudentRegistrationCode: m.SchoolStudentRegistrationCode,
		CodesGeneratedAt:        m.SchoolCodesGeneratedAt,

		OperationalDetails: ops,
		AcademicConfig:     academic,
		SubscriptionConfig: subscription,

		SetupCompleted:     m.SchoolSetupCompleted,
		SetupStage:         m.SchoolSetupStage,
		SubscriptionStatus: m.SchoolSubscriptionStatus,
		TrialEndsAt:        m.SchoolTrialEndsAt,
		IsActive:           m.SchoolIsActive,
		StudentCount:       m.SchoolStudentCount,
		TeacherCount:       m.SchoolTeacherCount,

		ContactChannels:      m.ContactChannels(),
		IsTrialExpired:       m.IsTrialExpired(now),
		CanAddStudent:        m.CanAddStudent(),
		CanAddTeacher:        m.CanAddTeacher(),
		DaysRemainingInTrial: m.DaysRemainingInTrial(now),
		SetupProgress:        m.SetupProgress(),
	}
}

func FromSchoolModels(rows []model.SchoolModel, now time.Time) []SchoolResponse {
	return lo.Map(rows, func(m model.SchoolModel, _ int) SchoolResponse {
		return FromSchoolModel(&m, now)
	})
}

// SchoolBrief is the compact shape used in search results and join responses.
type SchoolBrief struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	Slug       string           `json:"slug"`
	SchoolType model.SchoolType `json:"school_type"`
	City       *string          `json:"city,omitempty"`
	State      *string          `json:"state,omitempty"`
	LogoURL    *string          `json:"logo_url,omitempty"`
}

func ToSchoolBrief(m *model.SchoolModel) SchoolBrief {
	return SchoolBrief{
		ID:         m.SchoolID,
		Name:       m.SchoolName,
		Slug:       m.SchoolSlug,
		SchoolType: m.SchoolType,
		City:       m.SchoolCity,
		State:      m.SchoolState,
		LogoURL:    m.SchoolLogoURL,
	}
}

/* ========== STATS / CODES ========== */

type SchoolStatsResponse struct {
	SchoolID           uuid.UUID                `json:"school_id"`
	StudentCount       int                      `json:"student_count"`
	ActiveStudents     int64                    `json:"active_students"`
	TeacherCount       int                      `json:"teacher_count"`
	ClassCount         int64                    `json:"class_count"`
	RoleDistribution   map[string]int64         `json:"role_distribution"`
	SubscriptionStatus model.SubscriptionStatus `json:"subscription_status"`
	TrialDaysRemaining int                      `json:"trial_days_remaining"`
	SetupProgress      int                      `json:"setup_progress"`
}

type RegenerateCodesResponse struct {
	TeacherCode string    `json:"teacher_code"`
	StudentCode string    `json:"student_code"`
	GeneratedAt time.Time `json:"generated_at"`
}
