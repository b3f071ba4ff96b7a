package model

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"schoolhub_backend/internals/constants"
	helper "schoolhub_backend/internals/helpers"
	"schoolhub_backend/internals/helpers/dbtime"
)

const TrialPeriod = 30 * 24 * time.Hour

var contactEmailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

/* =========================
   School model (tenant root)
========================= */

type SchoolModel struct {
	SchoolID uuid.UUID `gorm:"type:uuid;primaryKey;column:school_id" json:"school_id"`

	// Identity
	SchoolName    string     `gorm:"type:varchar(200);not null;column:school_name" json:"school_name"`
	SchoolSlug    string     `gorm:"type:varchar(100);not null;uniqueIndex:uq_schools_slug;column:school_slug" json:"school_slug"`
	SchoolType    SchoolType `gorm:"type:varchar(20);not null;index;column:school_type" json:"school_type"`
	SchoolMotto   *string    `gorm:"type:varchar(300);column:school_motto" json:"school_motto,omitempty"`
	SchoolVision  *string    `gorm:"type:text;column:school_vision" json:"school_vision,omitempty"`
	SchoolMission *string    `gorm:"type:text;column:school_mission" json:"school_mission,omitempty"`

	// Contact
	SchoolContactEmail    *string `gorm:"type:varchar(120);column:school_contact_email" json:"school_contact_email,omitempty"`
	SchoolContactPhone    *string `gorm:"type:varchar(20);column:school_contact_phone" json:"school_contact_phone,omitempty"`
	SchoolContactWhatsapp *string `gorm:"type:varchar(20);column:school_contact_whatsapp" json:"school_contact_whatsapp,omitempty"`
	SchoolWebsite         *string `gorm:"type:varchar(200);column:school_website" json:"school_website,omitempty"`

	// Location
	SchoolAddress *string `gorm:"type:text;column:school_address" json:"school_address,omitempty"`
	SchoolCity    *string `gorm:"type:varchar(100);index;column:school_city" json:"school_city,omitempty"`
	SchoolState   *string `gorm:"type:varchar(100);index;column:school_state" json:"school_state,omitempty"`
	SchoolCountry string  `gorm:"type:varchar(100);not null;column:school_country" json:"school_country"`

	// Media
	SchoolLogoURL       *string `gorm:"type:text;column:school_logo_url" json:"school_logo_url,omitempty"`
	SchoolLogoObjectKey *string `gorm:"type:text;column:school_logo_object_key" json:"school_logo_object_key,omitempty"`

	// Registration codes
	SchoolTeacherRegistrationCode string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_schools_teacher_code;column:school_teacher_registration_code" json:"school_teacher_registration_code"`
	SchoolStudentRegistrationCode string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_schools_student_code;column:school_student_registration_code" json:"school_student_registration_code"`
	SchoolCodesGeneratedAt        time.Time `gorm:"column:school_codes_generated_at" json:"school_codes_generated_at"`

	// Config blocks (jsonb). Subscription is JSON null until configured.
	SchoolOperationalDetails datatypes.JSONMap `gorm:"column:school_operational_details" json:"school_operational_details,omitempty"`
	SchoolAcademicConfig     datatypes.JSON    `gorm:"not null;column:school_academic_config" json:"school_academic_config"`
	SchoolSubscriptionConfig datatypes.JSON    `gorm:"not null;column:school_subscription_config" json:"school_subscription_config"`

	// Setup + subscription lifecycle
	SchoolSetupStage         SetupStage         `gorm:"type:varchar(20);not null;column:school_setup_stage" json:"school_setup_stage"`
	SchoolSetupCompleted     bool               `gorm:"not null;default:false;column:school_setup_completed" json:"school_setup_completed"`
	SchoolSubscriptionStatus SubscriptionStatus `gorm:"type:varchar(20);not null;index;column:school_subscription_status" json:"school_subscription_status"`
	SchoolTrialEndsAt        *time.Time         `gorm:"column:school_trial_ends_at" json:"school_trial_ends_at,omitempty"`
	SchoolIsActive           bool               `gorm:"not null;default:true;index;column:school_is_active" json:"school_is_active"`

	// Denormalized counters, kept in step with teachers/students by ReserveSeat.
	SchoolStudentCount int `gorm:"not null;default:0;column:school_student_count" json:"school_student_count"`
	SchoolTeacherCount int `gorm:"not null;default:0;column:school_teacher_count" json:"school_teacher_count"`

	SchoolCreatedAt time.Time `gorm:"autoCreateTime;index;column:school_created_at" json:"school_created_at"`
	SchoolUpdatedAt time.Time `gorm:"autoUpdateTime;column:school_updated_at" json:"school_updated_at"`
}

func (SchoolModel) TableName() string { return "schools" }

func (m *SchoolModel) BeforeCreate(tx *gorm.DB) error {
	if m.SchoolID == uuid.Nil {
		m.SchoolID = uuid.New()
	}
	return nil
}

/* =========================
   Construction
========================= */

type NewSchoolInput struct {
	Name string
	Slug string
	Type SchoolType

	// Optional; generated or defaulted when empty.
	TeacherRegistrationCode string
	StudentRegistrationCode string
	SubscriptionStatus      SubscriptionStatus
	TrialEndsAt             *time.Time
	AcademicConfig          *AcademicConfig
	SubscriptionConfig      *SubscriptionConfig
}

// NewSchool builds a school with codes, trial expiry and default configs
// filled in for whatever the input leaves empty.
func NewSchool(in NewSchoolInput, now time.Time, rnd RandSource) (*SchoolModel, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "name is required"}
	}
	if !in.Type.Valid() {
		return nil, &ValidationError{Field: "school_type", Message: "school_type must be one of: " + joinEnum(SchoolTypes)}
	}
	status := in.SubscriptionStatus
	if status == "" {
		status = SubscriptionTrial
	}

	m := &SchoolModel{
		SchoolName:                    name,
		SchoolSlug:                    in.Slug,
		SchoolType:                    in.Type,
		SchoolCountry:                 constants.DefaultCountry,
		SchoolState:                   strPtr(constants.DefaultState),
		SchoolTeacherRegistrationCode: in.TeacherRegistrationCode,
		SchoolStudentRegistrationCode: in.StudentRegistrationCode,
		SchoolCodesGeneratedAt:        now.UTC(),
		SchoolSetupStage:              StageBasic,
		SchoolSubscriptionStatus:      status,
		SchoolTrialEndsAt:             in.TrialEndsAt,
		SchoolIsActive:                true,
	}

	if m.SchoolTeacherRegistrationCode == "" {
		m.SchoolTeacherRegistrationCode = GenerateRegistrationCode(name, CodeKindTeacher, rnd)
	}
	if m.SchoolStudentRegistrationCode == "" {
		m.SchoolStudentRegistrationCode = GenerateRegistrationCode(name, CodeKindStudent, rnd)
	}
	if m.SchoolTrialEndsAt == nil && status == SubscriptionTrial {
		t := now.UTC().Add(TrialPeriod)
		m.SchoolTrialEndsAt = &t
	}

	ac := DefaultAcademicConfig(in.Type, now.In(dbtime.SchoolLocation()))
	if in.AcademicConfig != nil {
		ac = *in.AcademicConfig
	}
	if err := m.SetAcademicConfig(ac); err != nil {
		return nil, err
	}
	sc := DefaultSubscriptionConfig()
	if in.SubscriptionConfig != nil {
		sc = *in.SubscriptionConfig
	}
	if err := m.SetSubscriptionConfig(&sc); err != nil {
		return nil, err
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// RegenerateCodes replaces both registration codes.
func (m *SchoolModel) RegenerateCodes(now time.Time, rnd RandSource) {
	m.SchoolTeacherRegistrationCode = GenerateRegistrationCode(m.SchoolName, CodeKindTeacher, rnd)
	m.SchoolStudentRegistrationCode = GenerateRegistrationCode(m.SchoolName, CodeKindStudent, rnd)
	m.SchoolCodesGeneratedAt = now.UTC()
}

/* =========================
   Validation
========================= */

// ValidationError is a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string     { return e.Message }
func (e *ValidationError) FieldName() string { return e.Field }

func (e *ConfigTypeError) FieldName() string { return e.Block }

// Validate checks slug, contact email and the enum columns. It does not
// normalise anything.
func (m *SchoolModel) Validate() error {
	if strings.TrimSpace(m.SchoolName) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if !helper.IsValidSlug(m.SchoolSlug) {
		return &ValidationError{Field: "slug", Message: "Slug must contain only lowercase letters, numbers, and hyphens"}
	}
	if m.SchoolContactEmail != nil && *m.SchoolContactEmail != "" && !contactEmailRe.MatchString(*m.SchoolContactEmail) {
		return &ValidationError{Field: "contact_email", Message: "Invalid email format"}
	}
	if !m.SchoolType.Valid() {
		return &ValidationError{Field: "school_type", Message: "School type must be one of: " + joinEnum(SchoolTypes)}
	}
	if !m.SchoolSubscriptionStatus.Valid() {
		return &ValidationError{Field: "subscription_status", Message: "Subscription status must be one of: " + joinEnum(SubscriptionStatuses)}
	}
	if !m.SchoolSetupStage.Valid() {
		return &ValidationError{Field: "setup_stage", Message: "Setup stage must be one of: " + joinEnum(SetupStages)}
	}
	return nil
}

/* =========================
   Config engine
========================= */

// AcademicConfig decodes the stored block, falling back to the type default.
func (m *SchoolModel) AcademicConfig() (AcademicConfig, error) {
	cfg, ok, err := ParseAcademicConfig(m.SchoolAcademicConfig)
	if err != nil {
		return AcademicConfig{}, err
	}
	if !ok {
		return DefaultAcademicConfig(m.SchoolType, dbtime.NowInSchool()), nil
	}
	return cfg, nil
}

func (m *SchoolModel) SetAcademicConfig(cfg AcademicConfig) error {
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	m.SchoolAcademicConfig = datatypes.JSON(b)
	return nil
}

// SubscriptionConfig reports ok=false when no config has been stored.
func (m *SchoolModel) SubscriptionConfig() (SubscriptionConfig, bool, error) {
	return ParseSubscriptionConfig(m.SchoolSubscriptionConfig)
}

// SetSubscriptionConfig stores cfg; nil stores JSON null.
func (m *SchoolModel) SetSubscriptionConfig(cfg *SubscriptionConfig) error {
	if cfg == nil {
		m.SchoolSubscriptionConfig = datatypes.JSON("null")
		return nil
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	m.SchoolSubscriptionConfig = datatypes.JSON(b)
	return nil
}

// UpdateAcademicConfig merges updates into the current (or default) config and
// re-evaluates setup completion.
func (m *SchoolModel) UpdateAcademicConfig(updates map[string]any) error {
	cur, err := m.AcademicConfig()
	if err != nil {
		return err
	}
	merged, err := cur.Merge(updates)
	if err != nil {
		return err
	}
	if err := m.SetAcademicConfig(merged); err != nil {
		return err
	}
	return m.evaluateSetupCompletion()
}

// UpdateSubscriptionConfig merges updates into the current (or default) config.
// The setup stage is left alone; completion is only checked on academic updates.
func (m *SchoolModel) UpdateSubscriptionConfig(updates map[string]any) error {
	cur, ok, err := m.SubscriptionConfig()
	if err != nil {
		return err
	}
	if !ok {
		cur = DefaultSubscriptionConfig()
	}
	merged, err := cur.Merge(updates)
	if err != nil {
		return err
	}
	return m.SetSubscriptionConfig(&merged)
}

// AddOperationalDetail merges data into operational_details[category].
func (m *SchoolModel) AddOperationalDetail(category string, data map[string]any) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return &ValidationError{Field: "operational_details", Message: "category is required"}
	}
	if m.SchoolOperationalDetails == nil {
		m.SchoolOperationalDetails = datatypes.JSONMap{}
	}
	bucket, ok := m.SchoolOperationalDetails[category].(map[string]any)
	if !ok {
		bucket = map[string]any{}
	}
	for k, v := range data {
		bucket[k] = v
	}
	m.SchoolOperationalDetails[category] = bucket
	return nil
}

// UpdateSetupStage moves to stage. Only "complete" forces setup_completed.
func (m *SchoolModel) UpdateSetupStage(stage SetupStage) error {
	if !stage.Valid() {
		return &ValidationError{Field: "setup_stage", Message: "Setup stage must be one of: " + joinEnum(SetupStages)}
	}
	m.SchoolSetupStage = stage
	if stage == StageComplete {
		m.SchoolSetupCompleted = true
		return m.syncSetupFlag()
	}
	return nil
}

// setupRequirementsMet: name, type, grading system, CA structure and plan.
func (m *SchoolModel) setupRequirementsMet() (bool, error) {
	if strings.TrimSpace(m.SchoolName) == "" || !m.SchoolType.Valid() {
		return false, nil
	}
	ac, ok, err := ParseAcademicConfig(m.SchoolAcademicConfig)
	if err != nil || !ok {
		return false, err
	}
	sc, ok, err := m.SubscriptionConfig()
	if err != nil || !ok {
		return false, err
	}
	return ac.HasGradingSystem() && ac.HasCAStructure() && sc.HasPlan(), nil
}

func (m *SchoolModel) evaluateSetupCompletion() error {
	met, err := m.setupRequirementsMet()
	if err != nil {
		return err
	}
	if met {
		m.SchoolSetupCompleted = true
		m.SchoolSetupStage = StageComplete
	} else {
		m.SchoolSetupCompleted = m.SchoolSetupStage == StageComplete
	}
	return m.syncSetupFlag()
}

// syncSetupFlag mirrors the column into academic_config.setup_completed.
func (m *SchoolModel) syncSetupFlag() error {
	ac, ok, err := ParseAcademicConfig(m.SchoolAcademicConfig)
	if err != nil || !ok {
		return err
	}
	if ac.SetupCompleted == m.SchoolSetupCompleted {
		return nil
	}
	ac.SetupCompleted = m.SchoolSetupCompleted
	return m.SetAcademicConfig(ac)
}

/* =========================
   Subscription / trial tracker
========================= */

func (m *SchoolModel) IsTrialExpired(now time.Time) bool {
	if m.SchoolSubscriptionStatus != SubscriptionTrial || m.SchoolTrialEndsAt == nil {
		return false
	}
	return now.After(*m.SchoolTrialEndsAt)
}

// DaysRemainingInTrial counts whole days left, never negative.
func (m *SchoolModel) DaysRemainingInTrial(now time.Time) int {
	if m.SchoolSubscriptionStatus != SubscriptionTrial || m.SchoolTrialEndsAt == nil {
		return 0
	}
	left := m.SchoolTrialEndsAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(left / (24 * time.Hour))
}

// CanAddStudent is true when no subscription config is stored (or it is unreadable).
func (m *SchoolModel) CanAddStudent() bool {
	sc, ok, err := m.SubscriptionConfig()
	if err != nil || !ok {
		return true
	}
	return m.SchoolStudentCount < sc.MaxStudents()
}

func (m *SchoolModel) CanAddTeacher() bool {
	sc, ok, err := m.SubscriptionConfig()
	if err != nil || !ok {
		return true
	}
	return m.SchoolTeacherCount < sc.MaxTeachers()
}

// CanAdd dispatches on member kind.
func (m *SchoolModel) CanAdd(kind CodeKind) bool {
	if kind == CodeKindStudent {
		return m.CanAddStudent()
	}
	return m.CanAddTeacher()
}

func (m *SchoolModel) SetupProgress() int { return m.SchoolSetupStage.Progress() }

/* =========================
   Contact channels
========================= */

type ContactChannel struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// ContactChannels lists the filled-in channels in display order.
func (m *SchoolModel) ContactChannels() []ContactChannel {
	out := make([]ContactChannel, 0, 4)
	add := func(typ, label string, v *string) {
		if v != nil && strings.TrimSpace(*v) != "" {
			out = append(out, ContactChannel{Type: typ, Value: *v, Label: label})
		}
	}
	add("phone", "Phone", m.SchoolContactPhone)
	add("whatsapp", "WhatsApp", m.SchoolContactWhatsapp)
	add("email", "Email", m.SchoolContactEmail)
	add("website", "Website", m.SchoolWebsite)
	return out
}

func strPtr(s string) *string { return &s }
