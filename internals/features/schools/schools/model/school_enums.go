package model

import (
	"strings"

	"github.com/samber/lo"
)

/* =========================
   SchoolType
========================= */

type SchoolType string

const (
	SchoolTypePrimary  SchoolType = "primary"
	SchoolTypeJunior   SchoolType = "junior"
	SchoolTypeSenior   SchoolType = "senior"
	SchoolTypeCombined SchoolType = "combined"
)

var SchoolTypes = []SchoolType{SchoolTypePrimary, SchoolTypeJunior, SchoolTypeSenior, SchoolTypeCombined}

var schoolTypeDescriptions = map[SchoolType]string{
	SchoolTypePrimary:  "Primary school only (Basic 1-6)",
	SchoolTypeJunior:   "Junior secondary school only (JSS 1-3)",
	SchoolTypeSenior:   "Senior secondary school only (SSS 1-3)",
	SchoolTypeCombined: "Combined primary and secondary",
}

func (t SchoolType) Valid() bool { return lo.Contains(SchoolTypes, t) }

func (t SchoolType) Description() string { return schoolTypeDescriptions[t] }

func ParseSchoolType(s string) (SchoolType, bool) {
	t := SchoolType(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

/* =========================
   SubscriptionStatus
========================= */

type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

var SubscriptionStatuses = []SubscriptionStatus{
	SubscriptionTrial, SubscriptionActive, SubscriptionPastDue, SubscriptionCancelled, SubscriptionExpired,
}

func (s SubscriptionStatus) Valid() bool { return lo.Contains(SubscriptionStatuses, s) }

func ParseSubscriptionStatus(s string) (SubscriptionStatus, bool) {
	v := SubscriptionStatus(strings.ToLower(strings.TrimSpace(s)))
	return v, v.Valid()
}

/* =========================
   SetupStage (ordered)
========================= */

type SetupStage string

const (
	StageBasic        SetupStage = "basic"
	StageContact      SetupStage = "contact"
	StageAcademic     SetupStage = "academic"
	StageGrading      SetupStage = "grading"
	StageSubscription SetupStage = "subscription"
	StageComplete     SetupStage = "complete"
)

var SetupStages = []SetupStage{StageBasic, StageContact, StageAcademic, StageGrading, StageSubscription, StageComplete}

var stageProgress = map[SetupStage]int{
	StageBasic:        20,
	StageContact:      40,
	StageAcademic:     60,
	StageGrading:      80,
	StageSubscription: 95,
	StageComplete:     100,
}

func (s SetupStage) Valid() bool { return lo.Contains(SetupStages, s) }

// Progress is the onboarding percentage for the stage; unknown stages are 0.
func (s SetupStage) Progress() int { return stageProgress[s] }

func ParseSetupStage(s string) (SetupStage, bool) {
	v := SetupStage(strings.ToLower(strings.TrimSpace(s)))
	return v, v.Valid()
}

func joinEnum[T ~string](vals []T) string {
	return strings.Join(lo.Map(vals, func(v T, _ int) string { return string(v) }), ", ")
}
