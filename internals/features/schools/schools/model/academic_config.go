package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
)

/* =========================
   Academic config (schools.school_academic_config)
========================= */

const (
	GradingPrimaryScale = "primary_scale"
	GradingJuniorScale  = "junior_scale"
	GradingWAEC         = "waec"

	CABasicPrimary = "basic_primary"
	CAStandard30   = "standard_30"
)

type GradeBand struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Remark string  `json:"remark"`
}

// CAStructure is either a named preset ("standard_30") or a custom breakdown
// object such as {"test1": 10, "test2": 10, "exam": 70}.
type CAStructure struct {
	Preset string
	Custom map[string]any
}

func PresetCA(name string) *CAStructure { return &CAStructure{Preset: name} }

func (c CAStructure) IsZero() bool { return c.Preset == "" && len(c.Custom) == 0 }

func (c CAStructure) MarshalJSON() ([]byte, error) {
	if c.Custom != nil {
		return json.Marshal(c.Custom)
	}
	return json.Marshal(c.Preset)
}

func (c *CAStructure) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*c = CAStructure{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = CAStructure{Preset: s}
		return nil
	case data[0] == '{':
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*c = CAStructure{Custom: m}
		return nil
	}
	return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(CAStructure{}), Field: "ca_structure"}
}

type AcademicConfig struct {
	Session                string               `json:"session,omitempty"`
	CurrentTerm            int                  `json:"current_term,omitempty"`
	SetupCompleted         bool                 `json:"setup_completed"`
	GradingSystem          string               `json:"grading_system,omitempty"`
	CAStructure            *CAStructure         `json:"ca_structure,omitempty"`
	EnableOverallGrades    *bool                `json:"enable_overall_grades,omitempty"`
	OverallGradeThresholds map[string]GradeBand `json:"overall_grade_thresholds,omitempty"`

	// Unknown keys, preserved across merges.
	Extra map[string]any `json:"-"`
}

type academicConfigFields AcademicConfig

var academicConfigType = reflect.TypeOf(academicConfigFields{})

func (c AcademicConfig) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(academicConfigFields(c), c.Extra)
}

func (c *AcademicConfig) UnmarshalJSON(data []byte) error {
	var f academicConfigFields
	extra, err := unmarshalWithExtra(data, &f, academicConfigType)
	if err != nil {
		return err
	}
	f.Extra = extra
	*c = AcademicConfig(f)
	return nil
}

func (c AcademicConfig) HasGradingSystem() bool { return c.GradingSystem != "" }

func (c AcademicConfig) HasCAStructure() bool { return c.CAStructure != nil && !c.CAStructure.IsZero() }

// DefaultGradeThresholds is the nine-band scale used by junior and senior schools.
func DefaultGradeThresholds() map[string]GradeBand {
	return map[string]GradeBand{
		"A+": {Min: 80, Max: 100, Remark: "Excellent"},
		"A":  {Min: 70, Max: 79, Remark: "Very Good"},
		"B+": {Min: 65, Max: 69, Remark: "Good Plus"},
		"B":  {Min: 60, Max: 64, Remark: "Good"},
		"C+": {Min: 55, Max: 59, Remark: "Credit Plus"},
		"C":  {Min: 50, Max: 54, Remark: "Credit"},
		"D":  {Min: 45, Max: 49, Remark: "Pass"},
		"E":  {Min: 40, Max: 44, Remark: "Fair"},
		"F":  {Min: 0, Max: 39, Remark: "Fail"},
	}
}

// AcademicSession formats the session label for the year of now, e.g. "2025/2026".
func AcademicSession(now time.Time) string {
	return fmt.Sprintf("%d/%d", now.Year(), now.Year()+1)
}

// DefaultAcademicConfig returns the starting config for a school type.
// Unknown types get only the base keys.
func DefaultAcademicConfig(t SchoolType, now time.Time) AcademicConfig {
	cfg := AcademicConfig{
		Session:     AcademicSession(now),
		CurrentTerm: 1,
	}
	overall := func(v bool) *bool { return &v }

	switch t {
	case SchoolTypePrimary:
		cfg.GradingSystem = GradingPrimaryScale
		cfg.CAStructure = PresetCA(CABasicPrimary)
		cfg.EnableOverallGrades = overall(false)
	case SchoolTypeJunior:
		cfg.GradingSystem = GradingJuniorScale
		cfg.CAStructure = PresetCA(CAStandard30)
		cfg.EnableOverallGrades = overall(true)
		cfg.OverallGradeThresholds = DefaultGradeThresholds()
	case SchoolTypeSenior, SchoolTypeCombined:
		cfg.GradingSystem = GradingWAEC
		cfg.CAStructure = PresetCA(CAStandard30)
		cfg.EnableOverallGrades = overall(true)
		cfg.OverallGradeThresholds = DefaultGradeThresholds()
	}
	return cfg
}

// Merge shallow-merges updates over c. Keys missing from updates keep their
// value; every given key is stored as sent, including zero values and null.
func (c AcademicConfig) Merge(updates map[string]any) (AcademicConfig, error) {
	var out AcademicConfig
	if err := shallowMerge(c, updates, &out); err != nil {
		return c, configTypeError("academic_config", err)
	}
	return out, nil
}

// ParseAcademicConfig decodes a stored column value. Empty input is not an error.
func ParseAcademicConfig(raw []byte) (AcademicConfig, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return AcademicConfig{}, false, nil
	}
	var cfg AcademicConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AcademicConfig{}, false, errors.Join(errors.New("decode academic_config"), err)
	}
	return cfg, true, nil
}
