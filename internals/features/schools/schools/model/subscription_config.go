package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"

	"github.com/shopspring/decimal"
)

/* =========================
   Subscription config (schools.school_subscription_config)
========================= */

const (
	PlanTrial = "trial"

	DefaultMaxStudents = 50
	DefaultMaxTeachers = 10
	DefaultTrialDays   = 30
)

var DefaultAllowedFeatures = []string{"basic_grading", "attendance", "parent_portal"}

// Money is a decimal that is written as a bare JSON number (0, 15000.5).
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money { return Money{Decimal: d} }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeOf(Money{}), Field: "price"}
	}
	m.Decimal = d
	return nil
}

type PlanFeatures struct {
	MaxStudents     *int     `json:"max_students,omitempty"`
	MaxTeachers     *int     `json:"max_teachers,omitempty"`
	AllowedFeatures []string `json:"allowed_features,omitempty"`

	Extra map[string]any `json:"-"`
}

type planFeaturesFields PlanFeatures

var planFeaturesType = reflect.TypeOf(planFeaturesFields{})

func (f PlanFeatures) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(planFeaturesFields(f), f.Extra)
}

func (f *PlanFeatures) UnmarshalJSON(data []byte) error {
	var v planFeaturesFields
	extra, err := unmarshalWithExtra(data, &v, planFeaturesType)
	if err != nil {
		return err
	}
	v.Extra = extra
	*f = PlanFeatures(v)
	return nil
}

type SubscriptionConfig struct {
	Plan          string        `json:"plan,omitempty"`
	Price         Money         `json:"price"`
	Currency      string        `json:"currency,omitempty"`
	TrialDays     int           `json:"trial_days,omitempty"`
	Features      *PlanFeatures `json:"features,omitempty"`
	LimitsReached bool          `json:"limits_reached"`

	Extra map[string]any `json:"-"`
}

type subscriptionConfigFields SubscriptionConfig

var subscriptionConfigType = reflect.TypeOf(subscriptionConfigFields{})

func (c SubscriptionConfig) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(subscriptionConfigFields(c), c.Extra)
}

func (c *SubscriptionConfig) UnmarshalJSON(data []byte) error {
	var f subscriptionConfigFields
	extra, err := unmarshalWithExtra(data, &f, subscriptionConfigType)
	if err != nil {
		return err
	}
	f.Extra = extra
	*c = SubscriptionConfig(f)
	return nil
}

func (c SubscriptionConfig) HasPlan() bool { return c.Plan != "" }

// MaxStudents falls back to 50 when the plan does not say.
func (c SubscriptionConfig) MaxStudents() int {
	if c.Features != nil && c.Features.MaxStudents != nil {
		return *c.Features.MaxStudents
	}
	return DefaultMaxStudents
}

// MaxTeachers falls back to 10 when the plan does not say.
func (c SubscriptionConfig) MaxTeachers() int {
	if c.Features != nil && c.Features.MaxTeachers != nil {
		return *c.Features.MaxTeachers
	}
	return DefaultMaxTeachers
}

func DefaultSubscriptionConfig() SubscriptionConfig {
	maxStudents, maxTeachers := DefaultMaxStudents, DefaultMaxTeachers
	return SubscriptionConfig{
		Plan:      PlanTrial,
		Price:     NewMoney(decimal.Zero),
		Currency:  "NGN",
		TrialDays: DefaultTrialDays,
		Features: &PlanFeatures{
			MaxStudents:     &maxStudents,
			MaxTeachers:     &maxTeachers,
			AllowedFeatures: append([]string(nil), DefaultAllowedFeatures...),
		},
	}
}

// Merge is a shallow merge: an updated "features" replaces the whole object.
func (c SubscriptionConfig) Merge(updates map[string]any) (SubscriptionConfig, error) {
	var out SubscriptionConfig
	if err := shallowMerge(c, updates, &out); err != nil {
		return c, configTypeError("subscription_config", err)
	}
	return out, nil
}

// ParseSubscriptionConfig decodes a stored column value; JSON null means absent.
func ParseSubscriptionConfig(raw []byte) (SubscriptionConfig, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return SubscriptionConfig{}, false, nil
	}
	var cfg SubscriptionConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return SubscriptionConfig{}, false, errors.Join(errors.New("decode subscription_config"), err)
	}
	return cfg, true, nil
}
