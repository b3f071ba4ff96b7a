package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetNowFunc(t *testing.T) {
	fixed := time.Date(2025, 9, 1, 23, 30, 0, 0, time.UTC)
	restore := SetNowFunc(func() time.Time { return fixed })

	assert.Equal(t, fixed, Now())
	restore()
	assert.NotEqual(t, fixed, Now())
}

func TestToSchoolTime(t *testing.T) {
	var zero time.Time
	assert.True(t, ToSchoolTime(zero).IsZero())
	assert.Nil(t, ToSchoolTimePtr(nil))

	ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, ts.Equal(ToSchoolTime(ts)))
	assert.Equal(t, SchoolLocation(), ToSchoolTime(ts).Location())
}
