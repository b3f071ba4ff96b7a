package dbtime

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

const defaultSchoolTimezone = "Africa/Lagos"

var (
	nowFunc = time.Now

	locOnce sync.Once
	loc     *time.Location
)

// SchoolLocation resolves SCHOOL_TIMEZONE once, falling back to
// Africa/Lagos and finally UTC.
func SchoolLocation() *time.Location {
	locOnce.Do(func() {
		name := strings.TrimSpace(os.Getenv("SCHOOL_TIMEZONE"))
		if name == "" {
			name = defaultSchoolTimezone
		}
		l, err := time.LoadLocation(name)
		if err != nil {
			log.Printf("[WARN] invalid SCHOOL_TIMEZONE %q: %v, using UTC", name, err)
			l = time.UTC
		}
		loc = l
	})
	return loc
}

// Now is the platform clock in UTC. Stored timestamps always use it.
func Now() time.Time {
	return nowFunc().UTC()
}

// NowInSchool is Now in the school timezone; academic sessions derive from it.
func NowInSchool() time.Time {
	return Now().In(SchoolLocation())
}

// ToSchoolTime converts a stored (UTC) time to the school timezone.
func ToSchoolTime(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(SchoolLocation())
}

func ToSchoolTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := ToSchoolTime(*t)
	return &v
}

// SetNowFunc swaps the clock and returns a func restoring the previous one.
func SetNowFunc(f func() time.Time) (restore func()) {
	prev := nowFunc
	nowFunc = f
	return func() { nowFunc = prev }
}
