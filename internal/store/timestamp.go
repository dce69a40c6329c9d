package store

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/xonecas/pnw-recruiter/internal/constants"
)

// ledgerTime scans DATETIME columns whether the driver hands back text or a parsed time.
type ledgerTime struct {
	time.Time
}

func (t *ledgerTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
}

func (t *ledgerTime) parse(s string) error {
	for _, layout := range []string{constants.LedgerTimeFormat, time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: unrecognised format %q", s)
}

// Value stores timestamps as second-precision UTC text, the same form as datetime('now').
func (t ledgerTime) Value() (driver.Value, error) {
	return formatTime(t.Time), nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(constants.LedgerTimeFormat)
}
