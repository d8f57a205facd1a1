package results

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// NullText is how a NULL cell is displayed.
const NullText = "NULL"

// FormatValue converts a driver value to its display text. It never fails.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return NullText
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	case driver.Valuer:
		inner, err := t.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		if _, again := inner.(driver.Valuer); again {
			return fmt.Sprint(inner)
		}
		return FormatValue(inner)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
