// internal/utils/number.go
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FlexibleFloat accepts a JSON number or a numeric string, since wallet front-ends send both.
type FlexibleFloat float64

func (f *FlexibleFloat) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = 0
		return nil
	}

	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("invalid number %s: %w", raw, err)
		}
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*f = 0
			return nil
		}
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", raw, err)
	}

	*f = FlexibleFloat(value)
	return nil
}

func (f FlexibleFloat) Float64() float64 {
	return float64(f)
}
