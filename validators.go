package route

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var errNotAccepted = errors.New("value not accepted")

// OfString accepts any value, including the empty string.
var OfString = NewValidator("string", `(?s)^.*$`, func(raw string) (string, error) {
	return raw, nil
})

// OfNonEmptyString accepts any value with at least one character.
var OfNonEmptyString = NewValidator("non empty string", `(?s)^.+$`, func(raw string) (string, error) {
	if raw == "" {
		return "", errNotAccepted
	}
	return raw, nil
})

// OfNonEmptySingleLineString accepts a non-empty value without line breaks.
var OfNonEmptySingleLineString = NewValidator("non empty single-line string", `^[^\r\n]+$`, func(raw string) (string, error) {
	return raw, nil
})

// OfNonNegativeInt accepts unsigned decimal integers.
var OfNonNegativeInt = NewValidator("non negative integer", `^\d+$`, func(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNotAccepted
	}
	return n, nil
})

// OfInt accepts signed decimal integers.
var OfInt = NewValidator("integer", `^-?\d+$`, strconv.Atoi)

// OfPositiveInt accepts integers greater than zero.
var OfPositiveInt = NewValidator("positive integer", `^[1-9]\d*$`, func(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errNotAccepted
	}
	return n, nil
})

// OfIntRange accepts integers in [lo, hi].
func OfIntRange(lo, hi int) Validator[int] {
	return NewValidator(fmt.Sprintf("integer between %d and %d", lo, hi), `^-?\d+$`, func(raw string) (int, error) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, err
		}
		if n < lo || n > hi {
			return 0, fmt.Errorf("value must be between %d and %d", lo, hi)
		}
		return n, nil
	})
}

// OfFloat accepts decimal numbers with an optional fraction.
var OfFloat = NewValidator("double", `^-?\d+(\.\d+)?$`, func(raw string) (float64, error) {
	return strconv.ParseFloat(raw, 64)
})

// OfFloatRange accepts decimal numbers in [lo, hi].
func OfFloatRange(lo, hi float64) Validator[float64] {
	return NewValidator(fmt.Sprintf("double between %g and %g", lo, hi), `^-?\d+(\.\d+)?$`, func(raw string) (float64, error) {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, err
		}
		if f < lo || f > hi {
			return 0, fmt.Errorf("value must be between %g and %g", lo, hi)
		}
		return f, nil
	})
}

// OfBool accepts true/false, yes/no and 1/0 in any case.
var OfBool = NewValidator("boolean (true/false, yes/no, 1/0)", `(?i)^(true|false|yes|no|1|0)$`, func(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, errNotAccepted
	}
})

// OfEmail accepts email addresses.
var OfEmail = NewValidator("email address",
	`^[a-zA-Z0-9][a-zA-Z0-9._%+-]*[a-zA-Z0-9]@[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9](\.[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9])+$`,
	func(raw string) (string, error) {
		return raw, nil
	})

// OfURL accepts absolute http, https and ftp URLs.
var OfURL = NewValidator("URL", `^(https?|ftp)://[^\s/$.?#].[^\s]*$`, url.ParseRequestURI)

// OfIPv4 accepts dotted-quad IPv4 addresses.
var OfIPv4 = NewValidator("IPv4 address", `^\d{1,3}(\.\d{1,3}){3}$`, func(raw string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return netip.Addr{}, err
	}
	if !addr.Is4() {
		return netip.Addr{}, errNotAccepted
	}
	return addr, nil
})

// OfDate accepts ISO-8601 calendar dates (YYYY-MM-DD).
var OfDate = NewValidator("date in ISO-8601 format (YYYY-MM-DD)", `^\d{4}-\d{2}-\d{2}$`, func(raw string) (time.Time, error) {
	return time.Parse(time.DateOnly, raw)
})

// OfDateTime accepts ISO-8601 local date-times (YYYY-MM-DDThh:mm:ss).
var OfDateTime = NewValidator("datetime in ISO-8601 format (YYYY-MM-DDThh:mm:ss)", `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`, func(raw string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05", raw)
})

// OfDateFormat accepts dates in the given Go time layout.
func OfDateFormat(layout string) Validator[time.Time] {
	return NewValidator("date in format: "+layout, `^.+$`, func(raw string) (time.Time, error) {
		return time.Parse(layout, raw)
	})
}

// OfUUID accepts canonical RFC 4122 UUIDs in any case.
var OfUUID = NewValidator("UUID", `(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, uuid.Parse)

// OfAlphanumeric accepts ASCII letters and digits.
var OfAlphanumeric = NewValidator("alphanumeric string", `^[a-zA-Z0-9]+$`, func(raw string) (string, error) {
	return raw, nil
})

var whitespace = regexp.MustCompile(`\s`)

// OfPhoneNumber accepts digits, spaces and a leading plus. Spaces are removed.
var OfPhoneNumber = NewValidator("phone number (digits, spaces, and +)", `^\+?[\d\s]+$`, func(raw string) (string, error) {
	return whitespace.ReplaceAllString(raw, ""), nil
})

// OfStringLength accepts strings whose length in characters is in [lo, hi].
func OfStringLength(lo, hi int) Validator[string] {
	desc := fmt.Sprintf("string with length between %d and %d characters", lo, hi)
	return NewValidator(desc, `(?s)^.*$`, func(raw string) (string, error) {
		n := utf8.RuneCountInString(raw)
		if n < lo || n > hi {
			return "", fmt.Errorf("string length must be between %d and %d characters", lo, hi)
		}
		return raw, nil
	})
}

// OfRegex accepts values matching pattern.
func OfRegex(pattern, description string) Validator[string] {
	return NewValidator(description, pattern, func(raw string) (string, error) {
		return raw, nil
	})
}

// OfJSON accepts a well-formed JSON document.
var OfJSON = NewValidator("valid JSON string", `(?s)^[\[{"].*[\]}"]$`, func(raw string) (json.RawMessage, error) {
	if !json.Valid([]byte(raw)) {
		return nil, errNotAccepted
	}
	return json.RawMessage(raw), nil
})

// OfStringSet accepts a comma-separated list and returns its distinct items.
var OfStringSet = NewValidator("string set", `(?s)^.*$`, func(raw string) ([]string, error) {
	return splitSet(raw, false), nil
})

// OfNonEmptyStringSet accepts a comma-separated list with at least one non-empty item.
var OfNonEmptyStringSet = NewValidator("non empty string set", `^(.+,?)*.+$`, func(raw string) ([]string, error) {
	items := splitSet(raw, true)
	if len(items) == 0 {
		return nil, errNotAccepted
	}
	return items, nil
})

func splitSet(raw string, dropEmpty bool) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if dropEmpty && p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// OfEnum accepts exactly one of values.
func OfEnum[E ~string](values ...E) Validator[E] {
	quoted := make([]string, len(values))
	names := make([]string, len(values))
	for i, v := range values {
		quoted[i] = regexp.QuoteMeta(string(v))
		names[i] = string(v)
	}
	return NewValidator(
		"A string of value: "+strings.Join(names, "|"),
		"^("+strings.Join(quoted, "|")+")$",
		func(raw string) (E, error) {
			return E(raw), nil
		},
	)
}
