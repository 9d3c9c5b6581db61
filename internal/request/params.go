// internal/request/params.go
package request

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// ParseID parses a positive int64 id from a raw value.
func ParseID(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

// PathID extracts a positive int64 path parameter registered with the mux.
func PathID(r *http.Request, name string) (int64, error) {
	id, ok := ParseID(r.PathValue(name))
	if !ok {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// AccountIDFromRequest extracts the {accountId} path parameter.
func AccountIDFromRequest(r *http.Request) (int64, error) {
	return PathID(r, "accountId")
}

// SeasonIDFromRequest extracts the {seasonId} path parameter.
func SeasonIDFromRequest(r *http.Request) (int64, error) {
	return PathID(r, "seasonId")
}
