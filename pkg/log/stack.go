package log

import (
	"github.com/cockroachdb/errors"
)

// marshalStack serves as zerolog.ErrorStackMarshaler. It returns the first
// stack trace recorded by cockroachdb/errors along the error chain.
func marshalStack(err error) interface{} {
	if s := extractStacktrace(err); s != "" {
		return s
	}
	return nil
}

func extractStacktrace(err error) string {
	for _, layer := range errors.GetAllSafeDetails(err) {
		for _, detail := range layer.SafeDetails {
			if detail != "" {
				return detail
			}
		}
	}
	return ""
}
