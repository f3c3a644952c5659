package config

import "fmt"

const (
	errInvalidEnvValueFmt = "warning: ignoring invalid value %q for %s, using default"
)

type messageBuilders struct {
	invalidEnvValue func(key, value string) string
}

func newMessageBuilders() messageBuilders {
	return messageBuilders{
		invalidEnvValue: func(key, value string) string {
			return fmt.Sprintf(errInvalidEnvValueFmt, value, key)
		},
	}
}

var messages = newMessageBuilders()
