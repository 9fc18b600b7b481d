package config

import "fmt"

type ConfigFileInvalidError struct {
	Path string
	Err  error
}

func (e *ConfigFileInvalidError) Error() string {
	return fmt.Sprintf("configuration file %s is invalid: %s", e.Path, e.Err)
}

func (e *ConfigFileInvalidError) Unwrap() error {
	return e.Err
}

type ConfigValueError struct {
	Key    string
	Value  any
	Reason string
}

func (e *ConfigValueError) Error() string {
	return fmt.Sprintf("configuration value %s=%v is invalid: %s", e.Key, e.Value, e.Reason)
}

func (e *ConfigValueError) Is(target error) bool {
	t, ok := target.(*ConfigValueError)
	if !ok {
		return false
	}
	return t.Key == e.Key
}
