package envconf

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var errNotStructPtr = errors.New("must be a pointer to a struct")

// ParseError occurs when a struct field cannot be set from its variable.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	segments := []string{e.Field}
	if e.Value != "" {
		segments = append(segments, e.Value)
	}
	segments = append(segments, e.Err.Error())
	return strings.Join(segments, ": ")
}

// EnvGetter reads a variable from some environment.
type EnvGetter interface {
	Get(key string) string
}

type osEnvGetter struct{}

func (osEnvGetter) Get(key string) string {
	return os.Getenv(key)
}

// Parse populates the struct's fields from environment variables, according to
// the fields' `env:"name"` or `env:"name,required"` tags. Variables that are
// unset or empty leave the field untouched, so values loaded beforehand (e.g.
// from a config file) survive unless overridden.
func Parse(conf interface{}) error {
	return ParseWithEnvGetter(conf, osEnvGetter{})
}

// ParseWithEnvGetter is Parse with an injected environment.
func ParseWithEnvGetter(conf interface{}, envGetter EnvGetter) error {
	c := reflect.ValueOf(conf)
	if c.Kind() != reflect.Ptr {
		return errNotStructPtr
	}
	c = c.Elem()
	if c.Kind() != reflect.Struct {
		return errNotStructPtr
	}

	var errs []string
	t := c.Type()
	for i := 0; i < c.NumField(); i++ {
		tag, ok := t.Field(i).Tag.Lookup("env")
		if !ok {
			continue
		}
		key, constraint := parseTag(tag)
		value := envGetter.Get(key)
		if err := setField(c.Field(i), value, constraint); err != nil {
			parseErr := ParseError{Field: t.Field(i).Name, Value: value, Err: err}
			errs = append(errs, parseErr.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "\n"))
	}
	return nil
}

// LoadFile populates conf from a TOML config file. Callers run Parse afterward
// so environment variables override file values.
func LoadFile(path string, conf interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, conf); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func parseTag(tag string) (key string, constraint string) {
	if i := strings.Index(tag, ","); i >= 0 {
		return tag[:i], tag[i+1:]
	}
	return tag, ""
}

func setField(field reflect.Value, value, constraint string) error {
	switch constraint {
	case "":
	case "required":
		if value == "" {
			return errors.New("required variable is not present")
		}
	default:
		return fmt.Errorf("invalid constraint: %s", constraint)
	}

	if value == "" {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.New("can't convert to bool")
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.New("can't convert to int")
		}
		field.SetInt(n)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("type is not supported: %s", field.Type())
		}
		field.Set(reflect.ValueOf(strings.Split(value, "|")))
	default:
		return fmt.Errorf("type is not supported: %s", field.Kind())
	}
	return nil
}
