package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError is one failed field check.
type FieldError struct {
	Field string // dotted koanf path, e.g. "server.redis.addr"
	Err   string
}

// FieldErrors collects every failed field check of a Verify call.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, len(fe))
	for i, f := range fe {
		msgs[i] = f.Field + ": " + f.Err
	}
	return strings.Join(msgs, "; ")
}

type checker struct {
	v     *validator.Validate
	trans ut.Translator
}

var (
	checkerOnce sync.Once
	checkerInst *checker
	checkerErr  error
)

func getChecker() (*checker, error) {
	checkerOnce.Do(func() {
		instance := validator.New()

		enLang := en.New()
		uni := ut.New(enLang, enLang)
		trans, found := uni.GetTranslator("en")
		if !found {
			checkerErr = errors.New("cannot find en translation")
			return
		}

		// Report fields by their koanf key so errors match the config file.
		instance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		if err := en_translations.RegisterDefaultTranslations(instance, trans); err != nil {
			checkerErr = err
			return
		}

		if err := instance.RegisterValidation("octal_mode", func(fl validator.FieldLevel) bool {
			_, err := ParseFileMode(fl.Field().String())
			return err == nil
		}); err != nil {
			checkerErr = err
			return
		}
		if err := instance.RegisterTranslation("octal_mode", trans,
			func(ut ut.Translator) error {
				return ut.Add("octal_mode", "{0} must be an octal file mode such as 0600", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T("octal_mode", fe.Field())
				return t
			},
		); err != nil {
			checkerErr = err
			return
		}

		checkerInst = &checker{v: instance, trans: trans}
	})
	return checkerInst, checkerErr
}

// Verify validates the configuration. Field failures are returned as
// FieldErrors.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	c, err := getChecker()
	if err != nil {
		return fmt.Errorf("init validator: %w", err)
	}

	var fields FieldErrors
	if err := c.v.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, ve := range verrs {
			fields = append(fields, FieldError{
				Field: fieldPath(ve.Namespace()),
				Err:   ve.Translate(c.trans),
			})
		}
	}

	if cfg.Server.HTTP.Addr != "" && cfg.Server.HTTP.Addr == cfg.Server.Redis.Addr {
		fields = append(fields, FieldError{
			Field: "server.http.addr",
			Err:   "must differ from server.redis.addr",
		})
	}

	if len(fields) > 0 {
		return fields
	}
	return nil
}

// ParseFileMode parses an octal permission string such as "0660".
func ParseFileMode(s string) (fs.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	if v > 0777 {
		return 0, fmt.Errorf("file mode %q has bits outside 0777", s)
	}
	return fs.FileMode(v), nil
}

// IsFieldErrors reports whether err holds field validation failures.
func IsFieldErrors(err error) bool {
	var fe FieldErrors
	return errors.As(err, &fe)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
