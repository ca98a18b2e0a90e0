// Package bind decodes and validates JSON request bodies for the control api
package bind

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

type validation struct {
	v     *validator.Validate
	trans ut.Translator
}

// shorter messages than the stock english set; {0} is the json field name
var shortMessages = map[string]string{
	"min": "{0} must be at least {1}",
	"max": "{0} must be at most {1}",
	"ymd": "{0} must be a date like 2006-01-02",
}

var get = sync.OnceValue(func() validation {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// ymd is a calendar day, the format spend days travel in
	_ = v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.DateOnly, fl.Field().String())
		return err == nil
	})

	for tag, text := range shortMessages {
		_ = v.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(tag, fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return validation{v: v, trans: trans}
})

// JSONOptions controls parsing
type JSONOptions struct {
	MaxBytes        int64 // 0 means unlimited
	DisallowUnknown bool
	AllowEmptyBody  bool // an empty body binds the zero value, which still validates
}

var defaultJSONOptions = JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: true}

// ParseJSON decodes one JSON value into T and validates it
// decode problems are ErrorCodeJSON, rule violations ErrorCodeValidation with the field set
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var dst T
	o := defaultJSONOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close request body")
		}
	}()

	var body io.Reader = r.Body
	if o.MaxBytes > 0 {
		body = io.LimitReader(body, o.MaxBytes)
	}
	br := bufio.NewReader(body)
	if _, err := br.Peek(1); err != nil && !o.AllowEmptyBody {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
			return dst, nil
		}
		return dst, perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(br)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}
	switch err := dec.Decode(&dst); {
	case errors.Is(err, io.EOF) && o.AllowEmptyBody:
	case err != nil:
		return dst, perr.JSONErrf("invalid JSON: %v", err)
	case dec.More():
		return dst, perr.JSONErrf("unexpected trailing data")
	}

	if err := get().v.Struct(dst); err != nil {
		var inv *validator.InvalidValidationError
		if errors.As(err, &inv) {
			logger.Get().Error().Err(inv).Msg("validator internal error")
			return dst, perr.JSONErrf("validation error")
		}
		field, msg := ValidationFieldAndMessage(err)
		return dst, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
	}
	return dst, nil
}

// ValidationFieldAndMessage returns the first failing field and its translated message
func ValidationFieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Translate(get().trans)
	}
	return "", err.Error()
}
