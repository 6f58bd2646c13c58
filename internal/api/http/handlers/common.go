package handlers

import (
	"errors"
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sales-service/internal/auth"
	"github.com/spec-kit/sales-service/internal/domain"
	"github.com/spec-kit/sales-service/internal/service"
	apperrors "github.com/spec-kit/sales-service/pkg/util/errorutil"
)

const (
	msgInvalidPayload = "잘못된 요청입니다."
	msgInvalidFields  = "입력값이 올바르지 않습니다."
)

var validate = newValidator()

// newValidator reports json field names so error details match the payload.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func currentUser(c *fiber.Ctx) (*domain.User, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("인증이 필요합니다.")
	}
	return user, nil
}

// parseBody decodes the request body into out and checks its validate tags.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError(msgInvalidPayload, nil)
	}
	return validateStruct(out)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError(msgInvalidPayload, nil)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return apperrors.NewValidationError(msgInvalidFields, details)
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil
	}
	return &v
}

func optionalForm(c *fiber.Ctx, key string) *string {
	form, err := c.MultipartForm()
	if err != nil {
		v := c.FormValue(key)
		if v == "" {
			return nil
		}
		return &v
	}
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := values[0]
	return &v
}

// firstQueryKey returns the first of keys present in the query string, or the
// first key when none is.
func firstQueryKey(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		if c.Query(k) != "" {
			return k
		}
	}
	return keys[0]
}

func queryInt(c *fiber.Ctx, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseDate accepts RFC 3339 or a plain date. With endOfDay a plain date
// covers the whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperrors.NewValidationError("날짜 형식이 올바르지 않습니다.", map[string]any{"value": raw})
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// formUpload opens the named multipart file. It returns nil when the field is absent.
// The caller closes the returned body.
func formUpload(c *fiber.Ctx, field string) (*service.Upload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, nil
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, func() {}, nil
	}
	return openUpload(headers[0])
}

func openUpload(fh *multipart.FileHeader) (*service.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, apperrors.NewValidationError("파일을 읽을 수 없습니다.", nil)
	}
	up := &service.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
	return up, func() { _ = f.Close() }, nil
}

func created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func respond(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}
