package handlers

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/emilythestrangee/social-graph/backend/pkg/errors"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,35}$`)

// RegisterValidators installs the custom binding rules on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, key := range []string{"uri", "form", "json"} {
			name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	return v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(err, errors.ErrCodeValidation, "Invalid request")
	}

	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "min":
		msg = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "email":
		msg = fmt.Sprintf("%s must be a valid email", fe.Field())
	case "username":
		msg = fmt.Sprintf("%s must be 3-35 characters of a-z, 0-9, _ or -", fe.Field())
	default:
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return errors.Wrap(err, errors.ErrCodeValidation, msg)
}

type usernameURI struct {
	Username string `uri:"username" binding:"required,username"`
}

type followerDeleteURI struct {
	FollowerID uint   `uri:"followerId" binding:"required,min=1"`
	Username   string `uri:"username" binding:"required,username"`
}

type mutualURI struct {
	Username1 string `uri:"username1" binding:"required,username"`
	Username2 string `uri:"username2" binding:"required,username"`
}

type requestURI struct {
	RequestID uint `uri:"requestId" binding:"required,min=1"`
}

type pageQuery struct {
	Limit *int `form:"limit" binding:"omitempty,min=1,max=100"`
	Skip  *int `form:"skip" binding:"omitempty,min=0"`
}

func (q pageQuery) resolve(defaultLimit int) (limit, skip int) {
	limit = defaultLimit
	if q.Limit != nil {
		limit = *q.Limit
	}
	if q.Skip != nil {
		skip = *q.Skip
	}
	return limit, skip
}
