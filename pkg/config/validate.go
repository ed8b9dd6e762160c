// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"gitlab.com/tozd/go/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("relpath", validateRelPath)
	_ = validate.RegisterValidation("refname", validateRefName)
}

// the subtree prefix must stay inside the work tree
func validateRelPath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if p == "" || path.IsAbs(p) {
		return false
	}
	clean := path.Clean(p)
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}

func validateRefName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && !strings.ContainsAny(s, " \t\n~^:?*[\\") && !strings.HasPrefix(s, "-")
}

// 🔍 Validate checks a resolved config
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, describe(fe))
			}
			return errors.Errorf("%s", strings.Join(msgs, "; "))
		}
		return errors.Errorf("validating: %w", err)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "refname":
		return field + " is not a valid branch or remote name"
	case "relpath":
		return field + " must be a relative path inside the repository"
	case "nefield":
		return field + " must differ from " + fe.Param()
	case "gt":
		return field + " must be positive"
	default:
		return field + " failed " + fe.Tag()
	}
}
