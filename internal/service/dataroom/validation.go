package dataroom

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	models "dataroom/internal/domain/models/dataroom"
)

var noSlashes = regexp.MustCompile(`^[^/\\]+$`)

// nameRules apply to folder and file names after trimming
func nameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("name is required"),
		validation.RuneLength(1, config.MaxNodeNameLength),
		validation.Match(noSlashes).Error("name cannot contain slashes"),
		validation.NotIn(".", "..").Error("name cannot be . or .."),
	}
}

// checkName trims name and returns the raw rule violation, if any
func checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	return name, validation.Validate(name, nameRules()...)
}

// normalizeName trims and validates a node name
func normalizeName(name string) (string, error) {
	name, err := checkName(name)
	if err != nil {
		return "", validationError(err)
	}
	return name, nil
}

// normalizeParentID maps "", "root" and nil to nil (top level)
func normalizeParentID(id *string) *string {
	if id == nil || *id == "" || *id == models.RootID {
		return nil
	}
	return id
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// validateIDs checks a bulk id list and returns it without duplicates,
// preserving order
func validateIDs(ids []string) ([]string, error) {
	err := validation.Validate(ids,
		validation.Required.Error("node_ids is required"),
		validation.Length(1, config.MaxBulkDeleteIDs),
		validation.Each(validation.Required),
	)
	if err != nil {
		return nil, validationError(err)
	}

	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return unique, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
