package engine

import (
	apperrors "golang-invoice-evidence-service/pkg/errors"
)

func errInvalidWorkers(workers int) error {
	return apperrors.ConfigurationError(
		apperrors.CodeInvalidConfig,
		"workers",
		workers,
		nil,
	).WithSuggestion("use a worker count of at least 1")
}

func errInvalidPreview(limit int) error {
	return apperrors.ConfigurationError(
		apperrors.CodeInvalidConfig,
		"preview_limit",
		limit,
		nil,
	).WithSuggestion("use a non-negative preview limit")
}
