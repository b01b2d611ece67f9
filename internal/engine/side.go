package engine

import (
	"strings"

	"github.com/datmedevil17/magic-market/internal/models"
)

// NormalizeSide lowercases and validates a caller-supplied side string.
func NormalizeSide(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case models.SideYes:
		return models.SideYes, nil
	case models.SideNo:
		return models.SideNo, nil
	default:
		return "", ErrInvalidSide
	}
}
