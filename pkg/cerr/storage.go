package cerr

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kazz187/taskboard/pkg/storage"
)

func WrapStorageReadError(target string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NewError(NotFound, fmt.Sprintf("%s not found", target), err)
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to read %s: %w", target, err))
}

func WrapStorageWriteError(target string, err error) error {
	return NewError(Internal, "server error", fmt.Errorf("failed to write %s: %w", target, err))
}

func WrapStorageDeleteError(target string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return NewError(NotFound, fmt.Sprintf("%s not found", target), err)
	}
	return NewError(Internal, "server error", fmt.Errorf("failed to delete %s: %w", target, err))
}

// WrapDBError maps gorm sentinel errors. The database must be opened with
// TranslateError so constraint violations surface as gorm.ErrDuplicatedKey.
func WrapDBError(target string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewError(NotFound, fmt.Sprintf("%s not found", target), err)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return NewError(AlreadyExists, fmt.Sprintf("%s already exists", target), err)
	default:
		return NewError(Internal, "server error", fmt.Errorf("database error on %s: %w", target, err))
	}
}

// isUniqueViolation covers primary key collisions, which older sqlite
// dialectors do not translate.
func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
