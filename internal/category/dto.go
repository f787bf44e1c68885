package category

import (
	errors "github.com/frahmantamala/budget-ledger/internal"
	"github.com/frahmantamala/budget-ledger/internal/core/common/validation"
)

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

type CategoryDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (dto CategoryDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).
		Required(errors.ErrCodeInvalidName).
		MaxLength(100, errors.ErrCodeInvalidName)
	v.Field("description", dto.Description).
		MaxLength(500, errors.ErrCodeInvalidDescription)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
