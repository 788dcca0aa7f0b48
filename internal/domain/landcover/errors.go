package landcover

import (
	"errors"

	apperrors "github.com/caustin-usgs/lcmap-gaia/pkg/errors"
)

// CodeDataGeneration marks any failure while computing products.
const CodeDataGeneration = "data_generation_error"

// ErrZeroReflectance is returned when NIR+SWIR is zero and the burn ratio is undefined.
var ErrZeroReflectance = errors.New("nir and swir reflectance sum to zero")

func dataGenerationError(operation string, err error, fields map[string]any) error {
	ctx := map[string]any{"operation": operation}
	for k, v := range fields {
		ctx[k] = v
	}
	return apperrors.WrapWith(CodeDataGeneration, operation+" failed", err, ctx)
}
