package providers

import (
	"fmt"
	"strings"
	"swipetriage/internal/models"
	"swipetriage/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	v.StopOnError = false
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.String())
	}

	for _, kind := range cv.conf.Library.MediaKinds {
		if _, err := models.ParseMediaType(kind); err != nil {
			return fmt.Errorf("invalid config: library.mediaKinds: %w", err)
		}
	}
	if cv.conf.Library.Root != "" && cv.conf.Library.TrashDir != "" &&
		strings.TrimRight(cv.conf.Library.Root, "/") == strings.TrimRight(cv.conf.Library.TrashDir, "/") {
		return fmt.Errorf("invalid config: library.trashDir must differ from library.root")
	}
	return nil
}
