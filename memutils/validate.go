package memutils

import "github.com/cockroachdb/errors"

// Validatable is implemented by every structure whose internal consistency can be checked, such as
// block metadata and the arenas built on it
type Validatable interface {
	Validate() error
}

// ValidateAll validates every object and combines the errors it finds
func ValidateAll(objects ...Validatable) error {
	var err error
	for _, object := range objects {
		err = errors.CombineErrors(err, object.Validate())
	}
	return err
}
