package apperror

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldName reports a struct field under the name API callers use: its json
// tag, else its form tag. Register it with validator.RegisterTagNameFunc.
func FieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// FromValidator turns a validator failure into a Validation fault listing
// every rejected field, e.g. "item[0].price failed on required".
func FromValidator(prefix string, err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validation(prefix + err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		// drop the root struct name
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", field, fe.Tag()))
	}
	return Validation(prefix + strings.Join(msgs, "; "))
}
