package mtgio

import "github.com/gear6io/mtgapi/pkg/errors"

var (
	MTGIOCardNotFound     = errors.MustNewCode("mtgio.card_not_found")
	MTGIORequestFailed    = errors.MustNewCode("mtgio.request_failed")
	MTGIOInvalidResponse  = errors.MustNewCode("mtgio.invalid_response")
	MTGIOInvalidCardModel = errors.MustNewCode("mtgio.invalid_card_model")
)

// IsNotFound reports whether err means the upstream has no matching card.
func IsNotFound(err error) bool {
	return errors.HasCode(err, MTGIOCardNotFound)
}
