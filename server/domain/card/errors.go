package card

import "github.com/gear6io/mtgapi/pkg/errors"

// Card domain error codes
var (
	CardInvalidManaCost = errors.MustNewCode("card.invalid_mana_cost")
	CardInvalidPayload  = errors.MustNewCode("card.invalid_payload")
	CardDecodeFailed    = errors.MustNewCode("card.decode_failed")
)
