package securetoken

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"hsource/lib/scrapeerr"
	"hsource/lib/textutil"
)

// TokenPrefix is prepended by the site's player script before the token
// is inlined into the page.
const TokenPrefix = "mresh="

const decodeRounds = 3

// Payload is the structured secret recovered from an unscrambled token.
// All three fields are needed to make the stream source request.
type Payload struct {
	EncryptedKey string `json:"en_key"`
	IV           string `json:"iv"`
	ApiUri       string `json:"uri"`
}

// Unscramble reverses the site's token obfuscation: after stripping the
// prefix, each of the three rounds applies rot13 and then a standard
// base64 decode. The rounds carry no checksum, so the order and count
// must match the site's scheme exactly, any deviation produces garbage
// that only fails at the json stage.
func Unscramble(token string) (Payload, error) {
	if token == "" {
		return Payload{}, fmt.Errorf("%w: empty token", scrapeerr.ErrInvalidArgument)
	}

	text := strings.TrimPrefix(token, TokenPrefix)
	for round := 1; round <= decodeRounds; round++ {
		decoded, err := base64.StdEncoding.DecodeString(textutil.Rot13(text))
		if err != nil {
			return Payload{}, fmt.Errorf(
				"%w: base64 decode in round %d: %s",
				scrapeerr.ErrUnscrambling, round, err,
			)
		}
		text = string(decoded)
	}

	var payload Payload
	err := json.Unmarshal([]byte(text), &payload)
	if err != nil {
		return Payload{}, fmt.Errorf(
			"%w: decoded token is not valid json: %s",
			scrapeerr.ErrUnscrambling, err,
		)
	}
	if payload.EncryptedKey == "" || payload.IV == "" || payload.ApiUri == "" {
		return Payload{}, fmt.Errorf(
			"%w: decoded token is missing required fields",
			scrapeerr.ErrUnscrambling,
		)
	}

	return payload, nil
}
