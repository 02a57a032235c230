package webhooks

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	pkgerrors "github.com/adelcourt/fiches-backend/pkg/errors"
)

const transferEncodingHeader = "Content-Transfer-Encoding"

// readPayload recovers the raw bytes the sender signed. Deliveries relayed
// through transports that cannot carry binary bodies arrive base64-wrapped
// and flagged with Content-Transfer-Encoding: base64; everything else is
// passed through untouched. The decoded bytes must match the signed payload
// byte for byte or signature verification downstream will fail.
func readPayload(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "read request body")
	}

	if !strings.EqualFold(r.Header.Get(transferEncodingHeader), "base64") {
		return body, nil
	}

	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(body)))
	n, err := base64.StdEncoding.Decode(decoded, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode base64 payload")
	}
	return decoded[:n], nil
}
