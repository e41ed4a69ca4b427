package dal

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/licensehq/entitlement-engine/entitlement/domain"
)

// DeriveEventID produces a deterministic event document id from the request
// id, the capability and the event type. Writing the same logical event twice
// therefore lands on the same document instead of duplicating it.
func DeriveEventID(requestID, cap string, eventType domain.EventType) string {
	raw := requestID + "\x00" + strings.ToLower(cap) + "\x00" + string(eventType)
	sum := sha256.Sum256([]byte(raw))

	return sanitizeDocID(requestID) + "_" + sanitizeDocID(cap) + "_" + string(eventType) + "_" + hex.EncodeToString(sum[:4])
}

// sanitizeDocID makes an arbitrary string safe for use as a Firestore
// document id segment.
func sanitizeDocID(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	if b.Len() == 0 {
		return "-"
	}

	return b.String()
}
