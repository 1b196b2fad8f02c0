// Package initdata validates the signed payload a Telegram Mini-App receives from the
// Telegram client and extracts the user it was issued for.
//
// The data-check string is every field except hash rendered as key=value, sorted and joined
// with "\n". The signature is hex(HMAC-SHA256(SHA256(botToken), dataCheckString)).
package initdata

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"net/url"
	"sort"
	"strings"
)

const (
	fieldHash     = "hash"
	fieldUser     = "user"
	fieldAuthDate = "auth_date"
)

// TelegramUser is the identity carried in the user field
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Verified is the outcome of a successful verification
type Verified struct {
	User TelegramUser
	// AuthDate is the raw auth_date value, empty when the field is absent
	AuthDate string
}

// Verify checks rawInitData against botToken.
// Every rejection is an *Error; Verify never panics on malformed input.
func Verify(rawInitData, botToken string) (*Verified, error) {
	if rawInitData == "" {
		return nil, ErrEmpty
	}

	fields, err := parse(rawInitData)
	if err != nil {
		return nil, ErrBadFormat
	}

	hash := fields.Get(fieldHash)
	if hash == "" {
		return nil, ErrNoHash
	}

	expected := Sign(fields, botToken)
	if !hmac.Equal([]byte(expected), []byte(hash)) {
		return nil, ErrBadHash
	}

	rawUser := fields.Get(fieldUser)
	if rawUser == "" {
		return nil, ErrNoUser
	}

	user, err := decodeUser(rawUser)
	if err != nil {
		return nil, err
	}

	return &Verified{
		User:     user,
		AuthDate: fields.Get(fieldAuthDate),
	}, nil
}

// parse decodes the payload keeping one value per key, the last one seen
func parse(raw string) (url.Values, error) {
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return nil, err
	}
	for k, v := range vals {
		if len(v) > 1 {
			vals[k] = v[len(v)-1:]
		}
	}
	return vals, nil
}

// DataCheckString renders fields in the canonical form that gets signed
func DataCheckString(fields url.Values) string {
	lines := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == fieldHash || len(v) == 0 {
			continue
		}
		lines = append(lines, k+"="+v[len(v)-1])
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}

// Sign computes the lowercase hex signature of fields for botToken.
// The hash field, if present, is ignored.
func Sign(fields url.Values, botToken string) string {
	key := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, key[:])
	mac.Write([]byte(DataCheckString(fields)))
	return hex.EncodeToString(mac.Sum(nil))
}

func decodeUser(raw string) (TelegramUser, error) {
	if !json.Valid([]byte(raw)) {
		return TelegramUser{}, ErrBadUserJSON
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return TelegramUser{}, ErrBadUserJSON
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return TelegramUser{}, ErrNoUserID
	}

	num, ok := obj["id"].(json.Number)
	if !ok {
		return TelegramUser{}, ErrNoUserID
	}
	id, ok := positiveID(num)
	if !ok {
		return TelegramUser{}, ErrNoUserID
	}

	user := TelegramUser{ID: id}
	if s, ok := obj["first_name"].(string); ok {
		user.FirstName = s
	}
	if s, ok := obj["username"].(string); ok {
		user.Username = s
	}
	return user, nil
}

// positiveID accepts integral numbers in (0, MaxInt64], including forms like 7.0 or 1e3
func positiveID(n json.Number) (int64, bool) {
	if id, err := n.Int64(); err == nil {
		return id, id > 0
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if f <= 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
