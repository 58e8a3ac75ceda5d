// Package signedlink issues and verifies the expiring, tamper-proof URLs
// embedded in quote emails.
package signedlink

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrRejected is returned for any link that fails verification
var ErrRejected = errors.New("signed link rejected")

// QueryParam carries the signature on every signed URL
const QueryParam = "signature"

// Action identifies what a signed link is allowed to do
type Action string

const (
	ActionConfirm           Action = "confirm"
	ActionOpen              Action = "open"
	ActionSuggestTimeForm   Action = "suggest_time_form"
	ActionSuggestTimeSubmit Action = "suggest_time_submit"
)

// Path returns the route path for action on quote id
func (a Action) Path(quoteID uint) string {
	id := strconv.FormatUint(uint64(quoteID), 10)
	switch a {
	case ActionConfirm:
		return "/quotes/" + id + "/confirm"
	case ActionOpen:
		return "/quotes/" + id + "/open"
	case ActionSuggestTimeForm, ActionSuggestTimeSubmit:
		return "/quotes/" + id + "/suggest-time"
	}
	return ""
}

type claims struct {
	Action  Action `json:"act"`
	QuoteID uint   `json:"qid"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies quote links
type Issuer struct {
	baseURL string
	secret  []byte
	expiry  time.Duration
	now     func() time.Time
}

// NewIssuer creates an issuer producing absolute URLs under baseURL
func NewIssuer(baseURL, secret string, expiry time.Duration) *Issuer {
	return &Issuer{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		expiry:  expiry,
		now:     time.Now,
	}
}

// Issue returns an absolute signed URL for action on quote id
func (i *Issuer) Issue(action Action, quoteID uint) (string, error) {
	path := action.Path(quoteID)
	if path == "" {
		return "", fmt.Errorf("unknown signed link action %q", action)
	}

	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Action:  action,
		QuoteID: quoteID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
		},
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign link: %w", err)
	}

	return i.baseURL + path + "?" + url.Values{QueryParam: {signed}}.Encode(), nil
}

// Verify checks the signature on u and returns the action and quote id it
// grants. The path of u must match the one the link was issued for.
func (i *Issuer) Verify(u *url.URL) (Action, uint, error) {
	raw := u.Query().Get(QueryParam)
	if raw == "" {
		return "", 0, ErrRejected
	}

	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", 0, ErrRejected
	}

	if !strings.HasSuffix(strings.TrimRight(u.Path, "/"), c.Action.Path(c.QuoteID)) {
		return "", 0, ErrRejected
	}
	return c.Action, c.QuoteID, nil
}

// VerifyAction verifies u and additionally requires it to grant action on
// quoteID
func (i *Issuer) VerifyAction(u *url.URL, action Action, quoteID uint) error {
	got, id, err := i.Verify(u)
	if err != nil {
		return err
	}
	if got != action || id != quoteID {
		return ErrRejected
	}
	return nil
}
