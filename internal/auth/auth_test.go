package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	claims Claims
	err    error
}

func (s stubValidator) Validate(context.Context, string) (Claims, error) {
	return s.claims, s.err
}

type stubIssuer struct{}

func (stubIssuer) Issue(_ context.Context, nonce string) (string, error) {
	return "issued:" + nonce, nil
}

func TestExchange(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	valid := Claims{Audience: []string{"spn:client-1"}, Nonce: "n1", ExpiresAt: now.Add(time.Hour)}

	tests := []struct {
		name    string
		claims  Claims
		verr    error
		token   string
		want    string
		wantErr error
	}{
		{"ok", valid, nil, "tok", "issued:n1", nil},
		{"audience case", Claims{Audience: []string{"SPN:Client-1"}, Nonce: "n2"}, nil, "tok", "issued:n2", nil},
		{"empty token", valid, nil, " ", "", ErrInvalidToken},
		{"bad signature", Claims{}, errors.New("signature mismatch"), "tok", "", ErrInvalidToken},
		{"wrong audience", Claims{Audience: []string{"spn:other"}}, nil, "tok", "", ErrInvalidToken},
		{"expired", Claims{Audience: []string{"spn:client-1"}, ExpiresAt: now}, nil, "tok", "", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Exchanger{
				Validator: stubValidator{claims: tt.claims, err: tt.verr},
				Issuer:    stubIssuer{},
				ClientID:  "client-1",
				Now:       func() time.Time { return now },
			}
			got, err := e.Exchange(context.Background(), tt.token)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExchange_NotConfigured(t *testing.T) {
	var nilExchanger *Exchanger
	assert.False(t, nilExchanger.Configured())

	e := &Exchanger{Validator: stubValidator{}}
	assert.False(t, e.Configured())
	_, err := e.Exchange(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
