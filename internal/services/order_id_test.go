package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"cheflink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource struct {
	last string
	err  error
	seen string
}

func (f *fixedSource) MaxIDWithPrefix(ctx context.Context, prefix string) (string, error) {
	f.seen = prefix
	return f.last, f.err
}

func TestNextOrderID(t *testing.T) {
	day := time.Date(2025, 3, 1, 23, 59, 0, 0, models.StoreZone)

	cases := []struct {
		name string
		last string
		want string
	}{
		{"first of the day", "", "ORD-20250301-0001"},
		{"continues sequence", "ORD-20250301-0007", "ORD-20250301-0008"},
		{"unparsable suffix", "ORD-20250301-abcd", "ORD-20250301-0001"},
		{"widens past 9999", "ORD-20250301-9999", "ORD-20250301-10000"},
		{"foreign prefix ignored", "ORD-20250228-0042", "ORD-20250301-0001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fixedSource{last: tc.last}
			id, err := NextOrderID(context.Background(), src, day)
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
			assert.Equal(t, "ORD-20250301-", src.seen)
		})
	}
}

func TestNextOrderID_StoreError(t *testing.T) {
	src := &fixedSource{err: errors.New("connection refused")}
	_, err := NextOrderID(context.Background(), src, time.Now())
	assert.EqualError(t, err, "connection refused")
}
