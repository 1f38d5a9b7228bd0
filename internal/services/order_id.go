package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const orderIDLayout = "20060102"

// idSource is the slice of the store the generator reads from.
type idSource interface {
	MaxIDWithPrefix(ctx context.Context, prefix string) (string, error)
}

// OrderIDPrefix returns "ORD-YYYYMMDD-" for the calendar day of today in StoreZone.
func OrderIDPrefix(today time.Time) string {
	return "ORD-" + today.Format(orderIDLayout) + "-"
}

// NextOrderID derives the next daily id from the highest suffix already stored.
// A missing or unparsable suffix counts as zero. Past 9999 the suffix widens.
func NextOrderID(ctx context.Context, src idSource, today time.Time) (string, error) {
	prefix := OrderIDPrefix(today)
	last, err := src.MaxIDWithPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, parseSequence(last, prefix)+1), nil
}

func parseSequence(id, prefix string) int {
	if id == "" || !strings.HasPrefix(id, prefix) {
		return 0
	}
	n, err := strconv.Atoi(id[len(prefix):])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
