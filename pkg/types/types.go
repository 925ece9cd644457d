// Package domain defines the core business types for the bargain tracker.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Watcher is a single user's interest in price changes for one product.
// There is at most one Watcher per (email, product URL) pair.
type Watcher struct {
	ID           string    `json:"id"            db:"id"`
	Email        string    `json:"email"         db:"email"`
	ProductURL   string    `json:"product_url"   db:"product_url"`
	ProductTitle string    `json:"product_title" db:"product_title"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
}

// Subscription holds the per-email notification channel and opt-in flag.
type Subscription struct {
	Email           string    `json:"email"                      db:"email"`
	Subscribed      bool      `json:"subscribed"                 db:"subscribed"`
	ChannelRef      string    `json:"channel_ref"                db:"channel_ref"`
	SubscriptionRef string    `json:"subscription_ref,omitempty" db:"subscription_ref"`
	CreatedAt       time.Time `json:"created_at"                 db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"                 db:"updated_at"`
}

// Product is the canonical per-URL record shared by every watcher of that URL.
type Product struct {
	ProductURL   string    `json:"product_url"            db:"product_url"`
	ProductTitle string    `json:"product_title"          db:"product_title"`
	LatestPrice  *int64    `json:"latest_price,omitempty" db:"latest_price"`
	UpdatedAt    time.Time `json:"updated_at"             db:"updated_at"`
}

// Task is the monitoring work item placed on the queue. It is a snapshot of
// the product row at enqueue time, not a reference to it.
type Task struct {
	ProductURL   string `json:"productUrl"`
	ProductTitle string `json:"productTitle"`
	LatestPrice  *int64 `json:"latestPrice"`
}

// TaskFromProduct snapshots a product into a Task.
func TaskFromProduct(p *Product) Task {
	t := Task{ProductURL: p.ProductURL, ProductTitle: p.ProductTitle}
	if p.LatestPrice != nil {
		v := *p.LatestPrice
		t.LatestPrice = &v
	}
	return t
}

// OutcomeKind classifies the terminal state of processing one Task.
type OutcomeKind string

// Outcome kinds.
const (
	OutcomeNoWatchers     OutcomeKind = "no_watchers"
	OutcomePriceUnchanged OutcomeKind = "price_unchanged"
	OutcomeNotified       OutcomeKind = "price_changed_notified"
	OutcomeFetchFailed    OutcomeKind = "fetch_failed"
)

// Outcome is the result of processing one Task.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`
	// Notified is the number of distinct emails a notification was delivered to.
	Notified int    `json:"notified"`
	OldPrice *int64 `json:"old_price,omitempty"`
	NewPrice *int64 `json:"new_price,omitempty"`
	// WriteLost is set when the conditional catalog update found the stored
	// price already moved by another writer.
	WriteLost bool  `json:"write_lost,omitempty"`
	Err       error `json:"-"`
}

// JobRun records a single execution of a scheduled job.
type JobRun struct {
	ID           string     `json:"id"                      db:"id"`
	JobName      string     `json:"job_name"                db:"job_name"`
	StartedAt    time.Time  `json:"started_at"              db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"  db:"completed_at"`
	Status       string     `json:"status"                  db:"status"`
	ErrorText    string     `json:"error_text,omitempty"    db:"error_text"`
	RowsAffected *int       `json:"rows_affected,omitempty" db:"rows_affected"`
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// WatcherID derives the deterministic watcher id for an (email, product URL)
// pair. The NUL separator cannot occur in either component, so distinct pairs
// never hash the same input.
func WatcherID(email, productURL string) string {
	h := sha256.New()
	h.Write([]byte(NormalizeEmail(email)))
	h.Write([]byte{0})
	h.Write([]byte(strings.TrimSpace(productURL)))
	return hex.EncodeToString(h.Sum(nil))
}

// PriceEqual reports whether two nullable prices are the same. Two unknown
// prices are equal.
func PriceEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// FormatPrice renders a nullable price for humans.
func FormatPrice(p *int64) string {
	if p == nil {
		return "unavailable"
	}
	return strconv.FormatInt(*p, 10)
}

// Price returns a pointer to v.
func Price(v int64) *int64 {
	return &v
}
