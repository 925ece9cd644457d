// Package scrape fetches product details (canonical URL, title and price)
// from retail product pages.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrInvalidSource means the URL is not a recognized, parseable product
	// page.
	ErrInvalidSource = errors.New("not a recognized product page")
	// ErrUnreachable means the page could not be fetched.
	ErrUnreachable = errors.New("product page unreachable")
)

// Details is what a product page yields. A nil Price means the product is
// currently unavailable.
type Details struct {
	URL   string
	Title string
	Price *int64
}

// Provider fetches product details for a URL.
type Provider interface {
	Fetch(ctx context.Context, url string) (*Details, error)
}

// siteParser extracts title and price from a product page of one site.
type siteParser func(doc *goquery.Document) (title string, price *int64, err error)

// parsers is keyed by the host of the page's canonical link.
var parsers = map[string]siteParser{
	"www.amazon.in":    parseAmazon,
	"www.flipkart.com": parseFlipkart,
}

// Supported reports whether host belongs to a site with a parser: the
// canonical host itself, its bare domain, or any subdomain of that domain.
func Supported(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for known := range parsers {
		domain := strings.TrimPrefix(known, "www.")
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func parseAmazon(doc *goquery.Document) (string, *int64, error) {
	title := strings.TrimSpace(doc.Find("span#productTitle").First().Text())
	if title == "" {
		return "", nil, errors.New("amazon: product title missing")
	}

	availability := doc.Find("div#availability span").First().Text()
	if strings.Contains(availability, "Currently unavailable") {
		return title, nil, nil
	}

	text := firstText(doc,
		"span#priceblock_dealprice",
		"span#priceblock_ourprice",
		"#corePrice_feature_div .a-price .a-offscreen",
	)
	price, err := parsePrice(text)
	if err != nil {
		return "", nil, fmt.Errorf("amazon: %w", err)
	}
	return title, &price, nil
}

func parseFlipkart(doc *goquery.Document) (string, *int64, error) {
	text := firstText(doc, "div._1vC4OE._3qQ9m1", "div.Nx9bqj")
	price, err := parsePrice(text)
	if err != nil {
		return "", nil, fmt.Errorf("flipkart: %w", err)
	}

	title := firstText(doc, "span._35KyD6", "span.VU-ZEz")
	if title == "" {
		return "", nil, errors.New("flipkart: product title missing")
	}
	return title, &price, nil
}

// firstText returns the trimmed text of the first selector that matches.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if text := strings.TrimSpace(s.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// parsePrice reads a displayed price like "₹17,999.00" as whole currency
// units, truncating any fraction.
func parsePrice(text string) (int64, error) {
	if i := strings.IndexFunc(text, isDigit); i >= 0 {
		text = text[i:]
	}
	cleaned := strings.Map(func(r rune) rune {
		if isDigit(r) || r == '.' {
			return r
		}
		return -1
	}, text)
	if cleaned == "" {
		return 0, fmt.Errorf("no price in %q", text)
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing price %q: %w", text, err)
	}
	return int64(f), nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
