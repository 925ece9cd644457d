package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestWatcherQuery_ToSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		query         WatcherQuery
		wantCountSQL  string
		wantArgs      []any
		wantDataHas   []string // substrings that must appear in dataSQL
		wantDataNotIn []string // substrings that must NOT appear
	}{
		{
			name:  "empty query uses defaults",
			query: WatcherQuery{},
			wantDataHas: []string{
				"FROM watchers",
				"ORDER BY created_at DESC, id",
				"LIMIT 50",
				"OFFSET 0",
			},
			wantDataNotIn: []string{"WHERE"},
			wantCountSQL:  "SELECT COUNT(*) FROM watchers",
		},
		{
			name:         "email filter",
			query:        WatcherQuery{Email: ptr("user@example.com")},
			wantDataHas:  []string{"WHERE email = $1", "LIMIT 50"},
			wantCountSQL: "SELECT COUNT(*) FROM watchers WHERE email = $1",
			wantArgs:     []any{"user@example.com"},
		},
		{
			name:         "product filter",
			query:        WatcherQuery{ProductURL: ptr("https://www.amazon.in/dp/B0")},
			wantDataHas:  []string{"WHERE product_url = $1"},
			wantCountSQL: "SELECT COUNT(*) FROM watchers WHERE product_url = $1",
			wantArgs:     []any{"https://www.amazon.in/dp/B0"},
		},
		{
			name: "both filters with correct parameter numbering",
			query: WatcherQuery{
				Email:      ptr("user@example.com"),
				ProductURL: ptr("https://www.flipkart.com/p/itm1"),
			},
			wantDataHas:  []string{"email = $1", "product_url = $2", " AND "},
			wantCountSQL: "SELECT COUNT(*) FROM watchers WHERE email = $1 AND product_url = $2",
			wantArgs:     []any{"user@example.com", "https://www.flipkart.com/p/itm1"},
		},
		{
			name:        "order by title",
			query:       WatcherQuery{OrderBy: "product_title"},
			wantDataHas: []string{"ORDER BY product_title ASC, id"},
		},
		{
			name:          "invalid order by falls back to default",
			query:         WatcherQuery{OrderBy: "DROP TABLE watchers; --"},
			wantDataHas:   []string{"ORDER BY created_at DESC, id"},
			wantDataNotIn: []string{"DROP TABLE"},
		},
		{
			name:        "custom limit and offset",
			query:       WatcherQuery{Limit: 25, Offset: 100},
			wantDataHas: []string{"LIMIT 25", "OFFSET 100"},
		},
		{
			name:        "negative limit defaults to 50",
			query:       WatcherQuery{Limit: -10},
			wantDataHas: []string{"LIMIT 50"},
		},
		{
			name:        "limit exceeding max is capped",
			query:       WatcherQuery{Limit: 1000},
			wantDataHas: []string{"LIMIT 500"},
		},
		{
			name:        "negative offset defaults to 0",
			query:       WatcherQuery{Offset: -5},
			wantDataHas: []string{"OFFSET 0"},
		},
		{
			name:          "unbounded drops paging",
			query:         WatcherQuery{ProductURL: ptr("u"), Unbounded: true, Limit: 5},
			wantDataHas:   []string{"WHERE product_url = $1", "ORDER BY created_at DESC, id"},
			wantDataNotIn: []string{"LIMIT", "OFFSET"},
			wantArgs:      []any{"u"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := tt.query
			dataSQL, countSQL, args := q.ToSQL()

			for _, s := range tt.wantDataHas {
				assert.Contains(t, dataSQL, s, "dataSQL should contain %q", s)
			}

			for _, s := range tt.wantDataNotIn {
				assert.NotContains(t, dataSQL, s, "dataSQL should not contain %q", s)
			}

			if tt.wantCountSQL != "" {
				assert.Equal(t, tt.wantCountSQL, countSQL)
			}

			if tt.wantArgs != nil {
				require.Len(t, args, len(tt.wantArgs))
				assert.Equal(t, tt.wantArgs, args)
			} else {
				assert.Empty(t, args)
			}
		})
	}
}

func TestPage(t *testing.T) {
	t.Parallel()

	items := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name  string
		query *WatcherQuery
		want  []int
	}{
		{name: "nil query returns all", query: nil, want: items},
		{name: "unbounded returns all", query: &WatcherQuery{Unbounded: true, Limit: 1}, want: items},
		{name: "limit", query: &WatcherQuery{Limit: 2}, want: []int{0, 1}},
		{name: "offset and limit", query: &WatcherQuery{Limit: 2, Offset: 3}, want: []int{3, 4}},
		{name: "offset past end", query: &WatcherQuery{Offset: 10}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Page(tt.query, items))
		})
	}
}
