package review

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		reviews []string
		limit   int
		want    []string
	}{
		{
			name:    "empty set yields the no-reviews message",
			reviews: nil,
			limit:   5,
			want:    []string{NoReviewsMessage},
		},
		{
			name:    "small set is returned verbatim",
			reviews: []string{"great", "okay", "bad"},
			limit:   5,
			want:    []string{"great", "okay", "bad"},
		},
		{
			name:    "set at the limit has no more entry",
			reviews: []string{"a", "b", "c", "d", "e"},
			limit:   5,
			want:    []string{"a", "b", "c", "d", "e"},
		},
		{
			name:    "overflow collapses into an and-N-more entry",
			reviews: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
			limit:   5,
			want:    []string{"a", "b", "c", "d", "e", "...and 3 more reviews"},
		},
		{
			name:    "non-positive limit uses the default",
			reviews: []string{"a", "b", "c", "d", "e", "f"},
			limit:   0,
			want:    []string{"a", "b", "c", "d", "e", "...and 1 more reviews"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Preview(tt.reviews, tt.limit))
		})
	}
}
