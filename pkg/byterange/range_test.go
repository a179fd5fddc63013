package byterange

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	const size = 1000

	cases := []struct {
		name   string
		header string
		want   Range
		err    error
	}{
		{name: "explicit window", header: "bytes=200-499", want: Range{Start: 200, End: 499}},
		{name: "open end", header: "bytes=100-", want: Range{Start: 100, End: 999}},
		{name: "end clamped", header: "bytes=900-2000", want: Range{Start: 900, End: 999}},
		{name: "whole resource", header: "bytes=0-999", want: Range{Start: 0, End: 999}},
		{name: "single byte", header: "bytes=999-999", want: Range{Start: 999, End: 999}},
		{name: "suffix", header: "bytes=-100", want: Range{Start: 900, End: 999}},
		{name: "suffix larger than resource", header: "bytes=-5000", want: Range{Start: 0, End: 999}},
		{name: "unit case and spaces", header: "  Bytes = 10-19 ", want: Range{Start: 10, End: 19}},
		{name: "start at size", header: "bytes=1000-1050", err: ErrUnsatisfiable},
		{name: "start beyond size", header: "bytes=5000-", err: ErrUnsatisfiable},
		{name: "start after end", header: "bytes=500-100", err: ErrUnsatisfiable},
		{name: "zero suffix", header: "bytes=-0", err: ErrUnsatisfiable},
		{name: "both empty", header: "bytes=-", err: ErrMalformed},
		{name: "missing unit", header: "0-100", err: ErrMalformed},
		{name: "other unit", header: "items=0-1", err: ErrMalformed},
		{name: "multi range", header: "bytes=0-10,20-30", err: ErrMalformed},
		{name: "negative start", header: "bytes=-10-20", err: ErrMalformed},
		{name: "junk", header: "bytes=abc-def", err: ErrMalformed},
		{name: "overflow", header: "bytes=99999999999999999999-", err: ErrMalformed},
		{name: "empty", header: "", err: ErrMalformed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.header, size)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseEmptyResourceIsNeverSatisfiable(t *testing.T) {
	for _, header := range []string{"bytes=0-", "bytes=0-0", "bytes=-1"} {
		_, err := Parse(header, 0)
		require.ErrorIs(t, err, ErrUnsatisfiable, header)
	}
}

func TestRangeHeaders(t *testing.T) {
	r := Range{Start: 200, End: 499}

	require.EqualValues(t, 300, r.Length())
	require.Equal(t, "bytes=200-499", r.String())
	require.Equal(t, "bytes 200-499/1000", r.ContentRange(1000))
	require.Equal(t, "bytes */1000", Unsatisfied(1000))
}

func TestSplitCoversResourceInOrder(t *testing.T) {
	parts := Split(1001, 4)
	require.Len(t, parts, 4)

	var next int64
	for _, p := range parts {
		require.Equal(t, next, p.Start)
		next = p.End + 1
	}
	require.EqualValues(t, 1001, next)

	require.Equal(t, []Range{{Start: 0, End: 0}, {Start: 1, End: 1}, {Start: 2, End: 2}}, Split(3, 10))
	require.Nil(t, Split(0, 4))
}
