package sortdate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestParseHeaderDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-03-05", day(2024, 3, 5), true},
		{"2024/03/05", day(2024, 3, 5), true},
		{"2024-03-05T10:00:00", day(2024, 3, 5), true},
		{"2024-03-05T10:00:00Z", day(2024, 3, 5), true},
		{"2024-03-05 10:00", day(2024, 3, 5), true},
		{"  2024-03-05  ", day(2024, 3, 5), true},
		{"March 5, 2024", time.Time{}, false},
		{"2024-02-30", time.Time{}, false},
		{"", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseHeaderDate(tt.raw)
			require.Equal(t, tt.ok, ok)
			require.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestFromHeader_SlashAndTimestampFormsResolveToSameDay(t *testing.T) {
	a, okA := FromHeader([]byte("---\ndate: 2024/03/05\n---\nbody\n"))
	b, okB := FromHeader([]byte("---\ntitle: x\ndate: \"2024-03-05T10:00:00\"\n---\nbody\n"))

	require.True(t, okA)
	require.True(t, okB)
	require.True(t, a.Equal(b))
}

func TestFromHeader_LooseClosingDelimiter(t *testing.T) {
	for _, closing := range []string{"--- ", "---\t", "----"} {
		t.Run(closing, func(t *testing.T) {
			got, ok := FromHeader([]byte("---\ndate: 2024-03-05\n" + closing + "\nbody\n"))
			require.True(t, ok)
			require.True(t, day(2024, 3, 5).Equal(got))
		})
	}
}

func TestFromHeader_Failures(t *testing.T) {
	tests := map[string]string{
		"no header":         "# Title\ndate: 2024-03-05\n",
		"unterminated":      "---\ndate: 2024-03-05\n# Title\n",
		"no date field":     "---\ntitle: x\n---\n",
		"unparsable value":  "---\ndate: yesterday\n---\n",
		"similar key only":  "---\nupdated: 2024-03-05\n---\n",
		"header not at top": "\n---\ndate: 2024-03-05\n---\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := FromHeader([]byte(content))
			require.False(t, ok)
		})
	}
}

func TestFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want time.Time
		ok   bool
	}{
		{"2023-11-02-release-notes.md", day(2023, 11, 2), true},
		{"notes-2023-11-02.md", day(2023, 11, 2), true},
		{"trip_2021-07-30_to_2021-08-04.md", day(2021, 7, 30), true},
		{"2023-13-45-bad.md", time.Time{}, false},
		{"hello-world.md", time.Time{}, false},
		{"20231102.md", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromFilename(tt.name)
			require.Equal(t, tt.ok, ok)
			require.True(t, tt.want.Equal(got))
		})
	}
}

func TestResolve_FallbackChain(t *testing.T) {
	mtime := time.Date(2025, 1, 2, 15, 4, 5, 0, time.Local)

	t.Run("header wins over filename", func(t *testing.T) {
		got := Resolve(Input{
			Name:    "2020-01-01-post.md",
			Content: []byte("---\ndate: 2024-03-05\n---\n"),
			ModTime: mtime,
		})
		require.Equal(t, SourceHeader, got.Source)
		require.True(t, day(2024, 3, 5).Equal(got.Date))
	})

	t.Run("filename when header has no usable date", func(t *testing.T) {
		got := Resolve(Input{
			Name:    "2020-01-01-post.md",
			Content: []byte("---\ndate: someday\n---\n"),
			ModTime: mtime,
		})
		require.Equal(t, SourceFilename, got.Source)
		require.True(t, day(2020, 1, 1).Equal(got.Date))
	})

	t.Run("read failure skips the header", func(t *testing.T) {
		got := Resolve(Input{
			Name:    "post.md",
			Content: []byte("---\ndate: 2024-03-05\n---\n"),
			ReadErr: errors.New("permission denied"),
			ModTime: mtime,
		})
		require.Equal(t, SourceModTime, got.Source)
		require.True(t, mtime.Equal(got.Date))
	})

	t.Run("modification time as last resort", func(t *testing.T) {
		got := Resolve(Input{Name: "post.md", Content: []byte("# Title\n"), ModTime: mtime})
		require.Equal(t, SourceModTime, got.Source)
		require.True(t, mtime.Equal(got.Date))
	})
}

func TestSource_String(t *testing.T) {
	require.Equal(t, "header", SourceHeader.String())
	require.Equal(t, "filename", SourceFilename.String())
	require.Equal(t, "modtime", SourceModTime.String())
	require.Equal(t, "unknown", Source(42).String())
}
