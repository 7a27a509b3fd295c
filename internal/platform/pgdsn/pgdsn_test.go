package pgdsn

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	t.Run("url disables prepared binary results", func(t *testing.T) {
		got := Resolve("postgres://app:secret@db:5432/matchday_preview?sslmode=disable", true)
		if !strings.Contains(got.DSN, "disable_prepared_binary_result=yes") {
			t.Fatalf("expected flag in dsn, got %q", got.DSN)
		}
		if got.Name != "matchday_preview" {
			t.Fatalf("unexpected db name: %q", got.Name)
		}
	})

	t.Run("explicit flag wins", func(t *testing.T) {
		in := "postgres://app:secret@db:5432/matchday_preview?disable_prepared_binary_result=no"
		if got := Resolve(in, true); got.DSN != in {
			t.Fatalf("expected dsn unchanged, got %q", got.DSN)
		}
	})

	t.Run("flag off", func(t *testing.T) {
		in := "postgres://app:secret@db:5432/matchday_preview"
		if got := Resolve(in, false); got.DSN != in {
			t.Fatalf("expected dsn unchanged, got %q", got.DSN)
		}
	})

	t.Run("key value dsn", func(t *testing.T) {
		in := "host=db user=app dbname='matchday_preview' sslmode=disable"
		got := Resolve(in, true)
		if got.DSN != in || got.Name != "matchday_preview" {
			t.Fatalf("unexpected target: %+v", got)
		}
	})
}

func TestSpanQuery(t *testing.T) {
	got := SpanQuery(" UPDATE users\n\tSET password_hash = '$2a$10$abc''d'  WHERE id = $1 ")
	want := "UPDATE users SET password_hash = '?' WHERE id = $1"
	if got != want {
		t.Fatalf("unexpected span query: %q", got)
	}

	long := SpanQuery("SELECT " + strings.Repeat("x, ", 400) + "1")
	if len(long) != maxSpanQueryLength+3 || !strings.HasSuffix(long, "...") {
		t.Fatalf("expected truncated query, got len=%d", len(long))
	}
}
