package token

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateValidatesForAllPrefixes(t *testing.T) {
	for i := range Prefixes {
		tok, err := Generate(i)
		if err != nil {
			t.Fatalf("Generate(%d) error: %v", i, err)
		}
		if !strings.HasPrefix(tok, Prefixes[i]) {
			t.Errorf("Generate(%d) = %q, want prefix %q", i, tok, Prefixes[i])
		}
		if len(tok) != len(Prefixes[i])+BodyLength {
			t.Errorf("Generate(%d) length = %d, want %d", i, len(tok), len(Prefixes[i])+BodyLength)
		}
		if !Validate(tok) {
			t.Errorf("Validate(Generate(%d)) = false, want true", i)
		}
	}
}

func TestGenerateOutOfRangeFallsBack(t *testing.T) {
	for _, idx := range []int{-1, len(Prefixes), 42} {
		tok, err := Generate(idx)
		if err != nil {
			t.Fatalf("Generate(%d) error: %v", idx, err)
		}
		if !strings.HasPrefix(tok, Prefixes[0]) {
			t.Errorf("Generate(%d) = %q, want primary prefix %q", idx, tok, Prefixes[0])
		}
	}
}

func TestValidate(t *testing.T) {
	valid, err := Generate(0)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"generated token", valid, true},
		{"empty", "", false},
		{"foreign prefix", "ZZZZ" + strings.Repeat("a", BodyLength), false},
		{"too short", "WBES" + strings.Repeat("a", BodyLength-1), false},
		{"too long", "WBES" + strings.Repeat("a", BodyLength+1), false},
		{"non-alphanumeric body", "WBES" + strings.Repeat("a", BodyLength-1) + "!", false},
		{"prefix only", "TBKS", false},
		{"all prefixes valid shape", "DEVS" + strings.Repeat("Z9", BodyLength/2), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.token); got != tt.want {
				t.Errorf("Validate(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tok, err := Generate(2)
	if err != nil {
		t.Fatal(err)
	}

	prefix, body, ok := Parse(tok)
	if !ok {
		t.Fatalf("Parse(%q) not ok", tok)
	}
	if prefix != "USRS" {
		t.Errorf("Parse() prefix = %q, want USRS", prefix)
	}
	if len(body) != BodyLength {
		t.Errorf("Parse() body length = %d, want %d", len(body), BodyLength)
	}

	if _, _, ok := Parse("garbage"); ok {
		t.Error("Parse() of invalid token should not be ok")
	}
}

// collideFirstN reports a collision for the first n tokens it is asked about.
type collideFirstN struct {
	n     int
	calls int
}

func (c *collideFirstN) TokenExists(_ context.Context, _ string) (bool, error) {
	c.calls++
	return c.calls <= c.n, nil
}

func TestGenerateUnique(t *testing.T) {
	ctx := context.Background()

	t.Run("no collision uses primary prefix", func(t *testing.T) {
		tok, err := GenerateUnique(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(tok, Prefixes[0]) {
			t.Errorf("GenerateUnique() = %q, want primary prefix", tok)
		}
	})

	t.Run("collision advances prefix", func(t *testing.T) {
		tok, err := GenerateUnique(ctx, &collideFirstN{n: 2})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(tok, Prefixes[2]) {
			t.Errorf("GenerateUnique() = %q, want prefix %q after 2 collisions", tok, Prefixes[2])
		}
	})

	t.Run("all collide returns last token", func(t *testing.T) {
		checker := &collideFirstN{n: len(Prefixes)}
		tok, err := GenerateUnique(ctx, checker)
		if err != nil {
			t.Fatal(err)
		}
		if checker.calls != len(Prefixes) {
			t.Errorf("GenerateUnique() made %d attempts, want %d", checker.calls, len(Prefixes))
		}
		if !strings.HasPrefix(tok, Prefixes[len(Prefixes)-1]) {
			t.Errorf("GenerateUnique() = %q, want last prefix", tok)
		}
		if !Validate(tok) {
			t.Error("GenerateUnique() returned invalid token")
		}
	})

	t.Run("checker error propagates", func(t *testing.T) {
		errChecker := checkerFunc(func(context.Context, string) (bool, error) {
			return false, errors.New("db down")
		})
		if _, err := GenerateUnique(ctx, errChecker); err == nil {
			t.Error("GenerateUnique() should propagate checker errors")
		}
	})
}

type checkerFunc func(context.Context, string) (bool, error)

func (f checkerFunc) TokenExists(ctx context.Context, tok string) (bool, error) {
	return f(ctx, tok)
}
