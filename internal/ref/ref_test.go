package ref

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	lookup := func(id string) (Handle, bool) {
		if id == "f1" {
			return 7, true
		}
		return None, false
	}

	tests := []struct {
		name   string
		in     Ref
		wantOK bool
		want   Ref
	}{
		{"found", NewSymbolic("f1", "foo"), true, NewResolved(7, "foo")},
		{"missing", NewSymbolic("missing", "bar"), false, NewUnresolved("bar")},
		{"empty id", NewSymbolic("", "baz"), false, NewUnresolved("baz")},
		{"already unresolved", NewUnresolved("x"), true, NewUnresolved("x")},
		{"already resolved", NewResolved(3, "y"), true, NewResolved(3, "y")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := tt.in
			ok := r.Resolve(lookup)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestResolveIsTerminal(t *testing.T) {
	t.Parallel()

	calls := 0
	lookup := func(string) (Handle, bool) {
		calls++
		return 1, true
	}

	r := NewSymbolic("a", "a")
	r.Resolve(lookup)
	r.Resolve(lookup)
	assert.Equal(t, 1, calls)
	assert.True(t, r.IsResolved())
}

func TestStateString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "symbolic", Symbolic.String())
	assert.Equal(t, "unresolved", Unresolved.String())
	assert.Equal(t, "resolved", Resolved.String())
	assert.Equal(t, "unknown", State(9).String())
}
