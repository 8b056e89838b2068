package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_SetKind(t *testing.T) {
	cases := []struct {
		name string
		err  *ArgusError
		want Kind
	}{
		{"io", IO("read failed", nil), KindIO},
		{"parse", Parse("grammar failed", nil), KindParse},
		{"database", Database("schema conflict", nil), KindDatabase},
		{"embedding", Embedding("bad status", nil), KindEmbedding},
		{"config", Config("missing key", nil), KindConfig},
		{"not_found", NotFound("no such file", nil), KindNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Kind)
		})
	}
}

func TestEmbeddingError_DefaultsRetryable(t *testing.T) {
	err := Embedding("rate limited", nil)
	assert.True(t, err.Retryable)
}

func TestOtherKinds_DefaultNotRetryable(t *testing.T) {
	assert.False(t, IO("x", nil).Retryable)
	assert.False(t, Config("x", nil).Retryable)
}

func TestError_FormatsWithAndWithoutCause(t *testing.T) {
	plain := NotFound("metadata row absent", nil)
	assert.Equal(t, "[NOT_FOUND] metadata row absent", plain.Error())

	cause := stderrors.New("disk full")
	wrapped := IO("write failed", cause)
	assert.Contains(t, wrapped.Error(), "write failed")
	assert.Contains(t, wrapped.Error(), "disk full")
}

func TestUnwrap_ExposesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Database("insert failed", cause)
	require.ErrorIs(t, err, cause)
}

func TestIs_MatchesOnKindOnly(t *testing.T) {
	a := Config("missing a", nil)
	b := Config("missing b", nil)
	c := Parse("different kind", nil)

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestWithSuggestion_AttachesHint(t *testing.T) {
	err := Database("dimension mismatch", nil).WithSuggestion("run re-index to rebuild")
	assert.Equal(t, "run re-index to rebuild", err.Suggestion)
}

func TestIsRetryable_NonArgusError(t *testing.T) {
	assert.False(t, IsRetryable(stderrors.New("plain error")))
}

func TestKindOf_NonArgusError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(stderrors.New("plain error")))
}
