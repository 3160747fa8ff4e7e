package preview

import (
	"context"
	"errors"
	"testing"

	"SpaceTraveling/internal/core/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Query(ctx context.Context, q content.Query) (*content.Response, error) {
	args := m.Called(ctx, q)
	return nil, args.Error(1)
}

func (m *mockSource) GetByUID(ctx context.Context, docType, uid, ref string) (*content.Document, error) {
	args := m.Called(ctx, docType, uid, ref)
	return nil, args.Error(1)
}

func (m *mockSource) ResolvePreview(ctx context.Context, token, documentID string) (string, error) {
	args := m.Called(ctx, token, documentID)
	return args.String(0), args.Error(1)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		location    string
		sourceErr   error
		expected    string
		expectedErr error
	}{
		{name: "post path", location: "/post/como-utilizar-hooks", expected: "/post/como-utilizar-hooks"},
		{name: "empty location goes home", location: "", expected: "/"},
		{name: "absolute url goes home", location: "https://evil.example.com/post/x", expected: "/"},
		{name: "protocol relative goes home", location: "//evil.example.com", expected: "/"},
		{name: "backslash trick goes home", location: "/\\evil.example.com", expected: "/"},
		{name: "missing document goes home", sourceErr: content.ErrNotFound, expected: "/"},
		{name: "rejected token", sourceErr: content.ErrInvalidPreviewToken, expectedErr: content.ErrInvalidPreviewToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(mockSource)
			source.On("ResolvePreview", mock.Anything, "tok", "doc-1").Return(tt.location, tt.sourceErr)

			location, err := NewService(source).Resolve(context.Background(), "tok", "doc-1")
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, location)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, location)
		})
	}
}

func TestResolve_EmptyToken(t *testing.T) {
	source := new(mockSource)

	_, err := NewService(source).Resolve(context.Background(), "  ", "doc-1")
	assert.ErrorIs(t, err, content.ErrInvalidPreviewToken)
	source.AssertNotCalled(t, "ResolvePreview", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_SourceFailure(t *testing.T) {
	source := new(mockSource)
	boom := errors.New("dial tcp: connection refused")
	source.On("ResolvePreview", mock.Anything, "tok", "").Return("", boom)

	_, err := NewService(source).Resolve(context.Background(), "tok", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, content.ErrInvalidPreviewToken)
}
