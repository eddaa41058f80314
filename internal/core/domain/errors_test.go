package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrConfig", ErrConfig},
		{"ErrExtraction", ErrExtraction},
		{"ErrEmbedding", ErrEmbedding},
		{"ErrStore", ErrStore},
		{"ErrInvalidQuery", ErrInvalidQuery},
		{"ErrSearchUnavailable", ErrSearchUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrDispatcherClosed", ErrDispatcherClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Distinct tests that no two sentinels match each other
func TestErrors_Distinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrInvalidInput, ErrUnsupportedType, ErrConfig, ErrExtraction,
		ErrEmbedding, ErrStore, ErrInvalidQuery, ErrSearchUnavailable,
		ErrEmbeddingUnavailable, ErrDispatcherClosed,
	}

	for i := range all {
		for j := range all {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(all[i], all[j]), "%v should not match %v", all[i], all[j])
		}
	}
}

// TestErrors_WrappedSearchFailure tests that a search failure keeps both causes
func TestErrors_WrappedSearchFailure(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrSearchUnavailable, fmt.Errorf("%w: model offline", ErrEmbedding))

	assert.True(t, errors.Is(err, ErrSearchUnavailable))
	assert.True(t, errors.Is(err, ErrEmbedding))
	assert.False(t, errors.Is(err, ErrStore))
	assert.Contains(t, err.Error(), "model offline")
}
