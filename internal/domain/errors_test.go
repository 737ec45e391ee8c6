package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-minter/internal/domain"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   domain.ErrorKind
		client bool
	}{
		{name: "nil", err: nil, kind: "", client: false},
		{name: "cap exceeded", err: fmt.Errorf("template 1: %w", domain.ErrCapExceeded), kind: domain.KindCapExceeded, client: true},
		{name: "template not found", err: domain.ErrTemplateNotFound, kind: domain.KindNotFound, client: true},
		{name: "unknown network", err: fmt.Errorf("%w: %q", domain.ErrUnknownNetwork, "moon"), kind: domain.KindValidation, client: true},
		{name: "correlation timeout", err: domain.ErrCorrelationTimeout, kind: domain.KindCorrelationTimeout, client: false},
		{name: "upstream", err: domain.Upstream("submit mint", errors.New("rpc down")), kind: domain.KindUpstream, client: false},
		{name: "explicit validation", err: domain.Validation("request mint", errors.New("bad input")), kind: domain.KindValidation, client: true},
		{name: "unclassified", err: errors.New("boom"), kind: domain.KindInternal, client: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, domain.KindOf(tt.err))
			assert.Equal(t, tt.client, domain.IsClientError(tt.err))
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := domain.Upstream("create wallet", domain.ErrHolderNotFound)

	assert.ErrorIs(t, err, domain.ErrHolderNotFound)
	assert.Equal(t, "create wallet: holder not found", err.Error())
	assert.Nil(t, domain.Upstream("noop", nil))
}

func TestClientKind_Validate(t *testing.T) {
	assert.NoError(t, domain.ClientKindDefault.Validate())
	assert.NoError(t, domain.ClientKindImmutable.Validate())
	assert.ErrorIs(t, domain.ClientKind("tezos").Validate(), domain.ErrUnknownClientKind)
}
