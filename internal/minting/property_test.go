package minting_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/correlator"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/minting"
)

// Property: concurrent mints against one template never reserve more than its cap
func TestService_RequestMint_ConcurrentMintsRespectCap(t *testing.T) {
	tm := setupTestService(t, correlator.Config{})
	tm.seedContract(t, "polygon")
	tm.expectStream()

	var submitted atomic.Uint64
	tm.client.EXPECT().SubmitMint(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, chain.MintCall) (*chain.Submission, error) {
		return &chain.Submission{Ref: fmt.Sprintf("0x%x", submitted.Add(1))}, nil
	}).AnyTimes()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("exactly cap mints succeed and the rest exceed it", prop.ForAll(
		func(requests int, headroom int) bool {
			limit := uint64(requests - headroom)
			template := tm.seedTemplate(t, "polygon", limit)

			var wg sync.WaitGroup
			var succeeded, exceeded, other atomic.Int64
			for i := 0; i < requests; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := tm.service.RequestMint(context.Background(), minting.MintInput{
						Scope:      testScope,
						TemplateID: template.ID,
						Holder:     minting.HolderRef{Address: testHolder},
						Amount:     1,
					})
					switch {
					case err == nil:
						succeeded.Add(1)
					case errors.Is(err, domain.ErrCapExceeded):
						exceeded.Add(1)
					default:
						other.Add(1)
					}
				}()
			}
			wg.Wait()

			stored := tm.template(t, template.ID)
			return succeeded.Load() == int64(limit) &&
				exceeded.Load() == int64(headroom) &&
				other.Load() == 0 &&
				stored.Reserved == limit &&
				stored.Minted == 0
		},
		gen.IntRange(2, 8),
		gen.IntRange(1, 2),
	))

	properties.TestingRun(t)
}
