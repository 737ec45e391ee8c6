package ethereum

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/logger"
)

// logSubscription forwards decoded logs to a handler until unsubscribed or the stream fails
type logSubscription struct {
	sub   ethereum.Subscription
	errCh chan error
	done  chan struct{}
	once  sync.Once
}

func (s *logSubscription) run(network string, logs <-chan types.Log, handler chain.EventHandler) {
	for {
		select {
		case <-s.done:
			return
		case err := <-s.sub.Err():
			if err == nil {
				err = errors.New("subscription closed")
			}
			s.errCh <- fmt.Errorf("subscription error: %w", err)
			return
		case vLog := <-logs:
			if vLog.Removed {
				logger.Warn("Ignoring removed log", zap.String("network", network), zap.String("tx_hash", vLog.TxHash.Hex()))
				continue
			}

			event, err := ParseTransferLog(vLog)
			if err != nil {
				logger.Error(err, zap.String("message", "Error parsing log"), zap.String("network", network))
				continue
			}
			handler(*event)
		}
	}
}

func (s *logSubscription) Err() <-chan error {
	return s.errCh
}

func (s *logSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		s.sub.Unsubscribe()
	})
}
