package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"dm-server/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestIndexFlushWorker_Flushes_On_Ticks(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	indexMock := mocks.NewMockIContactIndex(ctrl)
	// At least a couple of periodic flushes, plus the final one on shutdown
	indexMock.EXPECT().Flush().Return(nil).MinTimes(3)

	worker := NewIndexFlushWorker(indexMock, 50*time.Millisecond, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := worker.Run(ctx)
	req.NoError(err)
}

func TestIndexFlushWorker_Final_Flush_On_Shutdown(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	indexMock := mocks.NewMockIContactIndex(ctrl)
	// Interval far beyond the test duration: only the shutdown flush runs
	indexMock.EXPECT().Flush().Return(nil).Times(1)

	worker := NewIndexFlushWorker(indexMock, time.Hour, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := worker.Run(ctx)
	req.NoError(err)
}
