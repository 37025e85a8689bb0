package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) SweepOrphans(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestOrphanSweepJob_RunOnce(t *testing.T) {
	sweeper := new(mockSweeper)
	sweeper.On("SweepOrphans", mock.Anything).Return(int64(3), nil).Once()

	job := NewOrphanSweepJob(sweeper, zap.NewNop(), &config.Config{})
	n, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestOrphanSweepJob_RunJobLogsFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	sweeper := new(mockSweeper)
	sweeper.On("SweepOrphans", mock.Anything).Return(int64(0), errors.New("db down")).Once()

	job := NewOrphanSweepJob(sweeper, zap.New(core), &config.Config{})
	job.runJob()

	assert.Equal(t, 1, logs.FilterMessage("Orphan sweep job run failed").Len())
}

func TestOrphanSweepJob_Schedule(t *testing.T) {
	sweeper := new(mockSweeper)

	disabled := NewOrphanSweepJob(sweeper, zap.NewNop(), &config.Config{})
	assert.NoError(t, disabled.SetupAndStart())
	disabled.Stop()

	invalid := NewOrphanSweepJob(sweeper, zap.NewNop(), &config.Config{OrphanSweepJobSchedule: "every now and then"})
	assert.Error(t, invalid.SetupAndStart())

	valid := NewOrphanSweepJob(sweeper, zap.NewNop(), &config.Config{OrphanSweepJobSchedule: "@daily"})
	require.NoError(t, valid.SetupAndStart())
	valid.Stop()
	sweeper.AssertNotCalled(t, "SweepOrphans", mock.Anything)
}

func TestCronLogger_Fields(t *testing.T) {
	fields := toFields([]interface{}{"entry", 1, "dangling"})
	require.Len(t, fields, 2)
	assert.Equal(t, "entry", fields[0].Key)
	assert.Equal(t, "dangling", fields[1].Key)
}
