package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls       int
	err         error
	hadDeadline bool
}

func (l *countingLoader) LoadRouteData(ctx context.Context) error {
	l.calls++
	_, l.hadDeadline = ctx.Deadline()
	return l.err
}

func TestCronService_EmptyScheduleDisabled(t *testing.T) {
	service := NewCronService(&countingLoader{}, "", time.Minute, quietLogger())

	require.NoError(t, service.Start())
	status := service.GetJobStatus()
	assert.Equal(t, false, status["running"])
	assert.Equal(t, 0, status["job_count"])
	service.Stop()
}

func TestCronService_SchedulesReload(t *testing.T) {
	service := NewCronService(&countingLoader{}, "0 0 4 * * *", time.Minute, quietLogger())

	require.NoError(t, service.Start())
	defer service.Stop()

	status := service.GetJobStatus()
	assert.Equal(t, true, status["running"])
	assert.Equal(t, 1, status["job_count"])
	assert.Equal(t, "0 0 4 * * *", status["schedule"])
}

func TestCronService_InvalidSchedule(t *testing.T) {
	service := NewCronService(&countingLoader{}, "every day", time.Minute, quietLogger())

	err := service.Start()
	assert.Error(t, err)
}

func TestCronService_RunReloadNow(t *testing.T) {
	loader := &countingLoader{}
	service := NewCronService(loader, "", time.Minute, quietLogger())

	service.RunReloadNow()
	assert.Equal(t, 1, loader.calls)
	assert.True(t, loader.hadDeadline)

	// failures are logged, never propagated
	loader.err = errors.New("upstream down")
	service.RunReloadNow()
	assert.Equal(t, 2, loader.calls)
}

func TestCronService_RunReloadNowWithoutTimeout(t *testing.T) {
	loader := &countingLoader{}
	service := NewCronService(loader, "", 0, quietLogger())

	service.RunReloadNow()
	assert.False(t, loader.hadDeadline)
}
