package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunOnceContinuesAfterFailure(t *testing.T) {
	var ran []string
	job := func(name string, err error) Job {
		return Job{Name: name, Run: func(context.Context) error {
			ran = append(ran, name)
			return err
		}}
	}

	s := NewResyncScheduler("@every 1h", zap.NewNop(),
		job("roles", nil),
		job("users", errors.New("timeout")),
		job("recount", nil),
	)

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "users: timeout")
	require.Equal(t, []string{"roles", "users", "recount"}, ran)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := NewResyncScheduler("every now and then", zap.NewNop())
	require.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewResyncScheduler("@every 1h", zap.NewNop())
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	s.Stop()
	s.Stop()
}
