package scheduler

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduledTask(t *testing.T) {
	task, err := NewScheduledTask("test-task", "0 2 * * *", logrus.New(), func() {})
	require.NoError(t, err)
	require.NotNil(t, task)
	task.Cancel()
}

func TestNewScheduledTask_InvalidSpec(t *testing.T) {
	task, err := NewScheduledTask("test-task", "not a cron spec", logrus.New(), func() {})
	assert.Error(t, err)
	assert.Nil(t, task)
}
