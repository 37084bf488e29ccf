package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/foresight/pkg/config"
	"github.com/wonny/foresight/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	fail     bool
	runs     int
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Run(context.Context) error {
	j.runs++
	if j.fail {
		return fmt.Errorf("boom")
	}
	return nil
}

func testScheduler() *Scheduler {
	return New(logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"}))
}

func TestAddJob(t *testing.T) {
	s := testScheduler()

	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))

	// 중복 등록 거부
	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}))

	// 잘못된 cron 표현식 거부
	assert.Error(t, s.AddJob(&fakeJob{name: "b", schedule: "not-cron"}))
}

func TestRunJob_RecordsHistory(t *testing.T) {
	s := testScheduler()

	ok := &fakeJob{name: "ok", schedule: "@daily"}
	bad := &fakeJob{name: "bad", schedule: "@daily", fail: true}
	require.NoError(t, s.AddJob(ok))
	require.NoError(t, s.AddJob(bad))

	s.runJob(ok)
	s.runJob(bad)

	okHist := s.History("ok")
	require.Len(t, okHist, 1)
	assert.True(t, okHist[0].Success)
	assert.Equal(t, 1, ok.runs)

	badHist := s.History("bad")
	require.Len(t, badHist, 1)
	assert.False(t, badHist[0].Success)
	assert.Equal(t, "boom", badHist[0].Error)
}
