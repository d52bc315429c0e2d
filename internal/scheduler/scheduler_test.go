package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/bogarovo/internal/config"
	"github.com/mamadbah2/bogarovo/internal/domain/models"
)

type fakeGenerator struct {
	calledWith time.Time
	err        error
}

func (f *fakeGenerator) GenerateDailyReport(_ context.Context, now time.Time) (models.DailyReport, string, error) {
	f.calledWith = now
	if f.err != nil {
		return models.DailyReport{}, "", f.err
	}
	return models.DailyReport{LowCount: 1}, "Stock digest", nil
}

type fakeSender struct {
	to, body string
	err      error
}

func (f *fakeSender) SendText(_ context.Context, to, body string) error {
	f.to, f.body = to, body
	return f.err
}

func reportingConfig(phone string) config.ReportingConfig {
	return config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Europe/Prague", ManagerPhone: phone}
}

func TestSendDailyReport_SendsDigestToManager(t *testing.T) {
	gen := &fakeGenerator{}
	snd := &fakeSender{}
	s, err := NewScheduler(reportingConfig("420777000111"), gen, snd, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 5, 20, 18, 0, 0, 0, time.UTC) }

	require.NoError(t, s.SendDailyReport(context.Background()))

	assert.Equal(t, "420777000111", snd.to)
	assert.Equal(t, "Stock digest", snd.body)
	assert.Equal(t, "Europe/Prague", gen.calledWith.Location().String())
	assert.Equal(t, 20, gen.calledWith.Hour())
}

func TestSendDailyReport_NoPhoneSkipsSend(t *testing.T) {
	snd := &fakeSender{}
	s, err := NewScheduler(reportingConfig(""), &fakeGenerator{}, snd, nil)
	require.NoError(t, err)

	require.NoError(t, s.SendDailyReport(context.Background()))
	assert.Empty(t, snd.to)
}

func TestSendDailyReport_Errors(t *testing.T) {
	s, err := NewScheduler(reportingConfig("1"), &fakeGenerator{err: errors.New("db")}, &fakeSender{}, nil)
	require.NoError(t, err)
	assert.Error(t, s.SendDailyReport(context.Background()))

	s, err = NewScheduler(reportingConfig("1"), &fakeGenerator{}, &fakeSender{err: errors.New("gateway")}, nil)
	require.NoError(t, err)
	assert.Error(t, s.SendDailyReport(context.Background()))
}

func TestNewScheduler_InvalidTimezone(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "Mars/Base"}, &fakeGenerator{}, nil, nil)
	assert.Error(t, err)
}

func TestStart_InvalidSchedule(t *testing.T) {
	s, err := NewScheduler(config.ReportingConfig{CronSchedule: "every day", Timezone: "UTC"}, &fakeGenerator{}, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}
