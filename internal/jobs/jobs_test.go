package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/maikostudios/SustentaM-sub001/internal/model"
	"github.com/maikostudios/SustentaM-sub001/internal/repository"
)

// 只实现用到的方法，其余方法调用会 panic
type fakeSessions struct {
	repository.SessionRepository
	sessions []model.Session
	err      error
	from, to time.Time
}

func (f *fakeSessions) ListByDateRange(_ context.Context, from, to time.Time) ([]model.Session, error) {
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Session
	for _, s := range f.sessions {
		if !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeSeats struct {
	repository.SeatRepository
	occupied map[string]int
}

func (f *fakeSeats) CountOccupied(_ context.Context, _ []string) (map[string]int, error) {
	return f.occupied, nil
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func newDigest(sessions *fakeSessions, seats *fakeSeats, logger *zap.Logger, now time.Time, loc *time.Location) *Digest {
	repo := &repository.Repository{Session: sessions, Seat: seats}
	d := NewDigest(repo, loc, logger)
	d.now = func() time.Time { return now }
	return d
}

func TestDigest_CollectsTomorrow(t *testing.T) {
	course := &model.Course{CourseID: "c1", Code: "SEG-101", Name: "Seguridad"}
	sessions := &fakeSessions{sessions: []model.Session{
		{SessionID: "today", CourseID: "c1", Date: day(2025, 9, 10), Capacity: 30, Course: course},
		{SessionID: "tomorrow", CourseID: "c1", Date: day(2025, 9, 11), StartTime: "09:00", Capacity: 30, Course: course},
	}}
	seats := &fakeSeats{occupied: map[string]int{"tomorrow": 12}}
	core, logs := observer.New(zapcore.InfoLevel)

	d := newDigest(sessions, seats, zap.New(core), time.Date(2025, 9, 10, 18, 0, 0, 0, time.UTC), time.UTC)
	entries, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "tomorrow", e.SessionID)
	assert.Equal(t, "SEG-101", e.CourseCode)
	assert.Equal(t, 12, e.Occupancy.Occupied)
	assert.Equal(t, 18, e.Occupancy.Free)
	assert.Equal(t, day(2025, 9, 11), sessions.from)
	assert.Equal(t, 1, logs.FilterMessage("次日场次提醒").Len())
}

func TestDigest_UsesConfiguredTimezone(t *testing.T) {
	loc := time.FixedZone("CLT", -3*3600)
	sessions := &fakeSessions{}
	d := newDigest(sessions, &fakeSeats{}, zap.NewNop(), time.Date(2025, 9, 11, 1, 0, 0, 0, time.UTC), loc)

	// UTC 9/11 01:00 在 UTC-3 仍是 9/10，“明天”应为 9/11
	entries, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, day(2025, 9, 11), sessions.from)
	assert.Equal(t, day(2025, 9, 11), sessions.to)
}

func TestDigest_PropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	d := newDigest(&fakeSessions{err: boom}, &fakeSeats{}, zap.NewNop(), time.Now(), nil)

	_, err := d.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestNewScheduler(t *testing.T) {
	d := newDigest(&fakeSessions{}, &fakeSeats{}, zap.NewNop(), time.Now(), nil)

	s, err := NewScheduler("0 18 * * *", time.UTC, d, zap.NewNop())
	require.NoError(t, err)
	s.Start()
	require.Len(t, s.cron.Entries(), 1)
	assert.Equal(t, 18, s.cron.Entries()[0].Next.Hour())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)

	_, err = NewScheduler("not a cron", time.UTC, d, zap.NewNop())
	assert.Error(t, err)
}
