package permission_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/permission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type locationMock struct {
	mock.Mock
}

func (m *locationMock) RequestForegroundPermission(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *locationMock) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	args := m.Called(ctx)
	coords, _ := args.Get(0).(models.Coordinates)
	return coords, args.Error(1)
}

func TestRequestPermission(t *testing.T) {
	ctx := t.Context()

	tests := []struct {
		name    string
		granted bool
		err     error
		want    permission.Status
	}{
		{name: "granted", granted: true, want: permission.StatusGranted},
		{name: "denied", granted: false, want: permission.StatusDenied},
		{name: "device error", granted: true, err: assert.AnError, want: permission.StatusDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &locationMock{}
			svc.On("RequestForegroundPermission", ctx).Return(tt.granted, tt.err).Once()
			gate := permission.NewGate(svc, 0, slog.Default())

			assert.Equal(t, tt.want, gate.RequestPermission(ctx))
			svc.AssertExpectations(t)
		})
	}
}

func TestCurrentPosition(t *testing.T) {
	ctx := t.Context()

	t.Run("fix available", func(t *testing.T) {
		svc := &locationMock{}
		want := models.Coordinates{Latitude: 48.13, Longitude: 11.57}
		svc.On("CurrentPosition", ctx).Return(want, nil).Once()
		gate := permission.NewGate(svc, 0, slog.Default())

		got, err := gate.CurrentPosition(ctx)

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("sensor failure", func(t *testing.T) {
		svc := &locationMock{}
		svc.On("CurrentPosition", ctx).Return(models.Coordinates{}, assert.AnError).Once()
		gate := permission.NewGate(svc, 0, slog.Default())

		_, err := gate.CurrentPosition(ctx)

		require.ErrorIs(t, err, permission.ErrPositionUnavailable)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("garbage fix", func(t *testing.T) {
		svc := &locationMock{}
		svc.On("CurrentPosition", ctx).Return(models.Coordinates{Latitude: 200}, nil).Once()
		gate := permission.NewGate(svc, 0, slog.Default())

		_, err := gate.CurrentPosition(ctx)

		require.ErrorIs(t, err, permission.ErrPositionUnavailable)
		require.ErrorIs(t, err, models.ErrInvalidCoordinates)
	})

	t.Run("timeout applies to the fix", func(t *testing.T) {
		svc := &locationMock{}
		svc.On("CurrentPosition", mock.Anything).
			Run(func(args mock.Arguments) {
				fixCtx, _ := args.Get(0).(context.Context)
				<-fixCtx.Done()
			}).
			Return(models.Coordinates{}, context.DeadlineExceeded).Once()
		gate := permission.NewGate(svc, 10*time.Millisecond, slog.Default())

		_, err := gate.CurrentPosition(ctx)

		require.ErrorIs(t, err, permission.ErrPositionUnavailable)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "granted", permission.StatusGranted.String())
	assert.Equal(t, "denied", permission.StatusDenied.String())
}
