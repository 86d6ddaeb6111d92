package discovery_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/minicast/minicast/internal/device"
	"github.com/minicast/minicast/internal/discovery"
	mock_device "github.com/minicast/minicast/internal/mock/device"
	mock_discovery "github.com/minicast/minicast/internal/mock/discovery"
	"github.com/stretchr/testify/assert"
)

func TestScannerService(t *testing.T) {
	ctrl := gomock.NewController(t)

	defer ctrl.Finish()

	ctx := context.Background()

	t.Run("deduplicates responders by usn", func(st *testing.T) {
		mockSource := mock_discovery.NewMockSource(ctrl)
		mockNames := mock_discovery.NewMockNameResolver(ctrl)
		mockDeviceService := mock_device.NewMockService(ctrl)

		mockSource.EXPECT().Discover(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, results chan<- *device.Device) error {
				results <- &device.Device{
					USN:      "uuid:tv-1",
					Location: "http://192.168.1.50/desc.xml",
				}
				// same renderer answering a second search round
				results <- &device.Device{
					USN:      "uuid:tv-1",
					Location: "http://192.168.1.50/desc.xml",
				}
				results <- &device.Device{
					USN:      "uuid:tv-2",
					Location: "http://192.168.1.51/desc.xml",
				}
				return nil
			},
		)

		// name resolution runs once per unique usn, not per response
		mockNames.EXPECT().FriendlyName("http://192.168.1.50/desc.xml").Return("TV One")
		mockNames.EXPECT().FriendlyName("http://192.168.1.51/desc.xml").Return("TV Two")

		mockDeviceService.EXPECT().AddOrUpdate(gomock.Any()).Return(nil).Times(3)

		service := discovery.NewScannerService(mockDeviceService, mockNames, mockSource)

		devices, err := service.Scan(ctx)

		assert.NoError(st, err)
		assert.Equal(st, 2, len(devices))
		assert.Equal(st, "uuid:tv-1", devices[0].USN)
		assert.Equal(st, "TV One", devices[0].FriendlyName)
		assert.Equal(st, "uuid:tv-2", devices[1].USN)
	})

	t.Run("refreshed responses keep resolved fields", func(st *testing.T) {
		mockSource := mock_discovery.NewMockSource(ctrl)
		mockDeviceService := mock_device.NewMockService(ctrl)

		mockSource.EXPECT().Discover(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, results chan<- *device.Device) error {
				results <- &device.Device{
					USN:          "uuid:tv-1",
					Location:     "http://192.168.1.50/desc.xml",
					FriendlyName: "TV One",
					ControlURL:   "http://192.168.1.50/AVTransport/control",
					ServiceURN:   "urn:schemas-upnp-org:service:AVTransport:1",
				}
				// restart moved the description document but the refresh
				// carries no name or control binding
				results <- &device.Device{
					USN:      "uuid:tv-1",
					Location: "http://192.168.1.50:49153/desc.xml",
				}
				return nil
			},
		)

		mockDeviceService.EXPECT().AddOrUpdate(gomock.Any()).Return(nil).Times(2)

		service := discovery.NewScannerService(mockDeviceService, nil, mockSource)

		devices, err := service.Scan(ctx)

		assert.NoError(st, err)
		assert.Equal(st, 1, len(devices))
		assert.Equal(st, "http://192.168.1.50:49153/desc.xml", devices[0].Location)
		assert.Equal(st, "TV One", devices[0].FriendlyName)
		assert.Equal(st, "http://192.168.1.50/AVTransport/control", devices[0].ControlURL)
	})

	t.Run("sources run in order as fallbacks", func(st *testing.T) {
		mockFirst := mock_discovery.NewMockSource(ctrl)
		mockSecond := mock_discovery.NewMockSource(ctrl)
		mockDeviceService := mock_device.NewMockService(ctrl)

		first := mockFirst.EXPECT().Discover(gomock.Any(), gomock.Any()).Return(nil)
		mockSecond.EXPECT().Discover(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, results chan<- *device.Device) error {
				results <- &device.Device{USN: "uuid:tv-1"}
				return nil
			},
		).After(first)

		mockDeviceService.EXPECT().AddOrUpdate(gomock.Any()).Return(nil)

		service := discovery.NewScannerService(
			mockDeviceService,
			nil,
			mockFirst,
			mockSecond,
		)

		devices, err := service.Scan(ctx)

		assert.NoError(st, err)
		assert.Equal(st, 1, len(devices))
	})

	t.Run("a failing source does not abort the session", func(st *testing.T) {
		mockFirst := mock_discovery.NewMockSource(ctrl)
		mockSecond := mock_discovery.NewMockSource(ctrl)
		mockDeviceService := mock_device.NewMockService(ctrl)

		mockFirst.EXPECT().Discover(gomock.Any(), gomock.Any()).Return(
			assert.AnError,
		)
		mockSecond.EXPECT().Discover(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, results chan<- *device.Device) error {
				results <- &device.Device{USN: "uuid:tv-1"}
				return nil
			},
		)

		mockDeviceService.EXPECT().AddOrUpdate(gomock.Any()).Return(nil)

		service := discovery.NewScannerService(
			mockDeviceService,
			nil,
			mockFirst,
			mockSecond,
		)

		devices, err := service.Scan(ctx)

		assert.NoError(st, err)
		assert.Equal(st, 1, len(devices))
	})

	t.Run("cancelled context skips remaining sources", func(st *testing.T) {
		mockSource := mock_discovery.NewMockSource(ctrl)
		mockDeviceService := mock_device.NewMockService(ctrl)

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		service := discovery.NewScannerService(mockDeviceService, nil, mockSource)

		devices, err := service.Scan(cancelled)

		assert.NoError(st, err)
		assert.Equal(st, 0, len(devices))
	})

	t.Run("cache errors only log", func(st *testing.T) {
		mockSource := mock_discovery.NewMockSource(ctrl)
		mockDeviceService := mock_device.NewMockService(ctrl)

		mockSource.EXPECT().Discover(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, results chan<- *device.Device) error {
				results <- &device.Device{USN: "uuid:tv-1"}
				return nil
			},
		)

		mockDeviceService.EXPECT().AddOrUpdate(gomock.Any()).Return(assert.AnError)

		service := discovery.NewScannerService(mockDeviceService, nil, mockSource)

		devices, err := service.Scan(ctx)

		assert.NoError(st, err)
		assert.Equal(st, 1, len(devices))
	})
}
