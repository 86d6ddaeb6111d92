package device

import "github.com/minicast/minicast/internal/event"

//go:generate mockgen -destination=../mock/device/mock_device.go -package=mock_device . Repo,Service

// Repo interface representing access to cached renderers
type Repo interface {
	GetAll() ([]*Device, error)
	Get(usn string) (*Device, error)
	Upsert(dev *Device) (*Device, error)
	Remove(usn string) error
}

// Service interface for manipulating cached renderers
type Service interface {
	GetAll() ([]*Device, error)
	Get(usn string) (*Device, error)
	FindByIP(ip string) (*Device, error)
	AddOrUpdate(dev *Device) error
	StreamEvents(send chan *event.Event) int
	StopStream(id int)
}
