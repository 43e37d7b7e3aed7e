// Package modem provides types and clients for communicating with USB-attached
// Huawei HiLink modems over their local HTTP/XML management API.
package modem

import (
	"fmt"
	"time"
)

// SMSMessage is a single SMS message stored on the modem.
type SMSMessage struct {
	// ID is the modem's storage index for the message
	ID string

	// Message is the message body
	Message string

	// Sender is the originating phone number
	Sender string

	// ReceiveTime is when the modem received the message, in modem-local time
	ReceiveTime time.Time
}

func (m SMSMessage) String() string {
	return fmt.Sprintf("SMSMessage %s %q from %q", m.ID, m.Message, m.Sender)
}

// Status contains the connection status reported by the modem.
type Status struct {
	// Status is the human readable connection status (e.g. Connected)
	Status string

	// Signal is the signal strength as a percentage (0-100)
	Signal int

	// NetworkType is the radio access technology (e.g. GPRS, HSPA +)
	NetworkType string

	// ConnectionCode is the raw connection status code the description was derived from
	ConnectionCode int
}

// MessageCount contains the SMS counters of the inbox.
type MessageCount struct {
	Count  int
	Unread int
}

// DiscoveredDevice describes one modem found in sysfs.
type DiscoveredDevice struct {
	// Path is the sysfs path of the USB device, e.g. /sys/bus/usb/devices/1-1
	Path string

	// Supported reports whether a driver exists for the product id
	Supported bool

	// ProductID is the USB product id, e.g. 14dc
	ProductID string

	// Interface is the associated network interface, empty when none was found
	Interface string

	// Name is the product name. Only set when Supported.
	Name string

	// DriverClass selects the client implementation. Only set when Supported.
	DriverClass Model
}

// Model represents supported modem drivers.
type Model string

const (
	ModelHuaweiE303 Model = "huawei_e303"
	ModelUnknown    Model = "unknown"
)

// Modem is the interface that modem drivers must satisfy.
//
// Implementations are not required to be safe for concurrent use; wrap them
// with Synchronized when sharing one session between goroutines.
type Modem interface {
	// GetStatus retrieves the connection status and signal strength.
	GetStatus() (*Status, error)

	// GetMessageCount retrieves the inbox counters.
	GetMessageCount() (*MessageCount, error)

	// GetMessages lists the inbox, optionally deleting the returned messages afterwards.
	GetMessages(delete bool) ([]SMSMessage, error)

	// DeleteMessage removes a single message.
	DeleteMessage(id string) error

	// DeleteMessages removes the messages with the given ids.
	DeleteMessages(ids []string) error

	// Interface returns the network interface of the modem, if known.
	Interface() string

	// GetModel returns the modem driver type.
	GetModel() Model

	// Close releases any resources held by the client.
	Close() error
}
