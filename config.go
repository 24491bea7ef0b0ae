package gatt

import "time"

const (
	// DefaultCommandTimeout is the recommended bounded wait for a
	// normal command/response rendezvous (spec.md §9).
	DefaultCommandTimeout = 1000 * time.Millisecond

	// DefaultFirmwareRecordTimeout is the recommended bounded wait for
	// each vendor firmware record's Command Complete (spec.md §9).
	DefaultFirmwareRecordTimeout = 5000 * time.Millisecond
)

// Config configures a Stack. Transport and Clock are required; the
// rest have workable defaults.
type Config struct {
	Transport Transport
	Clock     Clock

	// Firmware is the vendor firmware image bytes (spec.md §1: "treated
	// as a read-only byte slice provided by the platform"). May be nil
	// to skip firmware download (e.g. the controller was already
	// brought up by a prior boot stage).
	Firmware []byte

	// Address is the local Bluetooth device address to program via
	// the vendor WriteBdAddr command. Zero value means "leave the
	// controller's default address in place."
	Address Address

	// LocalName is the GAP device name advertised in Complete Local
	// Name AD structures and returned for WriteLocalName.
	LocalName string

	// EventMask overrides the HCI event mask programmed during init.
	// Zero means use DefaultEventMask.
	EventMask uint64

	// CommandTimeout and FirmwareRecordTimeout bound the command
	// rendezvous (spec.md §5/§9). Zero means use the package defaults.
	CommandTimeout        time.Duration
	FirmwareRecordTimeout time.Duration

	// Handlers registers the caller's GAP/GATT event callbacks.
	Handlers Handlers
}

// DefaultEventMask enables the event set this stack dispatches:
// disconnection complete, encryption change, command complete/status,
// number of completed packets, hardware error, and the LE meta event
// umbrella (connection complete, advertising report, connection update
// complete, enhanced connection complete, etc).
const DefaultEventMask uint64 = 0x20001fffffffffff

func (c *Config) withDefaults() Config {
	out := *c
	if out.CommandTimeout == 0 {
		out.CommandTimeout = DefaultCommandTimeout
	}
	if out.FirmwareRecordTimeout == 0 {
		out.FirmwareRecordTimeout = DefaultFirmwareRecordTimeout
	}
	if out.EventMask == 0 {
		out.EventMask = DefaultEventMask
	}
	return out
}
