package gatt

// ConnectionEvent reports a link coming up or going down (spec.md
// §4.4).
type ConnectionEvent struct {
	Handle    uint16
	Peer      Address
	Connected bool
}

// ConnectionUpdateEvent reports renegotiated link parameters.
type ConnectionUpdateEvent struct {
	Handle        uint16
	IntervalMs    int
	LatencyEvents int
	TimeoutMs     int
}

// ScanResultEvent reports one advertising report received while
// scanning (spec.md §4.4). AdvData is the raw AD structures as
// received; Advertisement is the same payload parsed into its
// individual fields, or the zero value if it failed to parse.
type ScanResultEvent struct {
	Peer          Address
	RSSI          int8
	AdvData       []byte
	Advertisement Advertisement
}

// ServiceDiscoveredEvent reports one primary service found on a
// connected peripheral (spec.md §4.7).
type ServiceDiscoveredEvent struct {
	UUID        UUID
	StartHandle uint16
	EndHandle   uint16
}

// CharacteristicDiscoveredEvent reports one characteristic found
// within a discovered service's handle range.
type CharacteristicDiscoveredEvent struct {
	UUID        UUID
	DeclHandle  uint16
	ValueHandle uint16
	Properties  uint8
}

// NotificationEvent and IndicationEvent report an unsolicited value
// push from a connected peer acting as GATT server. A confirmation is
// sent for indications before this event is delivered.
type NotificationEvent struct {
	Handle uint16
	Value  []byte
}

type IndicationEvent struct {
	Handle uint16
	Value  []byte
}

// SubscriptionChangedEvent reports a peer writing this device's local
// CCCD, i.e. this device acting as GATT server.
type SubscriptionChangedEvent struct {
	CharUUID UUID
	Notify   bool
	Indicate bool
}

// Handlers aggregates the optional callbacks a Stack user registers
// to receive GAP/GATT events. A nil field is simply never invoked;
// this mirrors hciEngine's own per-event callback fields.
type Handlers struct {
	OnConnection          func(ConnectionEvent)
	OnConnectionUpdate    func(ConnectionUpdateEvent)
	OnScanResult          func(ScanResultEvent)
	OnServiceDiscovered   func(ServiceDiscoveredEvent)
	OnCharacteristicFound func(CharacteristicDiscoveredEvent)
	OnNotification        func(NotificationEvent)
	OnIndication          func(IndicationEvent)
	OnSubscriptionChanged func(SubscriptionChangedEvent)
	OnError               func(error)
}
