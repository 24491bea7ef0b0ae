// Package gatt implements a Bluetooth Low Energy host stack for a
// single UART-attached Broadcom BCM4345C0-class controller.
//
// STATUS
//
// The stack covers the HCI transport and controller state machine
// (wire codec, byte-at-a-time RX framer, command/response rendezvous,
// event dispatch, vendor firmware download), the GAP policy layer
// (advertising, scanning, connection establishment), and a GATT/ATT
// server and client running over L2CAP (local attribute database,
// notifications/indications, remote service/characteristic
// discovery).
//
// It assumes exactly one controller and at most one connection at a
// time; there is no BlueZ/AF_BLUETOOTH socket layer and no OS-specific
// transport shim. Callers supply their own Transport (the UART byte
// sink) and Clock (for firmware-download sleeps).
//
// USAGE
//
//	cfg := gatt.Config{
//		Transport: myUART,
//		Clock:     myClock,
//		Firmware:  firmwareImage,
//		LocalName: "my-device",
//		Handlers: gatt.Handlers{
//			OnConnection: func(e gatt.ConnectionEvent) { ... },
//		},
//	}
//	stack := gatt.NewStack(cfg)
//	if err := stack.Init(); err != nil {
//		log.Fatal(err)
//	}
//
//	db := stack.Database()
//	svc, _ := db.RegisterService(gatt.UUID16(0x180F), true) // battery service
//	db.AddCharacteristic(svc.UUID(), gatt.UUID16(0x2A19),
//		gatt.PropRead|gatt.PropNotify, gatt.PermRead, []byte{100}, 1)
//
//	if err := stack.GAP().StartAdvertising(gatt.AdvertisingParams{
//		IntervalMs: 100, Connectable: true, ChannelMap: 0x07,
//	}); err != nil {
//		log.Fatal(err)
//	}
//
// The driver feeds received UART bytes to stack.OnRxByte one at a
// time; the engine deasserts flow control when its fixed-size receive
// buffer fills.
package gatt
